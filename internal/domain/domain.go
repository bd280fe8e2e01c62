package domain

import (
	"encoding/json"
	"fmt"
)

// MOMStatus is the approval state of a minutes-of-meeting record.
type MOMStatus string

const (
	MOMDraft         MOMStatus = "draft"
	MOMPendingReview MOMStatus = "pending_review"
	MOMValidated     MOMStatus = "validated"
	MOMRejected      MOMStatus = "rejected"
)

func (s MOMStatus) Valid() bool {
	switch s {
	case MOMDraft, MOMPendingReview, MOMValidated, MOMRejected:
		return true
	}
	return false
}

func (s *MOMStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := MOMStatus(raw)
	if !v.Valid() {
		return ValidationError{Field: "status", Reason: fmt.Sprintf("unknown mom status %q", raw)}
	}
	*s = v
	return nil
}

// TaskStatus is the execution state of an action-item task.
type TaskStatus string

const (
	TaskOpen       TaskStatus = "open"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskOpen, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := TaskStatus(raw)
	if !v.Valid() {
		return ValidationError{Field: "status", Reason: fmt.Sprintf("unknown task status %q", raw)}
	}
	*s = v
	return nil
}

type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := TaskPriority(raw)
	if !v.Valid() {
		return ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown task priority %q", raw)}
	}
	*p = v
	return nil
}

type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (d Department) RecordID() string { return d.ID }

func (d Department) Validate() error {
	if d.ID == "" {
		return ValidationError{Field: "id", Reason: "is required"}
	}
	if d.Name == "" {
		return ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}

type Meeting struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	DepartmentID string   `json:"department_id"`
	Date         string   `json:"date"`
	Attendees    []string `json:"attendees,omitempty"`
	Location     string   `json:"location,omitempty"`
}

func (m Meeting) RecordID() string { return m.ID }

func (m Meeting) Validate() error {
	if m.ID == "" {
		return ValidationError{Field: "id", Reason: "is required"}
	}
	if m.Title == "" {
		return ValidationError{Field: "title", Reason: "is required"}
	}
	if m.DepartmentID == "" {
		return ValidationError{Field: "department_id", Reason: "is required"}
	}
	return nil
}

// AgendaItem is owned by exactly one MOM and can only be appended while the
// MOM is in draft.
type AgendaItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Discussion string `json:"discussion,omitempty"`
	Decisions  string `json:"decisions,omitempty"`
}

type MinutesOfMeeting struct {
	ID              string       `json:"id"`
	MeetingID       string       `json:"meeting_id"`
	PreparedBy      string       `json:"prepared_by"`
	Summary         string       `json:"summary,omitempty"`
	Status          MOMStatus    `json:"status" enum:"draft,pending_review,validated,rejected"`
	AgendaItems     []AgendaItem `json:"agenda_items,omitempty"`
	ValidatedBy     *string      `json:"validated_by,omitempty"`
	RejectionReason *string      `json:"rejection_reason,omitempty"`
	CreatedAt       string       `json:"created_at" format:"date-time"`
	UpdatedAt       string       `json:"updated_at" format:"date-time"`
}

func (m MinutesOfMeeting) RecordID() string { return m.ID }

func (m MinutesOfMeeting) Validate() error {
	if m.ID == "" {
		return ValidationError{Field: "id", Reason: "is required"}
	}
	if m.MeetingID == "" {
		return ValidationError{Field: "meeting_id", Reason: "is required"}
	}
	if m.PreparedBy == "" {
		return ValidationError{Field: "prepared_by", Reason: "is required"}
	}
	if !m.Status.Valid() {
		return ValidationError{Field: "status", Reason: fmt.Sprintf("unknown mom status %q", m.Status)}
	}
	return nil
}

type Task struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	DepartmentID string       `json:"department_id"`
	AssignedTo   string       `json:"assigned_to"`
	MOMID        *string      `json:"mom_id,omitempty"`
	DueDate      *string      `json:"due_date,omitempty"`
	Priority     TaskPriority `json:"priority" enum:"low,medium,high,critical"`
	Status       TaskStatus   `json:"status" enum:"open,in_progress,completed,cancelled"`
	CreatedAt    string       `json:"created_at" format:"date-time"`
	UpdatedAt    string       `json:"updated_at" format:"date-time"`
}

func (t Task) RecordID() string { return t.ID }

func (t Task) Validate() error {
	if t.ID == "" {
		return ValidationError{Field: "id", Reason: "is required"}
	}
	if t.Title == "" {
		return ValidationError{Field: "title", Reason: "is required"}
	}
	if t.DepartmentID == "" {
		return ValidationError{Field: "department_id", Reason: "is required"}
	}
	if t.AssignedTo == "" {
		return ValidationError{Field: "assigned_to", Reason: "is required"}
	}
	if !t.Status.Valid() {
		return ValidationError{Field: "status", Reason: fmt.Sprintf("unknown task status %q", t.Status)}
	}
	if !t.Priority.Valid() {
		return ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown task priority %q", t.Priority)}
	}
	return nil
}
