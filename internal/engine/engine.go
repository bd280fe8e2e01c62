// Package engine is the workflow orchestration service: the only component
// that mutates MOM and task records. Every transition is load, guard,
// mutate, persist.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"momtrack/internal/config"
	"momtrack/internal/domain"
	"momtrack/internal/store"
)

type Engine struct {
	Store  *store.Store
	Config *config.Config
	Now    func() time.Time

	// mu serializes read-modify-write sequences so two concurrent
	// transitions cannot both observe the same pre-state.
	mu sync.Mutex
}

func New(st *store.Store, cfg *config.Config) *Engine {
	return &Engine{
		Store:  st,
		Config: cfg,
		Now:    time.Now,
	}
}

func (e *Engine) now() string {
	if e.Now != nil {
		return e.Now().UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// --- departments ---

func (e *Engine) CreateDepartment(name, description string) (domain.Department, error) {
	if name == "" {
		return domain.Department{}, domain.ValidationError{Field: "name", Reason: "is required"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	d := domain.Department{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
	}
	if err := e.Store.Departments.Insert(d); err != nil {
		return domain.Department{}, err
	}
	return d, nil
}

func (e *Engine) GetDepartment(id string) (domain.Department, error) {
	return e.Store.Departments.Get(id)
}

func (e *Engine) ListDepartments() ([]domain.Department, error) {
	return e.Store.Departments.Find(nil)
}

// UpdateDepartment edits name and/or description; nil leaves a field as is.
func (e *Engine) UpdateDepartment(id string, name, description *string) (domain.Department, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.Store.Departments.Get(id)
	if err != nil {
		return domain.Department{}, err
	}
	if name != nil {
		if *name == "" {
			return domain.Department{}, domain.ValidationError{Field: "name", Reason: "is required"}
		}
		d.Name = *name
	}
	if description != nil {
		d.Description = *description
	}
	if err := e.Store.Departments.Update(id, d); err != nil {
		return domain.Department{}, err
	}
	return d, nil
}

// DeleteDepartment is a hard delete with no cascade; meetings and tasks that
// still reference the department keep their dangling key.
func (e *Engine) DeleteDepartment(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Store.Departments.Delete(id)
}

// --- meetings ---

func (e *Engine) CreateMeeting(title, departmentID, date string, attendees []string, location string) (domain.Meeting, error) {
	if title == "" {
		return domain.Meeting{}, domain.ValidationError{Field: "title", Reason: "is required"}
	}
	if departmentID == "" {
		return domain.Meeting{}, domain.ValidationError{Field: "department_id", Reason: "is required"}
	}
	if date == "" {
		return domain.Meeting{}, domain.ValidationError{Field: "date", Reason: "is required"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	m := domain.Meeting{
		ID:           uuid.NewString(),
		Title:        title,
		DepartmentID: departmentID,
		Date:         date,
		Attendees:    attendees,
		Location:     location,
	}
	if err := e.Store.Meetings.Insert(m); err != nil {
		return domain.Meeting{}, err
	}
	return m, nil
}

func (e *Engine) GetMeeting(id string) (domain.Meeting, error) {
	return e.Store.Meetings.Get(id)
}

func (e *Engine) ListMeetings(departmentID string) ([]domain.Meeting, error) {
	filters := map[string]any{}
	if departmentID != "" {
		filters["department_id"] = departmentID
	}
	return e.Store.Meetings.Find(filters)
}

func (e *Engine) DeleteMeeting(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Store.Meetings.Delete(id)
}

// --- minutes of meeting ---

// CreateMOM starts a new minutes record in draft. The meeting foreign key is
// resolved at creation time only.
func (e *Engine) CreateMOM(meetingID, preparedBy, summary string) (domain.MinutesOfMeeting, error) {
	if preparedBy == "" {
		return domain.MinutesOfMeeting{}, domain.ValidationError{Field: "prepared_by", Reason: "is required"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.Store.Meetings.Get(meetingID); err != nil {
		return domain.MinutesOfMeeting{}, err
	}
	now := e.now()
	m := domain.MinutesOfMeeting{
		ID:         uuid.NewString(),
		MeetingID:  meetingID,
		PreparedBy: preparedBy,
		Summary:    summary,
		Status:     domain.MOMDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.Store.MOMs.Insert(m); err != nil {
		return domain.MinutesOfMeeting{}, err
	}
	return m, nil
}

func (e *Engine) GetMOM(id string) (domain.MinutesOfMeeting, error) {
	return e.Store.MOMs.Get(id)
}

func (e *Engine) ListMOMs(status domain.MOMStatus) ([]domain.MinutesOfMeeting, error) {
	filters := map[string]any{}
	if status != "" {
		filters["status"] = status
	}
	return e.Store.MOMs.Find(filters)
}

// MOMsByStatus is a thin wrapper over the store filter.
func (e *Engine) MOMsByStatus(status domain.MOMStatus) ([]domain.MinutesOfMeeting, error) {
	return e.Store.MOMs.Find(map[string]any{"status": status})
}

// AddAgendaItem appends an item to a draft MOM. The agenda sequence is
// append-only and order-preserving.
func (e *Engine) AddAgendaItem(momID, title, discussion, decisions string) (domain.MinutesOfMeeting, error) {
	if title == "" {
		return domain.MinutesOfMeeting{}, domain.ValidationError{Field: "title", Reason: "is required"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	m, err := e.Store.MOMs.Get(momID)
	if err != nil {
		return domain.MinutesOfMeeting{}, err
	}
	if err := ensureMOMTransition(m, "add_agenda_item"); err != nil {
		return domain.MinutesOfMeeting{}, err
	}
	m.AgendaItems = append(m.AgendaItems, domain.AgendaItem{
		ID:         uuid.NewString(),
		Title:      title,
		Discussion: discussion,
		Decisions:  decisions,
	})
	m.UpdatedAt = e.now()
	if err := e.Store.MOMs.Update(momID, m); err != nil {
		return domain.MinutesOfMeeting{}, err
	}
	return m, nil
}

func (e *Engine) SubmitForReview(momID string) (domain.MinutesOfMeeting, error) {
	return e.transitionMOM(momID, "submit_for_review", func(m *domain.MinutesOfMeeting) {
		m.Status = domain.MOMPendingReview
	})
}

// ValidateMOM approves a pending MOM. validatedBy must be non-empty.
func (e *Engine) ValidateMOM(momID, validatedBy string) (domain.MinutesOfMeeting, error) {
	if validatedBy == "" {
		return domain.MinutesOfMeeting{}, domain.ValidationError{Field: "validated_by", Reason: "is required"}
	}
	return e.transitionMOM(momID, "validate", func(m *domain.MinutesOfMeeting) {
		m.Status = domain.MOMValidated
		m.ValidatedBy = &validatedBy
		m.RejectionReason = nil
	})
}

// RejectMOM sends a pending MOM back with a reason. Both guard strings must
// be non-empty.
func (e *Engine) RejectMOM(momID, rejectedBy, reason string) (domain.MinutesOfMeeting, error) {
	if rejectedBy == "" {
		return domain.MinutesOfMeeting{}, domain.ValidationError{Field: "rejected_by", Reason: "is required"}
	}
	if reason == "" {
		return domain.MinutesOfMeeting{}, domain.ValidationError{Field: "reason", Reason: "is required"}
	}
	return e.transitionMOM(momID, "reject", func(m *domain.MinutesOfMeeting) {
		m.Status = domain.MOMRejected
		m.ValidatedBy = &rejectedBy
		m.RejectionReason = &reason
	})
}

// ReviseMOM reopens a rejected MOM for another revision cycle.
func (e *Engine) ReviseMOM(momID string) (domain.MinutesOfMeeting, error) {
	return e.transitionMOM(momID, "revise", func(m *domain.MinutesOfMeeting) {
		m.Status = domain.MOMDraft
		m.ValidatedBy = nil
		m.RejectionReason = nil
	})
}

func (e *Engine) transitionMOM(momID, op string, apply func(*domain.MinutesOfMeeting)) (domain.MinutesOfMeeting, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, err := e.Store.MOMs.Get(momID)
	if err != nil {
		return domain.MinutesOfMeeting{}, err
	}
	if err := ensureMOMTransition(m, op); err != nil {
		return domain.MinutesOfMeeting{}, err
	}
	apply(&m)
	m.UpdatedAt = e.now()
	if err := e.Store.MOMs.Update(momID, m); err != nil {
		return domain.MinutesOfMeeting{}, err
	}
	return m, nil
}

func ensureMOMTransition(m domain.MinutesOfMeeting, op string) error {
	switch op {
	case "submit_for_review", "add_agenda_item":
		if m.Status == domain.MOMDraft {
			return nil
		}
	case "validate", "reject":
		if m.Status == domain.MOMPendingReview {
			return nil
		}
	case "revise":
		if m.Status == domain.MOMRejected {
			return nil
		}
	}
	return domain.InvalidTransitionError{
		Entity:    "mom",
		ID:        m.ID,
		Status:    string(m.Status),
		Operation: op,
	}
}

// --- tasks ---

// TaskCreateOptions are parameters for creating a task.
type TaskCreateOptions struct {
	Title        string
	Description  string
	DepartmentID string
	AssignedTo   string
	MOMID        string
	DueDate      string
	Priority     domain.TaskPriority
}

// CreateTask opens a new action item. The department foreign key is always
// resolved; the MOM foreign key is resolved when given.
func (e *Engine) CreateTask(opts TaskCreateOptions) (domain.Task, error) {
	if opts.Title == "" {
		return domain.Task{}, domain.ValidationError{Field: "title", Reason: "is required"}
	}
	if opts.DepartmentID == "" {
		return domain.Task{}, domain.ValidationError{Field: "department_id", Reason: "is required"}
	}
	if opts.AssignedTo == "" {
		return domain.Task{}, domain.ValidationError{Field: "assigned_to", Reason: "is required"}
	}
	if opts.Priority == "" {
		opts.Priority = e.Config.DefaultPriority()
	}
	if !opts.Priority.Valid() {
		return domain.Task{}, domain.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown task priority %q", opts.Priority)}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.Store.Departments.Get(opts.DepartmentID); err != nil {
		return domain.Task{}, err
	}
	if opts.MOMID != "" {
		if _, err := e.Store.MOMs.Get(opts.MOMID); err != nil {
			return domain.Task{}, err
		}
	}
	now := e.now()
	t := domain.Task{
		ID:           uuid.NewString(),
		Title:        opts.Title,
		Description:  opts.Description,
		DepartmentID: opts.DepartmentID,
		AssignedTo:   opts.AssignedTo,
		MOMID:        optionalString(opts.MOMID),
		DueDate:      optionalString(opts.DueDate),
		Priority:     opts.Priority,
		Status:       domain.TaskOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.Store.Tasks.Insert(t); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (e *Engine) GetTask(id string) (domain.Task, error) {
	return e.Store.Tasks.Get(id)
}

// TaskFilters narrow a task listing; zero values are ignored.
type TaskFilters struct {
	DepartmentID string
	AssignedTo   string
	Status       domain.TaskStatus
	MOMID        string
}

func (e *Engine) ListTasks(f TaskFilters) ([]domain.Task, error) {
	filters := map[string]any{}
	if f.DepartmentID != "" {
		filters["department_id"] = f.DepartmentID
	}
	if f.AssignedTo != "" {
		filters["assigned_to"] = f.AssignedTo
	}
	if f.Status != "" {
		filters["status"] = f.Status
	}
	if f.MOMID != "" {
		filters["mom_id"] = f.MOMID
	}
	return e.Store.Tasks.Find(filters)
}

// TasksByStatus is a thin wrapper over the store filter.
func (e *Engine) TasksByStatus(status domain.TaskStatus) ([]domain.Task, error) {
	return e.Store.Tasks.Find(map[string]any{"status": status})
}

// TasksByDepartment is a thin wrapper over the store filter.
func (e *Engine) TasksByDepartment(departmentID string) ([]domain.Task, error) {
	return e.Store.Tasks.Find(map[string]any{"department_id": departmentID})
}

// TasksForMOM returns the action items spawned from a MOM review.
func (e *Engine) TasksForMOM(momID string) ([]domain.Task, error) {
	return e.Store.Tasks.Find(map[string]any{"mom_id": momID})
}

func (e *Engine) StartTask(id string) (domain.Task, error) {
	return e.transitionTask(id, "start", domain.TaskInProgress)
}

func (e *Engine) CompleteTask(id string) (domain.Task, error) {
	return e.transitionTask(id, "complete", domain.TaskCompleted)
}

func (e *Engine) CancelTask(id string) (domain.Task, error) {
	return e.transitionTask(id, "cancel", domain.TaskCancelled)
}

func (e *Engine) transitionTask(id, op string, to domain.TaskStatus) (domain.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.Store.Tasks.Get(id)
	if err != nil {
		return domain.Task{}, err
	}
	if err := ensureTaskTransition(t, op); err != nil {
		return domain.Task{}, err
	}
	t.Status = to
	t.UpdatedAt = e.now()
	if err := e.Store.Tasks.Update(id, t); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func ensureTaskTransition(t domain.Task, op string) error {
	switch op {
	case "start":
		// Re-starting an in-progress task is an error, not a no-op.
		if t.Status == domain.TaskOpen {
			return nil
		}
	case "complete", "cancel":
		if t.Status == domain.TaskOpen || t.Status == domain.TaskInProgress {
			return nil
		}
	}
	return domain.InvalidTransitionError{
		Entity:    "task",
		ID:        t.ID,
		Status:    string(t.Status),
		Operation: op,
	}
}

// --- dashboard ---

// DashboardStats is a derived read-only view, recomputed from the full
// collections on every call.
type DashboardStats struct {
	TotalDepartments int            `json:"total_departments"`
	TotalMeetings    int            `json:"total_meetings"`
	TotalMOMs        int            `json:"total_moms"`
	TotalTasks       int            `json:"total_tasks"`
	TasksByStatus    map[string]int `json:"tasks_by_status"`
	MOMsByStatus     map[string]int `json:"moms_by_status"`
	TasksByPriority  map[string]int `json:"tasks_by_priority"`
}

func (e *Engine) Dashboard() DashboardStats {
	tasks := e.Store.Tasks.All()
	moms := e.Store.MOMs.All()
	stats := DashboardStats{
		TotalDepartments: e.Store.Departments.Len(),
		TotalMeetings:    e.Store.Meetings.Len(),
		TotalMOMs:        len(moms),
		TotalTasks:       len(tasks),
		TasksByStatus:    map[string]int{},
		MOMsByStatus:     map[string]int{},
		TasksByPriority:  map[string]int{},
	}
	for _, t := range tasks {
		stats.TasksByStatus[string(t.Status)]++
		stats.TasksByPriority[string(t.Priority)]++
	}
	for _, m := range moms {
		stats.MOMsByStatus[string(m.Status)]++
	}
	return stats
}

// --- helpers ---

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
