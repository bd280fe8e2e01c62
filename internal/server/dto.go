package server

import (
	"momtrack/internal/domain"
	"momtrack/internal/engine"
)

// Request payloads

type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type UpdateDepartmentRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type CreateMeetingRequest struct {
	Title        string   `json:"title"`
	DepartmentID string   `json:"department_id"`
	Date         string   `json:"date"`
	Attendees    []string `json:"attendees,omitempty"`
	Location     string   `json:"location,omitempty"`
}

type CreateMOMRequest struct {
	MeetingID  string `json:"meeting_id"`
	PreparedBy string `json:"prepared_by"`
	Summary    string `json:"summary,omitempty"`
}

type AddAgendaItemRequest struct {
	Title      string `json:"title"`
	Discussion string `json:"discussion,omitempty"`
	Decisions  string `json:"decisions,omitempty"`
}

type ValidateMOMRequest struct {
	ValidatedBy string `json:"validated_by"`
}

type RejectMOMRequest struct {
	RejectedBy string `json:"rejected_by"`
	Reason     string `json:"reason"`
}

type CreateTaskRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	DepartmentID string  `json:"department_id"`
	AssignedTo   string  `json:"assigned_to"`
	MOMID        *string `json:"mom_id,omitempty"`
	DueDate      *string `json:"due_date,omitempty"`
	Priority     *string `json:"priority,omitempty" enum:"low,medium,high,critical"`
}

// Response payloads

type DepartmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type MeetingResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	DepartmentID string   `json:"department_id"`
	Date         string   `json:"date"`
	Attendees    []string `json:"attendees,omitempty"`
	Location     string   `json:"location,omitempty"`
}

type AgendaItemResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Discussion string `json:"discussion,omitempty"`
	Decisions  string `json:"decisions,omitempty"`
}

type MOMResponse struct {
	ID              string               `json:"id"`
	MeetingID       string               `json:"meeting_id"`
	MeetingTitle    string               `json:"meeting_title,omitempty"`
	PreparedBy      string               `json:"prepared_by"`
	Summary         string               `json:"summary,omitempty"`
	Status          string               `json:"status" enum:"draft,pending_review,validated,rejected"`
	AgendaItems     []AgendaItemResponse `json:"agenda_items,omitempty"`
	ValidatedBy     *string              `json:"validated_by,omitempty"`
	RejectionReason *string              `json:"rejection_reason,omitempty"`
	Tasks           []TaskResponse       `json:"tasks,omitempty"`
	CreatedAt       string               `json:"created_at" format:"date-time"`
	UpdatedAt       string               `json:"updated_at" format:"date-time"`
}

type TaskResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	DepartmentID string  `json:"department_id"`
	AssignedTo   string  `json:"assigned_to"`
	MOMID        *string `json:"mom_id,omitempty"`
	DueDate      *string `json:"due_date,omitempty"`
	Priority     string  `json:"priority" enum:"low,medium,high,critical"`
	Status       string  `json:"status" enum:"open,in_progress,completed,cancelled"`
	CreatedAt    string  `json:"created_at" format:"date-time"`
	UpdatedAt    string  `json:"updated_at" format:"date-time"`
}

type DashboardResponse struct {
	TotalDepartments int            `json:"total_departments"`
	TotalMeetings    int            `json:"total_meetings"`
	TotalMOMs        int            `json:"total_moms"`
	TotalTasks       int            `json:"total_tasks"`
	TasksByStatus    map[string]int `json:"tasks_by_status"`
	MOMsByStatus     map[string]int `json:"moms_by_status"`
	TasksByPriority  map[string]int `json:"tasks_by_priority"`
}

// Mapping helpers

func departmentResponse(d domain.Department) DepartmentResponse {
	return DepartmentResponse{ID: d.ID, Name: d.Name, Description: d.Description}
}

func mapDepartments(in []domain.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(in))
	for _, d := range in {
		out = append(out, departmentResponse(d))
	}
	return out
}

func meetingResponse(m domain.Meeting) MeetingResponse {
	return MeetingResponse{
		ID:           m.ID,
		Title:        m.Title,
		DepartmentID: m.DepartmentID,
		Date:         m.Date,
		Attendees:    m.Attendees,
		Location:     m.Location,
	}
}

func mapMeetings(in []domain.Meeting) []MeetingResponse {
	out := make([]MeetingResponse, 0, len(in))
	for _, m := range in {
		out = append(out, meetingResponse(m))
	}
	return out
}

func momResponse(m domain.MinutesOfMeeting) MOMResponse {
	items := make([]AgendaItemResponse, 0, len(m.AgendaItems))
	for _, it := range m.AgendaItems {
		items = append(items, AgendaItemResponse(it))
	}
	return MOMResponse{
		ID:              m.ID,
		MeetingID:       m.MeetingID,
		PreparedBy:      m.PreparedBy,
		Summary:         m.Summary,
		Status:          string(m.Status),
		AgendaItems:     items,
		ValidatedBy:     m.ValidatedBy,
		RejectionReason: m.RejectionReason,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func taskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		DepartmentID: t.DepartmentID,
		AssignedTo:   t.AssignedTo,
		MOMID:        t.MOMID,
		DueDate:      t.DueDate,
		Priority:     string(t.Priority),
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func mapTasks(in []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(in))
	for _, t := range in {
		out = append(out, taskResponse(t))
	}
	return out
}

func dashboardResponse(s engine.DashboardStats) DashboardResponse {
	return DashboardResponse{
		TotalDepartments: s.TotalDepartments,
		TotalMeetings:    s.TotalMeetings,
		TotalMOMs:        s.TotalMOMs,
		TotalTasks:       s.TotalTasks,
		TasksByStatus:    s.TasksByStatus,
		MOMsByStatus:     s.MOMsByStatus,
		TasksByPriority:  s.TasksByPriority,
	}
}
