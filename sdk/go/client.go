package momtracksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Momtrack HTTP API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Department represents the API department model.
type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Meeting represents the API meeting model.
type Meeting struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	DepartmentID string   `json:"department_id"`
	Date         string   `json:"date"`
	Attendees    []string `json:"attendees"`
	Location     string   `json:"location,omitempty"`
}

// AgendaItem is one discussed point inside a MOM.
type AgendaItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Discussion string `json:"discussion,omitempty"`
	Decisions  string `json:"decisions,omitempty"`
}

// MOM represents the API minutes-of-meeting model.
type MOM struct {
	ID              string       `json:"id"`
	MeetingID       string       `json:"meeting_id"`
	MeetingTitle    string       `json:"meeting_title,omitempty"`
	PreparedBy      string       `json:"prepared_by"`
	Summary         string       `json:"summary,omitempty"`
	Status          string       `json:"status"`
	AgendaItems     []AgendaItem `json:"agenda_items"`
	ValidatedBy     *string      `json:"validated_by,omitempty"`
	RejectionReason *string      `json:"rejection_reason,omitempty"`
	Tasks           []Task       `json:"tasks,omitempty"`
	CreatedAt       string       `json:"created_at"`
	UpdatedAt       string       `json:"updated_at"`
}

// Task represents the API task model.
type Task struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	DepartmentID string  `json:"department_id"`
	AssignedTo   string  `json:"assigned_to"`
	MOMID        *string `json:"mom_id,omitempty"`
	DueDate      *string `json:"due_date,omitempty"`
	Priority     string  `json:"priority"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// Dashboard mirrors the aggregate counters endpoint.
type Dashboard struct {
	TotalDepartments int            `json:"total_departments"`
	TotalMeetings    int            `json:"total_meetings"`
	TotalMOMs        int            `json:"total_moms"`
	TotalTasks       int            `json:"total_tasks"`
	TasksByStatus    map[string]int `json:"tasks_by_status"`
	MOMsByStatus     map[string]int `json:"moms_by_status"`
	TasksByPriority  map[string]int `json:"tasks_by_priority"`
}

// TaskFilters narrow task listings; zero values are ignored.
type TaskFilters struct {
	DepartmentID string
	AssignedTo   string
	Status       string
	MOMID        string
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// CreateDepartment creates a department.
func (c *Client) CreateDepartment(ctx context.Context, name, description string) (Department, error) {
	body := map[string]any{"name": name, "description": description}
	var resp Department
	err := c.do(ctx, http.MethodPost, "departments", body, &resp)
	return resp, err
}

// ListDepartments lists all departments.
func (c *Client) ListDepartments(ctx context.Context) ([]Department, error) {
	var resp []Department
	err := c.do(ctx, http.MethodGet, "departments", nil, &resp)
	return resp, err
}

// DeleteDepartment removes a department by id.
func (c *Client) DeleteDepartment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "departments/"+url.PathEscape(id), nil, nil)
}

// CreateMeeting creates a meeting.
func (c *Client) CreateMeeting(ctx context.Context, title, departmentID, date string, attendees []string, location string) (Meeting, error) {
	body := map[string]any{
		"title":         title,
		"department_id": departmentID,
		"date":          date,
		"attendees":     attendees,
		"location":      location,
	}
	var resp Meeting
	err := c.do(ctx, http.MethodPost, "meetings", body, &resp)
	return resp, err
}

// ListMeetings lists meetings, optionally scoped to a department.
func (c *Client) ListMeetings(ctx context.Context, departmentID string) ([]Meeting, error) {
	endpoint := "meetings"
	if departmentID != "" {
		endpoint += "?department_id=" + url.QueryEscape(departmentID)
	}
	var resp []Meeting
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// CreateMOM creates a draft MOM for a meeting.
func (c *Client) CreateMOM(ctx context.Context, meetingID, preparedBy, summary string) (MOM, error) {
	body := map[string]any{
		"meeting_id":  meetingID,
		"prepared_by": preparedBy,
		"summary":     summary,
	}
	var resp MOM
	err := c.do(ctx, http.MethodPost, "moms", body, &resp)
	return resp, err
}

// GetMOM fetches a MOM with its linked tasks.
func (c *Client) GetMOM(ctx context.Context, id string) (MOM, error) {
	var resp MOM
	err := c.do(ctx, http.MethodGet, "moms/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// ListMOMs lists MOMs, optionally filtered by status.
func (c *Client) ListMOMs(ctx context.Context, status string) ([]MOM, error) {
	endpoint := "moms"
	if status != "" {
		endpoint += "?status=" + url.QueryEscape(status)
	}
	var resp []MOM
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// AddAgendaItem appends an agenda item to a draft MOM.
func (c *Client) AddAgendaItem(ctx context.Context, momID, title, discussion, decisions string) (MOM, error) {
	body := map[string]any{
		"title":      title,
		"discussion": discussion,
		"decisions":  decisions,
	}
	var resp MOM
	err := c.do(ctx, http.MethodPost, c.momAction(momID, "agenda"), body, &resp)
	return resp, err
}

// SubmitMOM moves a draft MOM to pending review.
func (c *Client) SubmitMOM(ctx context.Context, momID string) (MOM, error) {
	var resp MOM
	err := c.do(ctx, http.MethodPost, c.momAction(momID, "submit"), nil, &resp)
	return resp, err
}

// ValidateMOM validates a pending MOM.
func (c *Client) ValidateMOM(ctx context.Context, momID, validatedBy string) (MOM, error) {
	var resp MOM
	err := c.do(ctx, http.MethodPost, c.momAction(momID, "validate"), map[string]any{"validated_by": validatedBy}, &resp)
	return resp, err
}

// RejectMOM rejects a pending MOM with a reason.
func (c *Client) RejectMOM(ctx context.Context, momID, rejectedBy, reason string) (MOM, error) {
	body := map[string]any{"rejected_by": rejectedBy, "reason": reason}
	var resp MOM
	err := c.do(ctx, http.MethodPost, c.momAction(momID, "reject"), body, &resp)
	return resp, err
}

// ReviseMOM reopens a rejected MOM as a draft.
func (c *Client) ReviseMOM(ctx context.Context, momID string) (MOM, error) {
	var resp MOM
	err := c.do(ctx, http.MethodPost, c.momAction(momID, "revise"), nil, &resp)
	return resp, err
}

// CreateTask creates a task. Zero-valued optional fields are omitted.
func (c *Client) CreateTask(ctx context.Context, t Task) (Task, error) {
	body := map[string]any{
		"title":         t.Title,
		"department_id": t.DepartmentID,
		"assigned_to":   t.AssignedTo,
	}
	if t.Description != "" {
		body["description"] = t.Description
	}
	if t.MOMID != nil {
		body["mom_id"] = *t.MOMID
	}
	if t.DueDate != nil {
		body["due_date"] = *t.DueDate
	}
	if t.Priority != "" {
		body["priority"] = t.Priority
	}
	var resp Task
	err := c.do(ctx, http.MethodPost, "tasks", body, &resp)
	return resp, err
}

// GetTask fetches a task by id.
func (c *Client) GetTask(ctx context.Context, id string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodGet, "tasks/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// ListTasks lists tasks matching the filters.
func (c *Client) ListTasks(ctx context.Context, f TaskFilters) ([]Task, error) {
	q := url.Values{}
	if f.DepartmentID != "" {
		q.Set("department_id", f.DepartmentID)
	}
	if f.AssignedTo != "" {
		q.Set("assigned_to", f.AssignedTo)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.MOMID != "" {
		q.Set("mom_id", f.MOMID)
	}
	endpoint := "tasks"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp []Task
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// StartTask moves a task from open to in progress.
func (c *Client) StartTask(ctx context.Context, id string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPost, c.taskAction(id, "start"), nil, &resp)
	return resp, err
}

// CompleteTask marks a task completed.
func (c *Client) CompleteTask(ctx context.Context, id string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPost, c.taskAction(id, "complete"), nil, &resp)
	return resp, err
}

// CancelTask marks a task cancelled.
func (c *Client) CancelTask(ctx context.Context, id string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPost, c.taskAction(id, "cancel"), nil, &resp)
	return resp, err
}

// Dashboard fetches the workspace-wide counters.
func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	var resp Dashboard
	err := c.do(ctx, http.MethodGet, "dashboard", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/api/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) momAction(id, action string) string {
	return fmt.Sprintf("moms/%s/%s", url.PathEscape(id), action)
}

func (c *Client) taskAction(id, action string) string {
	return fmt.Sprintf("tasks/%s/%s", url.PathEscape(id), action)
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
