// Package server exposes the workflow engine over HTTP. It is a translation
// layer only; every rule lives in the engine.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"momtrack/internal/domain"
	"momtrack/internal/engine"
	"momtrack/internal/store"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   *engine.Engine
	BasePath string
	Logger   *zap.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"invalid_transition"`
	Message string         `json:"message" example:"cannot validate mom m-1: status is draft"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the workflow tracker API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(requestLogger(logger))
	hcfg := huma.DefaultConfig("Momtrack API", "0.1.0")
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerDepartments(group, cfg.Engine)
	registerMeetings(group, cfg.Engine)
	registerMOMs(group, cfg.Engine)
	registerTasks(group, cfg.Engine)
	registerDashboard(group, cfg.Engine)

	return router, nil
}

// requestLogger logs every request with status, method, path and latency.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			fields := []zap.Field{
				zap.Int("status", ww.Status()),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("latency", time.Since(start)),
			}
			if ww.Status() >= http.StatusInternalServerError {
				logger.Error("http request", fields...)
				return
			}
			logger.Info("http request", fields...)
		})
	}
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// handleError maps the engine's typed errors onto HTTP statuses.
func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var te domain.InvalidTransitionError
	if errors.As(err, &te) {
		return newAPIError(http.StatusConflict, "invalid_transition", err.Error(), map[string]any{
			"status":    te.Status,
			"operation": te.Operation,
		})
	}
	var ve domain.ValidationError
	if errors.As(err, &ve) {
		return newAPIError(http.StatusBadRequest, "validation_error", err.Error(), map[string]any{"field": ve.Field})
	}
	if errors.Is(err, store.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	if errors.Is(err, store.ErrDuplicateKey) {
		return newAPIError(http.StatusConflict, "duplicate_key", err.Error(), nil)
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerDepartments(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-department",
		Method:        http.MethodPost,
		Path:          "/departments",
		Summary:       "Create department",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		Body CreateDepartmentRequest `json:"body"`
	}) (*struct {
		Body DepartmentResponse `json:"body"`
	}, error) {
		d, err := e.CreateDepartment(input.Body.Name, input.Body.Description)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DepartmentResponse `json:"body"`
		}{Body: departmentResponse(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-departments",
		Method:      http.MethodGet,
		Path:        "/departments",
		Summary:     "List departments",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []DepartmentResponse `json:"body"`
	}, error) {
		items, err := e.ListDepartments()
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []DepartmentResponse `json:"body"`
		}{Body: mapDepartments(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-department",
		Method:      http.MethodGet,
		Path:        "/departments/{id}",
		Summary:     "Get department",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body DepartmentResponse `json:"body"`
	}, error) {
		d, err := e.GetDepartment(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DepartmentResponse `json:"body"`
		}{Body: departmentResponse(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-department",
		Method:      http.MethodPatch,
		Path:        "/departments/{id}",
		Summary:     "Update department",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string                  `path:"id"`
		Body UpdateDepartmentRequest `json:"body"`
	}) (*struct {
		Body DepartmentResponse `json:"body"`
	}, error) {
		d, err := e.UpdateDepartment(input.ID, input.Body.Name, input.Body.Description)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DepartmentResponse `json:"body"`
		}{Body: departmentResponse(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-department",
		Method:        http.MethodDelete,
		Path:          "/departments/{id}",
		Summary:       "Delete department",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := e.DeleteDepartment(input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerMeetings(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-meeting",
		Method:        http.MethodPost,
		Path:          "/meetings",
		Summary:       "Create meeting",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateMeetingRequest `json:"body"`
	}) (*struct {
		Body MeetingResponse `json:"body"`
	}, error) {
		m, err := e.CreateMeeting(input.Body.Title, input.Body.DepartmentID, input.Body.Date, input.Body.Attendees, input.Body.Location)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MeetingResponse `json:"body"`
		}{Body: meetingResponse(m)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-meetings",
		Method:      http.MethodGet,
		Path:        "/meetings",
		Summary:     "List meetings",
	}, func(ctx context.Context, input *struct {
		DepartmentID string `query:"department_id"`
	}) (*struct {
		Body []MeetingResponse `json:"body"`
	}, error) {
		items, err := e.ListMeetings(input.DepartmentID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []MeetingResponse `json:"body"`
		}{Body: mapMeetings(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-meeting",
		Method:      http.MethodGet,
		Path:        "/meetings/{id}",
		Summary:     "Get meeting",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body MeetingResponse `json:"body"`
	}, error) {
		m, err := e.GetMeeting(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MeetingResponse `json:"body"`
		}{Body: meetingResponse(m)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-meeting",
		Method:        http.MethodDelete,
		Path:          "/meetings/{id}",
		Summary:       "Delete meeting",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := e.DeleteMeeting(input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerMOMs(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-mom",
		Method:        http.MethodPost,
		Path:          "/moms",
		Summary:       "Create minutes of meeting",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body CreateMOMRequest `json:"body"`
	}) (*struct {
		Body MOMResponse `json:"body"`
	}, error) {
		m, err := e.CreateMOM(input.Body.MeetingID, input.Body.PreparedBy, input.Body.Summary)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MOMResponse `json:"body"`
		}{Body: enrichMOM(e, m)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-moms",
		Method:      http.MethodGet,
		Path:        "/moms",
		Summary:     "List minutes of meeting",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Status string `query:"status"`
	}) (*struct {
		Body []MOMResponse `json:"body"`
	}, error) {
		status := domain.MOMStatus(input.Status)
		if input.Status != "" && !status.Valid() {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "unknown mom status "+input.Status, map[string]any{"field": "status"})
		}
		items, err := e.ListMOMs(status)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]MOMResponse, 0, len(items))
		for _, m := range items {
			out = append(out, enrichMOM(e, m))
		}
		return &struct {
			Body []MOMResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-mom",
		Method:      http.MethodGet,
		Path:        "/moms/{id}",
		Summary:     "Get minutes of meeting",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body MOMResponse `json:"body"`
	}, error) {
		m, err := e.GetMOM(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		resp := enrichMOM(e, m)
		tasks, err := e.TasksForMOM(m.ID)
		if err != nil {
			return nil, handleError(err)
		}
		resp.Tasks = mapTasks(tasks)
		return &struct {
			Body MOMResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-agenda-item",
		Method:      http.MethodPost,
		Path:        "/moms/{id}/agenda",
		Summary:     "Append agenda item to a draft MOM",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string               `path:"id"`
		Body AddAgendaItemRequest `json:"body"`
	}) (*struct {
		Body MOMResponse `json:"body"`
	}, error) {
		m, err := e.AddAgendaItem(input.ID, input.Body.Title, input.Body.Discussion, input.Body.Decisions)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MOMResponse `json:"body"`
		}{Body: enrichMOM(e, m)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "submit-mom",
		Method:      http.MethodPost,
		Path:        "/moms/{id}/submit",
		Summary:     "Submit MOM for review",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body MOMResponse `json:"body"`
	}, error) {
		m, err := e.SubmitForReview(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MOMResponse `json:"body"`
		}{Body: enrichMOM(e, m)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate-mom",
		Method:      http.MethodPost,
		Path:        "/moms/{id}/validate",
		Summary:     "Validate a pending MOM",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string             `path:"id"`
		Body ValidateMOMRequest `json:"body"`
	}) (*struct {
		Body MOMResponse `json:"body"`
	}, error) {
		m, err := e.ValidateMOM(input.ID, input.Body.ValidatedBy)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MOMResponse `json:"body"`
		}{Body: enrichMOM(e, m)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reject-mom",
		Method:      http.MethodPost,
		Path:        "/moms/{id}/reject",
		Summary:     "Reject a pending MOM",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string           `path:"id"`
		Body RejectMOMRequest `json:"body"`
	}) (*struct {
		Body MOMResponse `json:"body"`
	}, error) {
		m, err := e.RejectMOM(input.ID, input.Body.RejectedBy, input.Body.Reason)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MOMResponse `json:"body"`
		}{Body: enrichMOM(e, m)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "revise-mom",
		Method:      http.MethodPost,
		Path:        "/moms/{id}/revise",
		Summary:     "Reopen a rejected MOM for revision",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body MOMResponse `json:"body"`
	}, error) {
		m, err := e.ReviseMOM(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MOMResponse `json:"body"`
		}{Body: enrichMOM(e, m)}, nil
	})
}

// enrichMOM resolves the meeting title the way the UI expects; a dangling
// meeting key renders as Unknown rather than failing the read.
func enrichMOM(e *engine.Engine, m domain.MinutesOfMeeting) MOMResponse {
	resp := momResponse(m)
	if meeting, err := e.GetMeeting(m.MeetingID); err == nil {
		resp.MeetingTitle = meeting.Title
	} else {
		resp.MeetingTitle = "Unknown"
	}
	return resp
}

func registerTasks(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		opts := engine.TaskCreateOptions{
			Title:        input.Body.Title,
			DepartmentID: input.Body.DepartmentID,
			AssignedTo:   input.Body.AssignedTo,
		}
		if input.Body.Description != nil {
			opts.Description = *input.Body.Description
		}
		if input.Body.MOMID != nil {
			opts.MOMID = *input.Body.MOMID
		}
		if input.Body.DueDate != nil {
			opts.DueDate = *input.Body.DueDate
		}
		if input.Body.Priority != nil {
			opts.Priority = domain.TaskPriority(*input.Body.Priority)
		}
		t, err := e.CreateTask(opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		DepartmentID string `query:"department_id"`
		AssignedTo   string `query:"assigned_to"`
		Status       string `query:"status"`
		MOMID        string `query:"mom_id"`
	}) (*struct {
		Body []TaskResponse `json:"body"`
	}, error) {
		status := domain.TaskStatus(input.Status)
		if input.Status != "" && !status.Valid() {
			return nil, newAPIError(http.StatusBadRequest, "validation_error", "unknown task status "+input.Status, map[string]any{"field": "status"})
		}
		items, err := e.ListTasks(engine.TaskFilters{
			DepartmentID: input.DepartmentID,
			AssignedTo:   input.AssignedTo,
			Status:       status,
			MOMID:        input.MOMID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []TaskResponse `json:"body"`
		}{Body: mapTasks(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		t, err := e.GetTask(input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})

	taskTransition := func(opID, suffix, summary string, run func(id string) (domain.Task, error)) {
		huma.Register(api, huma.Operation{
			OperationID: opID,
			Method:      http.MethodPost,
			Path:        "/tasks/{id}/" + suffix,
			Summary:     summary,
			Errors:      []int{http.StatusNotFound, http.StatusConflict},
		}, func(ctx context.Context, input *struct {
			ID string `path:"id"`
		}) (*struct {
			Body TaskResponse `json:"body"`
		}, error) {
			t, err := run(input.ID)
			if err != nil {
				return nil, handleError(err)
			}
			return &struct {
				Body TaskResponse `json:"body"`
			}{Body: taskResponse(t)}, nil
		})
	}
	taskTransition("start-task", "start", "Start task", e.StartTask)
	taskTransition("complete-task", "complete", "Complete task", e.CompleteTask)
	taskTransition("cancel-task", "cancel", "Cancel task", e.CancelTask)
}

func registerDashboard(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Dashboard aggregates",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body DashboardResponse `json:"body"`
	}, error) {
		return &struct {
			Body DashboardResponse `json:"body"`
		}{Body: dashboardResponse(e.Dashboard())}, nil
	})
}
