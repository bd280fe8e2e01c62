package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"momtrack/internal/domain"
)

func TestStatusUnmarshalRejectsUnknown(t *testing.T) {
	var ms domain.MOMStatus
	if err := json.Unmarshal([]byte(`"approved"`), &ms); err == nil {
		t.Fatalf("unknown mom status accepted")
	}
	var ts domain.TaskStatus
	err := json.Unmarshal([]byte(`"done"`), &ts)
	var ve domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "status" {
		t.Fatalf("expected ValidationError on status, got %v", err)
	}
	var tp domain.TaskPriority
	if err := json.Unmarshal([]byte(`"urgent"`), &tp); err == nil {
		t.Fatalf("unknown priority accepted")
	}
	if err := json.Unmarshal([]byte(`"pending_review"`), &ms); err != nil || ms != domain.MOMPendingReview {
		t.Fatalf("known status rejected: %v", err)
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	for status, terminal := range map[domain.TaskStatus]bool{
		domain.TaskOpen:       false,
		domain.TaskInProgress: false,
		domain.TaskCompleted:  true,
		domain.TaskCancelled:  true,
	} {
		if status.Terminal() != terminal {
			t.Fatalf("%s terminal = %v", status, status.Terminal())
		}
	}
}

func TestEntityValidate(t *testing.T) {
	task := domain.Task{ID: "t-1", Title: "x", DepartmentID: "d-1", AssignedTo: "a", Priority: domain.PriorityLow, Status: domain.TaskOpen}
	if err := task.Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}
	task.AssignedTo = ""
	var ve domain.ValidationError
	if err := task.Validate(); !errors.As(err, &ve) || ve.Field != "assigned_to" {
		t.Fatalf("missing assignee: %v", err)
	}
	mom := domain.MinutesOfMeeting{ID: "m-1", MeetingID: "mt-1", PreparedBy: "a", Status: "nonsense"}
	if err := mom.Validate(); err == nil {
		t.Fatalf("bad mom status accepted")
	}
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := domain.InvalidTransitionError{Entity: "task", ID: "t-1", Status: "completed", Operation: "start"}
	want := "cannot start task t-1: status is completed"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
