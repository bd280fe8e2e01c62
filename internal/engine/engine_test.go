package engine_test

import (
	"errors"
	"testing"
	"time"

	"momtrack/internal/config"
	"momtrack/internal/domain"
	"momtrack/internal/engine"
	"momtrack/internal/store"
)

type testEnv struct {
	Engine *engine.Engine
	Dir    string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	eng := engine.New(st, config.Default())
	eng.Now = func() time.Time { return time.Date(2026, 2, 6, 9, 0, 0, 0, time.UTC) }
	return testEnv{Engine: eng, Dir: dir}
}

func (env testEnv) meeting(t *testing.T) domain.Meeting {
	t.Helper()
	d, err := env.Engine.CreateDepartment("Engineering", "")
	if err != nil {
		t.Fatalf("create department: %v", err)
	}
	m, err := env.Engine.CreateMeeting("Sprint Planning", d.ID, "2026-02-06", []string{"Alice", "Bob"}, "Room A")
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	return m
}

func (env testEnv) draftMOM(t *testing.T) domain.MinutesOfMeeting {
	t.Helper()
	m := env.meeting(t)
	mom, err := env.Engine.CreateMOM(m.ID, "Alice", "planning notes")
	if err != nil {
		t.Fatalf("create mom: %v", err)
	}
	return mom
}

func (env testEnv) pendingMOM(t *testing.T) domain.MinutesOfMeeting {
	t.Helper()
	mom := env.draftMOM(t)
	mom, err := env.Engine.SubmitForReview(mom.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return mom
}

func isInvalidTransition(err error) bool {
	var te domain.InvalidTransitionError
	return errors.As(err, &te)
}

func isValidation(err error) bool {
	var ve domain.ValidationError
	return errors.As(err, &ve)
}

func TestMOMApprovalPath(t *testing.T) {
	env := newTestEnv(t)
	mom := env.draftMOM(t)
	if mom.Status != domain.MOMDraft {
		t.Fatalf("new mom status %s", mom.Status)
	}
	mom, err := env.Engine.SubmitForReview(mom.ID)
	if err != nil || mom.Status != domain.MOMPendingReview {
		t.Fatalf("submit: %v status=%s", err, mom.Status)
	}
	mom, err = env.Engine.ValidateMOM(mom.ID, "Manager Bob")
	if err != nil || mom.Status != domain.MOMValidated {
		t.Fatalf("validate: %v status=%s", err, mom.Status)
	}
	if mom.ValidatedBy == nil || *mom.ValidatedBy != "Manager Bob" {
		t.Fatalf("validated_by not recorded: %+v", mom.ValidatedBy)
	}
	// validated is terminal
	if _, err := env.Engine.SubmitForReview(mom.ID); !isInvalidTransition(err) {
		t.Fatalf("submit after validate: %v", err)
	}
	if _, err := env.Engine.ReviseMOM(mom.ID); !isInvalidTransition(err) {
		t.Fatalf("revise after validate: %v", err)
	}
}

func TestMOMRejectionLoop(t *testing.T) {
	env := newTestEnv(t)
	mom := env.pendingMOM(t)
	mom, err := env.Engine.RejectMOM(mom.ID, "Manager Bob", "missing attendee list")
	if err != nil || mom.Status != domain.MOMRejected {
		t.Fatalf("reject: %v status=%s", err, mom.Status)
	}
	if mom.RejectionReason == nil || *mom.RejectionReason != "missing attendee list" {
		t.Fatalf("rejection reason not recorded: %+v", mom.RejectionReason)
	}
	mom, err = env.Engine.ReviseMOM(mom.ID)
	if err != nil || mom.Status != domain.MOMDraft {
		t.Fatalf("revise: %v status=%s", err, mom.Status)
	}
	if mom.RejectionReason != nil || mom.ValidatedBy != nil {
		t.Fatalf("revise did not clear review fields: %+v", mom)
	}
	// a second revise from draft is an error
	if _, err := env.Engine.ReviseMOM(mom.ID); !isInvalidTransition(err) {
		t.Fatalf("revise from draft: %v", err)
	}
	// the full cycle can run again to validation
	if _, err := env.Engine.SubmitForReview(mom.ID); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	mom, err = env.Engine.ValidateMOM(mom.ID, "Manager Bob")
	if err != nil || mom.Status != domain.MOMValidated {
		t.Fatalf("validate after revision: %v", err)
	}
	if mom.RejectionReason != nil {
		t.Fatalf("stale rejection reason survived validation")
	}
}

func TestMOMGuardsFromWrongStates(t *testing.T) {
	env := newTestEnv(t)
	draft := env.draftMOM(t)
	if _, err := env.Engine.ValidateMOM(draft.ID, "Bob"); !isInvalidTransition(err) {
		t.Fatalf("validate draft: %v", err)
	}
	if _, err := env.Engine.RejectMOM(draft.ID, "Bob", "nope"); !isInvalidTransition(err) {
		t.Fatalf("reject draft: %v", err)
	}
	pending := env.pendingMOM(t)
	if _, err := env.Engine.SubmitForReview(pending.ID); !isInvalidTransition(err) {
		t.Fatalf("double submit: %v", err)
	}
}

func TestMOMReviewerInputsRequired(t *testing.T) {
	env := newTestEnv(t)
	mom := env.pendingMOM(t)
	if _, err := env.Engine.ValidateMOM(mom.ID, ""); !isValidation(err) {
		t.Fatalf("empty validated_by: %v", err)
	}
	if _, err := env.Engine.RejectMOM(mom.ID, "", "reason"); !isValidation(err) {
		t.Fatalf("empty rejected_by: %v", err)
	}
	if _, err := env.Engine.RejectMOM(mom.ID, "Bob", ""); !isValidation(err) {
		t.Fatalf("empty reason: %v", err)
	}
	// the failed calls must not have moved the record
	got, err := env.Engine.GetMOM(mom.ID)
	if err != nil || got.Status != domain.MOMPendingReview {
		t.Fatalf("status drifted: %v %s", err, got.Status)
	}
}

func TestAgendaItemsDraftOnly(t *testing.T) {
	env := newTestEnv(t)
	mom := env.draftMOM(t)
	for _, title := range []string{"Roadmap", "Budget", "Hiring"} {
		var err error
		mom, err = env.Engine.AddAgendaItem(mom.ID, title, "notes", "decided")
		if err != nil {
			t.Fatalf("add %s: %v", title, err)
		}
	}
	if len(mom.AgendaItems) != 3 {
		t.Fatalf("agenda count %d", len(mom.AgendaItems))
	}
	for i, want := range []string{"Roadmap", "Budget", "Hiring"} {
		if mom.AgendaItems[i].Title != want {
			t.Fatalf("agenda order: position %d is %s", i, mom.AgendaItems[i].Title)
		}
	}
	if _, err := env.Engine.SubmitForReview(mom.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.AddAgendaItem(mom.ID, "Late item", "", ""); !isInvalidTransition(err) {
		t.Fatalf("agenda append after submit: %v", err)
	}
	if _, err := env.Engine.AddAgendaItem(mom.ID, "", "", ""); err == nil {
		t.Fatalf("empty agenda title accepted")
	}
}

func TestCreateMOMChecksMeeting(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateMOM("no-such-meeting", "Alice", ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("dangling meeting: %v", err)
	}
	m := env.meeting(t)
	if _, err := env.Engine.CreateMOM(m.ID, "", ""); !isValidation(err) {
		t.Fatalf("empty prepared_by: %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t)
	d, _ := env.Engine.CreateDepartment("Engineering", "")
	task, err := env.Engine.CreateTask(engine.TaskCreateOptions{
		Title:        "Ship feature",
		DepartmentID: d.ID,
		AssignedTo:   "Carol",
		Priority:     domain.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != domain.TaskOpen {
		t.Fatalf("new task status %s", task.Status)
	}
	task, err = env.Engine.StartTask(task.ID)
	if err != nil || task.Status != domain.TaskInProgress {
		t.Fatalf("start: %v status=%s", err, task.Status)
	}
	// re-start is an error, not a no-op
	if _, err := env.Engine.StartTask(task.ID); !isInvalidTransition(err) {
		t.Fatalf("restart: %v", err)
	}
	task, err = env.Engine.CompleteTask(task.ID)
	if err != nil || task.Status != domain.TaskCompleted {
		t.Fatalf("complete: %v status=%s", err, task.Status)
	}
	// completed is terminal
	for name, op := range map[string]func(string) (domain.Task, error){
		"start":    env.Engine.StartTask,
		"complete": env.Engine.CompleteTask,
		"cancel":   env.Engine.CancelTask,
	} {
		if _, err := op(task.ID); !isInvalidTransition(err) {
			t.Fatalf("%s on completed task: %v", name, err)
		}
	}
}

func TestTaskCancelPaths(t *testing.T) {
	env := newTestEnv(t)
	d, _ := env.Engine.CreateDepartment("Engineering", "")
	opts := engine.TaskCreateOptions{Title: "t", DepartmentID: d.ID, AssignedTo: "Eve"}

	fromOpen, err := env.Engine.CreateTask(opts)
	if err != nil {
		t.Fatal(err)
	}
	if fromOpen, err = env.Engine.CancelTask(fromOpen.ID); err != nil || fromOpen.Status != domain.TaskCancelled {
		t.Fatalf("cancel open: %v", err)
	}

	fromInProgress, err := env.Engine.CreateTask(opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.StartTask(fromInProgress.ID); err != nil {
		t.Fatal(err)
	}
	if fromInProgress, err = env.Engine.CancelTask(fromInProgress.ID); err != nil || fromInProgress.Status != domain.TaskCancelled {
		t.Fatalf("cancel in_progress: %v", err)
	}
	// cancelled is terminal
	if _, err := env.Engine.StartTask(fromInProgress.ID); !isInvalidTransition(err) {
		t.Fatalf("start cancelled: %v", err)
	}
	// open can complete without ever starting
	direct, err := env.Engine.CreateTask(opts)
	if err != nil {
		t.Fatal(err)
	}
	if direct, err = env.Engine.CompleteTask(direct.ID); err != nil || direct.Status != domain.TaskCompleted {
		t.Fatalf("complete open: %v", err)
	}
}

func TestTaskCreationChecksForeignKeys(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "t", DepartmentID: "nope", AssignedTo: "a"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("dangling department: %v", err)
	}
	d, _ := env.Engine.CreateDepartment("Engineering", "")
	if _, err := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "t", DepartmentID: d.ID, AssignedTo: "a", MOMID: "nope"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("dangling mom: %v", err)
	}
	if _, err := env.Engine.CreateTask(engine.TaskCreateOptions{DepartmentID: d.ID, AssignedTo: "a"}); !isValidation(err) {
		t.Fatalf("missing title: %v", err)
	}
}

func TestTaskDefaultPriority(t *testing.T) {
	env := newTestEnv(t)
	d, _ := env.Engine.CreateDepartment("Engineering", "")
	task, err := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "t", DepartmentID: d.ID, AssignedTo: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if task.Priority != domain.PriorityMedium {
		t.Fatalf("default priority %s", task.Priority)
	}
	if _, err := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "t", DepartmentID: d.ID, AssignedTo: "a", Priority: "urgent"}); !isValidation(err) {
		t.Fatalf("bad priority: %v", err)
	}
}

func TestTaskFilters(t *testing.T) {
	env := newTestEnv(t)
	mom := env.draftMOM(t)
	d2, _ := env.Engine.CreateDepartment("Marketing", "")
	meeting, _ := env.Engine.GetMeeting(mom.MeetingID)
	eng := meeting.DepartmentID

	t1, _ := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "one", DepartmentID: eng, AssignedTo: "Carol", MOMID: mom.ID})
	t2, _ := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "two", DepartmentID: eng, AssignedTo: "Bob"})
	t3, _ := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "three", DepartmentID: d2.ID, AssignedTo: "Carol"})
	if _, err := env.Engine.StartTask(t2.ID); err != nil {
		t.Fatal(err)
	}

	byDept, err := env.Engine.ListTasks(engine.TaskFilters{DepartmentID: eng})
	if err != nil || len(byDept) != 2 {
		t.Fatalf("by department: %v %d", err, len(byDept))
	}
	byAssignee, err := env.Engine.ListTasks(engine.TaskFilters{AssignedTo: "Carol"})
	if err != nil || len(byAssignee) != 2 {
		t.Fatalf("by assignee: %v %d", err, len(byAssignee))
	}
	byStatus, err := env.Engine.ListTasks(engine.TaskFilters{Status: domain.TaskInProgress})
	if err != nil || len(byStatus) != 1 || byStatus[0].ID != t2.ID {
		t.Fatalf("by status: %v %+v", err, byStatus)
	}
	forMOM, err := env.Engine.TasksForMOM(mom.ID)
	if err != nil || len(forMOM) != 1 || forMOM[0].ID != t1.ID {
		t.Fatalf("for mom: %v %+v", err, forMOM)
	}
	combined, err := env.Engine.ListTasks(engine.TaskFilters{DepartmentID: d2.ID, AssignedTo: "Carol"})
	if err != nil || len(combined) != 1 || combined[0].ID != t3.ID {
		t.Fatalf("combined: %v %+v", err, combined)
	}
}

func TestDepartmentUpdate(t *testing.T) {
	env := newTestEnv(t)
	d, _ := env.Engine.CreateDepartment("Engineering", "old")
	newName := "Platform"
	got, err := env.Engine.UpdateDepartment(d.ID, &newName, nil)
	if err != nil || got.Name != "Platform" || got.Description != "old" {
		t.Fatalf("partial update: %v %+v", err, got)
	}
	empty := ""
	if _, err := env.Engine.UpdateDepartment(d.ID, &empty, nil); !isValidation(err) {
		t.Fatalf("empty name accepted: %v", err)
	}
}

func TestDashboardCounts(t *testing.T) {
	env := newTestEnv(t)
	mom := env.draftMOM(t)
	m, _ := env.Engine.GetMeeting(mom.MeetingID)
	d := m.DepartmentID

	t1, _ := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "a", DepartmentID: d, AssignedTo: "x", Priority: domain.PriorityHigh})
	if _, err := env.Engine.StartTask(t1.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "b", DepartmentID: d, AssignedTo: "y"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.SubmitForReview(mom.ID); err != nil {
		t.Fatal(err)
	}

	stats := env.Engine.Dashboard()
	if stats.TotalDepartments != 1 || stats.TotalMeetings != 1 || stats.TotalMOMs != 1 || stats.TotalTasks != 2 {
		t.Fatalf("totals: %+v", stats)
	}
	if stats.TasksByStatus["in_progress"] != 1 || stats.TasksByStatus["open"] != 1 {
		t.Fatalf("tasks by status: %+v", stats.TasksByStatus)
	}
	if stats.MOMsByStatus["pending_review"] != 1 {
		t.Fatalf("moms by status: %+v", stats.MOMsByStatus)
	}
	if stats.TasksByPriority["high"] != 1 || stats.TasksByPriority["medium"] != 1 {
		t.Fatalf("tasks by priority: %+v", stats.TasksByPriority)
	}
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	env := newTestEnv(t)
	mom := env.pendingMOM(t)
	if _, err := env.Engine.ValidateMOM(mom.ID, "Manager Bob"); err != nil {
		t.Fatal(err)
	}

	st, err := store.Open(env.Dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	reopened := engine.New(st, config.Default())
	got, err := reopened.GetMOM(mom.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Status != domain.MOMValidated || got.ValidatedBy == nil || *got.ValidatedBy != "Manager Bob" {
		t.Fatalf("state lost across reopen: %+v", got)
	}
}
