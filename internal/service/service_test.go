package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"beproductive/backend/internal/db"
	"beproductive/backend/internal/model"
	"beproductive/backend/internal/repository"
)

type testRepos struct {
	users    *repository.UserRepository
	tasks    *repository.TaskRepository
	sessions *repository.FocusSessionRepository
	rules    *repository.RecurringTaskRepository
	goals    *repository.GoalRepository
}

func setupRepos(t *testing.T) testRepos {
	t.Helper()

	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	if err := db.RunMigrations(conn, filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return testRepos{
		users:    repository.NewUserRepository(conn),
		tasks:    repository.NewTaskRepository(conn),
		sessions: repository.NewFocusSessionRepository(conn),
		rules:    repository.NewRecurringTaskRepository(conn),
		goals:    repository.NewGoalRepository(conn),
	}
}

func createUser(t *testing.T, repos testRepos, id string) {
	t.Helper()
	now := time.Now().UTC()
	if err := repos.users.Create(context.Background(), &model.User{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		Timezone:     "UTC",
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func TestRecordProgressStopsAtTotal(t *testing.T) {
	repos := setupRepos(t)
	createUser(t, repos, "u1")
	svc := NewTaskService(repos.tasks, repos.sessions, repos.rules, repos.goals)
	ctx := context.Background()

	total := 2
	task, apiErr := svc.Create(ctx, "u1", CreateTaskInput{Title: "Essay", Date: "2024-06-03", PomodorosTotal: &total})
	if apiErr != nil {
		t.Fatalf("create task: %v", apiErr)
	}

	for i := 0; i < 3; i++ {
		task, apiErr = svc.RecordProgress(ctx, "u1", task.ID, ProgressInput{})
		if apiErr != nil {
			t.Fatalf("record progress %d: %v", i+1, apiErr)
		}
	}
	if task.PomodorosCompleted != 2 || task.Status != model.TaskStatusDone {
		t.Fatalf("expected 2 completed and DONE, got %d %s", task.PomodorosCompleted, task.Status)
	}

	sessions, apiErr := svc.ListSessions(ctx, "u1", task.ID)
	if apiErr != nil {
		t.Fatalf("list sessions: %v", apiErr)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	for _, session := range sessions {
		if session.EndTime == nil || session.EndTime.Sub(session.StartTime) != 25*time.Minute {
			t.Fatalf("expected default 25 minute interval, got %+v", session)
		}
	}
}

func TestUpdateRejectsTotalBelowCompleted(t *testing.T) {
	repos := setupRepos(t)
	createUser(t, repos, "u1")
	svc := NewTaskService(repos.tasks, repos.sessions, repos.rules, repos.goals)
	ctx := context.Background()

	total := 3
	task, _ := svc.Create(ctx, "u1", CreateTaskInput{Title: "Read", Date: "2024-06-03", PomodorosTotal: &total})
	svc.RecordProgress(ctx, "u1", task.ID, ProgressInput{})
	svc.RecordProgress(ctx, "u1", task.ID, ProgressInput{})

	lower := 1
	if _, apiErr := svc.Update(ctx, "u1", task.ID, UpdateTaskInput{PomodorosTotal: &lower}); apiErr == nil || apiErr.Code != "invalid_pomodoros" {
		t.Fatalf("expected invalid_pomodoros, got %v", apiErr)
	}

	description := SetString("")
	updated, apiErr := svc.Update(ctx, "u1", task.ID, UpdateTaskInput{Description: description})
	if apiErr != nil {
		t.Fatalf("update: %v", apiErr)
	}
	if updated.Description != nil {
		t.Fatalf("expected empty description to clear the field, got %q", *updated.Description)
	}
}

func TestBackfillFocusSessions(t *testing.T) {
	repos := setupRepos(t)
	createUser(t, repos, "u1")
	ctx := context.Background()
	now := time.Now().UTC()

	task := &model.Task{
		ID:                 "t1",
		UserID:             "u1",
		Title:              "Legacy",
		Date:               "2024-05-20",
		Status:             model.TaskStatusTodo,
		Priority:           1,
		PomodorosTotal:     4,
		PomodorosCompleted: 3,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := repos.tasks.Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	existingStart := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	existingEnd := existingStart.Add(25 * time.Minute)
	if err := repos.sessions.Insert(ctx, &model.FocusSession{
		ID: "s0", TaskID: "t1", StartTime: existingStart, EndTime: &existingEnd, CreatedAt: now,
	}); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	created, err := BackfillFocusSessions(ctx, repos.tasks, repos.sessions)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if created != 2 {
		t.Fatalf("expected 2 sessions created, got %d", created)
	}

	sessions, err := repos.sessions.ListByTask(ctx, "t1")
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	// newest first
	wantLatest := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	if !sessions[0].StartTime.Equal(wantLatest) {
		t.Fatalf("expected latest backfilled session at %s, got %s", wantLatest, sessions[0].StartTime)
	}

	again, err := BackfillFocusSessions(ctx, repos.tasks, repos.sessions)
	if err != nil || again != 0 {
		t.Fatalf("expected second backfill to be a no-op, got %d %v", again, err)
	}
}

func TestComputeStats(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	end1 := start.Add(25 * time.Minute)
	end2 := start.Add(40*time.Minute + 20*time.Second)
	reason := "phone"

	stats := computeStats(
		[]model.Task{
			{Date: "2024-06-03", Status: model.TaskStatusDone},
			{Date: "2024-06-03", Status: model.TaskStatusTodo},
			{Date: "2024-06-04", Status: model.TaskStatusTodo},
		},
		[]model.FocusSession{
			{StartTime: start, EndTime: &end1},
			{StartTime: start.Add(30 * time.Minute), EndTime: &end2, InterruptionReason: &reason},
			{StartTime: start.Add(time.Hour)},
		},
	)

	if stats.TotalTasks != 3 || stats.CompletedTasks != 1 || stats.CompletionRate != 33 {
		t.Fatalf("unexpected task totals: %+v", stats)
	}
	if stats.DailyStats["2024-06-03"] != (DayStats{Completed: 1, Total: 2}) {
		t.Fatalf("unexpected day stats: %+v", stats.DailyStats["2024-06-03"])
	}
	if stats.TotalFocusMinutes != 35 || stats.TotalFocusHours != 0.6 {
		t.Fatalf("unexpected focus totals: %d %v", stats.TotalFocusMinutes, stats.TotalFocusHours)
	}
	if stats.TotalSessions != 3 || stats.InterruptedSessions != 1 {
		t.Fatalf("unexpected session counts: %+v", stats)
	}

	empty := computeStats(nil, nil)
	if empty.CompletionRate != 0 || len(empty.DailyStats) != 0 {
		t.Fatalf("expected zero stats, got %+v", empty)
	}
}

func TestDaysOfWeekAcceptsBothForms(t *testing.T) {
	var body struct {
		Days DaysOfWeek `json:"daysOfWeek"`
	}

	if err := json.Unmarshal([]byte(`{"daysOfWeek":"[1,3,5]"}`), &body); err != nil {
		t.Fatalf("unmarshal string form: %v", err)
	}
	if !body.Days.Set || *body.Days.Value != "[1,3,5]" {
		t.Fatalf("unexpected string form: %+v", body.Days)
	}

	body.Days = DaysOfWeek{}
	if err := json.Unmarshal([]byte(`{"daysOfWeek":[0, 6]}`), &body); err != nil {
		t.Fatalf("unmarshal array form: %v", err)
	}
	if *body.Days.Value != "[0, 6]" {
		t.Fatalf("unexpected array form: %q", *body.Days.Value)
	}

	body.Days = DaysOfWeek{}
	if err := json.Unmarshal([]byte(`{"daysOfWeek":null}`), &body); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !body.Days.Set || body.Days.Value != nil {
		t.Fatalf("expected explicit null, got %+v", body.Days)
	}

	body.Days = DaysOfWeek{}
	if err := json.Unmarshal([]byte(`{}`), &body); err != nil {
		t.Fatalf("unmarshal absent: %v", err)
	}
	if body.Days.Set {
		t.Fatal("absent field must stay unset")
	}
}

func TestCreateFromRuleReturnsExistingInstance(t *testing.T) {
	repos := setupRepos(t)
	createUser(t, repos, "u1")
	ctx := context.Background()
	now := time.Now().UTC()

	rule := &model.RecurringTask{
		ID:                "rule-1",
		UserID:            "u1",
		Title:             "Standup",
		RecurrencePattern: model.PatternDaily,
		Priority:          1,
		PomodorosTotal:    1,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := repos.rules.Create(ctx, rule); err != nil {
		t.Fatalf("create rule: %v", err)
	}

	instance := func(id string) *model.Task {
		return &model.Task{
			ID:              id,
			UserID:          "u1",
			Title:           "Standup",
			Date:            "2024-06-03",
			Status:          model.TaskStatusTodo,
			Priority:        1,
			PomodorosTotal:  1,
			RecurringTaskID: &rule.ID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}

	// Another expansion already inserted the instance.
	if err := repos.tasks.Create(ctx, instance("winner")); err != nil {
		t.Fatalf("insert existing instance: %v", err)
	}

	store := &expansionStore{tasks: repos.tasks, rules: repos.rules}
	got, err := store.CreateFromRule(ctx, instance("loser"))
	if err != nil {
		t.Fatalf("create from rule: %v", err)
	}
	if got.ID != "winner" {
		t.Fatalf("expected the existing instance, got %s", got.ID)
	}

	count, err := repos.tasks.CountByDate(ctx, "u1", "2024-06-03")
	if err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single instance, got %d", count)
	}

	fresh := instance("fresh")
	fresh.Date = "2024-06-04"
	got, err = store.CreateFromRule(ctx, fresh)
	if err != nil {
		t.Fatalf("create from rule on a new day: %v", err)
	}
	if got.ID != "fresh" {
		t.Fatalf("expected the inserted instance, got %s", got.ID)
	}
}
