package recurrence

import (
	"context"
	"testing"
	"time"

	"beproductive/backend/internal/model"
)

type memoryStore struct {
	tasks []model.Task
	rules []model.RecurringTask
}

func (s *memoryStore) ListTasks(_ context.Context, ownerID, date string) ([]model.Task, error) {
	out := make([]model.Task, 0)
	for _, task := range s.tasks {
		if task.UserID == ownerID && task.Date == date {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *memoryStore) ListActiveRules(_ context.Context, ownerID string) ([]model.RecurringTask, error) {
	out := make([]model.RecurringTask, 0)
	for _, rule := range s.rules {
		if rule.UserID == ownerID && rule.IsActive {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (s *memoryStore) CreateFromRule(_ context.Context, task *model.Task) (*model.Task, error) {
	for _, existing := range s.tasks {
		if existing.RecurringTaskID != nil && existing.UserID == task.UserID &&
			existing.Date == task.Date && existing.Title == task.Title {
			found := existing
			return &found, nil
		}
	}
	s.tasks = append(s.tasks, *task)
	return task, nil
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
}

func TestExpandIsIdempotent(t *testing.T) {
	store := &memoryStore{
		rules: []model.RecurringTask{
			{ID: "r1", UserID: "u1", Title: "Standup", RecurrencePattern: model.PatternDaily, PomodorosTotal: 1, IsActive: true},
			{ID: "r2", UserID: "u1", Title: "Review", RecurrencePattern: model.PatternWeekdays, PomodorosTotal: 2, IsActive: true},
		},
	}
	expander := NewExpander(store).WithClock(fixedClock)

	first, err := expander.Expand(context.Background(), "u1", "2024-06-03")
	if err != nil {
		t.Fatalf("first expand: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(first))
	}

	second, err := expander.Expand(context.Background(), "u1", "2024-06-03")
	if err != nil {
		t.Fatalf("second expand: %v", err)
	}
	if len(second) != 2 || len(store.tasks) != 2 {
		t.Fatalf("expected no new instances, got %d returned and %d stored", len(second), len(store.tasks))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("instance %d changed identity: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestExpandSkipsTitleAlreadyPresent(t *testing.T) {
	store := &memoryStore{
		tasks: []model.Task{
			{ID: "t1", UserID: "u1", Title: "Standup", Date: "2024-06-03", Status: model.TaskStatusTodo, PomodorosTotal: 1},
		},
		rules: []model.RecurringTask{
			{ID: "r1", UserID: "u1", Title: "Standup", RecurrencePattern: model.PatternDaily, PomodorosTotal: 1, IsActive: true},
		},
	}

	tasks, err := NewExpander(store).Expand(context.Background(), "u1", "2024-06-03")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Fatalf("expected only the existing Standup, got %+v", tasks)
	}
}

func TestExpandCopiesRuleAndAppendsOrder(t *testing.T) {
	description := "read inbox"
	goalID := "g1"
	store := &memoryStore{
		tasks: []model.Task{
			{ID: "t1", UserID: "u1", Title: "Ad hoc", Date: "2024-06-05", Order: 0},
		},
		rules: []model.RecurringTask{
			{ID: "r1", UserID: "u1", Title: "Inbox zero", Description: &description, RecurrencePattern: model.PatternCustom,
				DaysOfWeek: strPtr("[3]"), StartTime: strPtr("09:00"), Priority: 2, PomodorosTotal: 3, GoalID: &goalID, IsActive: true},
			{ID: "r2", UserID: "u1", Title: "Broken", RecurrencePattern: model.PatternCustom, DaysOfWeek: strPtr("not-json"), IsActive: true},
			{ID: "r3", UserID: "u1", Title: "Paused", RecurrencePattern: model.PatternDaily, IsActive: false},
			{ID: "r4", UserID: "u2", Title: "Not mine", RecurrencePattern: model.PatternDaily, IsActive: true},
		},
	}

	tasks, err := NewExpander(store).WithClock(fixedClock).Expand(context.Background(), "u1", "2024-06-05")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected existing task plus one instance, got %d", len(tasks))
	}
	created := tasks[1]
	if created.Title != "Inbox zero" || created.Order != 1 || created.Status != model.TaskStatusTodo {
		t.Fatalf("unexpected instance: %+v", created)
	}
	if created.RecurringTaskID == nil || *created.RecurringTaskID != "r1" {
		t.Fatalf("expected back reference to r1, got %v", created.RecurringTaskID)
	}
	if created.PomodorosTotal != 3 || created.PomodorosCompleted != 0 || created.Priority != 2 {
		t.Fatalf("counters not copied: %+v", created)
	}
	if created.GoalID == nil || *created.GoalID != "g1" || created.StartTime == nil || *created.StartTime != "09:00" {
		t.Fatalf("optional fields not copied: %+v", created)
	}
	if !created.CreatedAt.Equal(fixedClock()) {
		t.Fatalf("expected clock timestamp, got %v", created.CreatedAt)
	}
}

func TestExpandDedupesRulesSharingATitle(t *testing.T) {
	store := &memoryStore{
		rules: []model.RecurringTask{
			{ID: "r1", UserID: "u1", Title: "Walk", RecurrencePattern: model.PatternDaily, PomodorosTotal: 1, IsActive: true},
			{ID: "r2", UserID: "u1", Title: "Walk", RecurrencePattern: model.PatternWeekly, PomodorosTotal: 1, IsActive: true},
		},
	}

	tasks, err := NewExpander(store).Expand(context.Background(), "u1", "2024-06-03")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(tasks) != 1 || *tasks[0].RecurringTaskID != "r1" {
		t.Fatalf("expected a single Walk from r1, got %+v", tasks)
	}
}

func TestExpandRejectsInvalidDate(t *testing.T) {
	if _, err := NewExpander(&memoryStore{}).Expand(context.Background(), "u1", "June 3"); err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}
