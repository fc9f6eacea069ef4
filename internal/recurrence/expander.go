package recurrence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"beproductive/backend/internal/model"
)

// Store is the task storage the expander reads and appends to.
type Store interface {
	ListTasks(ctx context.Context, ownerID, date string) ([]model.Task, error)
	ListActiveRules(ctx context.Context, ownerID string) ([]model.RecurringTask, error)
	// CreateFromRule inserts task unless a rule-spawned task with the same
	// (owner, date, title) exists, and returns whichever row is stored.
	CreateFromRule(ctx context.Context, task *model.Task) (*model.Task, error)
}

type Expander struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewExpander(store Store) *Expander {
	return &Expander{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock replaces the timestamp source used for created instances.
func (e *Expander) WithClock(now func() time.Time) *Expander {
	e.now = now
	return e
}

// Expand returns every task visible to ownerID on date, materialising the
// instances of matching active rules that are not there yet. Existing tasks
// come first in stored order, followed by new ones in rule order.
func (e *Expander) Expand(ctx context.Context, ownerID, date string) ([]model.Task, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	existing, err := e.store.ListTasks(ctx, ownerID, date)
	if err != nil {
		return nil, fmt.Errorf("list tasks for %s: %w", date, err)
	}
	rules, err := e.store.ListActiveRules(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}

	titles := make(map[string]struct{}, len(existing))
	for _, task := range existing {
		titles[task.Title] = struct{}{}
	}

	result := existing
	for _, rule := range rules {
		if !ShouldAppear(rule, day) {
			continue
		}
		if _, seen := titles[rule.Title]; seen {
			continue
		}

		stored, err := e.store.CreateFromRule(ctx, e.instance(rule, ownerID, date, len(result)))
		if err != nil {
			return nil, fmt.Errorf("materialise rule %s: %w", rule.ID, err)
		}
		titles[rule.Title] = struct{}{}
		result = append(result, *stored)
	}
	return result, nil
}

func (e *Expander) instance(rule model.RecurringTask, ownerID, date string, order int) *model.Task {
	now := e.now().UTC()
	ruleID := rule.ID
	pomodoros := rule.PomodorosTotal
	if pomodoros < 1 {
		pomodoros = 1
	}
	return &model.Task{
		ID:                 e.newID(),
		UserID:             ownerID,
		Title:              rule.Title,
		Description:        rule.Description,
		Date:               date,
		StartTime:          rule.StartTime,
		EndTime:            rule.EndTime,
		Status:             model.TaskStatusTodo,
		Priority:           rule.Priority,
		PomodorosTotal:     pomodoros,
		PomodorosCompleted: 0,
		Order:              order,
		GoalID:             rule.GoalID,
		RecurringTaskID:    &ruleID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
