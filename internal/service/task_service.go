package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "beproductive/backend/internal/errors"
	"beproductive/backend/internal/focus"
	"beproductive/backend/internal/model"
	"beproductive/backend/internal/recurrence"
	"beproductive/backend/internal/repository"
)

type TaskService struct {
	tasks    *repository.TaskRepository
	sessions *repository.FocusSessionRepository
	goals    *repository.GoalRepository
	expander *recurrence.Expander
}

func NewTaskService(
	tasks *repository.TaskRepository,
	sessions *repository.FocusSessionRepository,
	rules *repository.RecurringTaskRepository,
	goals *repository.GoalRepository,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		sessions: sessions,
		goals:    goals,
		expander: recurrence.NewExpander(&expansionStore{tasks: tasks, rules: rules}),
	}
}

// expansionStore adapts the repositories to recurrence.Store.
type expansionStore struct {
	tasks *repository.TaskRepository
	rules *repository.RecurringTaskRepository
}

func (s *expansionStore) ListTasks(ctx context.Context, ownerID, date string) ([]model.Task, error) {
	return s.tasks.ListByDate(ctx, ownerID, date)
}

func (s *expansionStore) ListActiveRules(ctx context.Context, ownerID string) ([]model.RecurringTask, error) {
	return s.rules.ListActive(ctx, ownerID)
}

func (s *expansionStore) CreateFromRule(ctx context.Context, task *model.Task) (*model.Task, error) {
	inserted, err := s.tasks.CreateFromRule(ctx, task)
	if err != nil {
		return nil, err
	}
	if inserted {
		return task, nil
	}
	// A concurrent expansion won the unique index; return its row.
	return s.tasks.GetRuleInstance(ctx, task.UserID, task.Date, task.Title)
}

type CreateTaskInput struct {
	Title          string
	Description    *string
	Date           string
	StartTime      *string
	EndTime        *string
	Priority       *int
	PomodorosTotal *int
	GoalID         *string
}

type UpdateTaskInput struct {
	Title          *string
	Description    OptionalString
	Date           *string
	StartTime      OptionalString
	EndTime        OptionalString
	Priority       *int
	PomodorosTotal *int
	GoalID         OptionalString
}

type ProgressInput struct {
	StartTime *time.Time
	EndTime   *time.Time
}

type LogSessionInput struct {
	StartTime          time.Time
	EndTime            *time.Time
	InterruptionReason *string
}

// ListByDate is the task list for one day, with recurring rules expanded.
func (s *TaskService) ListByDate(ctx context.Context, userID, date string) ([]model.Task, *apperrors.APIError) {
	tasks, err := s.expander.Expand(ctx, userID, date)
	if errors.Is(err, recurrence.ErrInvalidDate) {
		return nil, apperrors.BadRequest("invalid_date", "date must use YYYY-MM-DD")
	}
	if err != nil {
		log.Printf("expand tasks for %s: %v", date, err)
		return nil, apperrors.Internal("failed to list tasks")
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, input CreateTaskInput) (*model.Task, *apperrors.APIError) {
	title, apiErr := normalizeTitle(input.Title)
	if apiErr != nil {
		return nil, apiErr
	}
	if apiErr := validateDate(input.Date); apiErr != nil {
		return nil, apiErr
	}
	startTime, apiErr := normalizeClock(input.StartTime, "startTime")
	if apiErr != nil {
		return nil, apiErr
	}
	endTime, apiErr := normalizeClock(input.EndTime, "endTime")
	if apiErr != nil {
		return nil, apiErr
	}

	pomodoros := 1
	if input.PomodorosTotal != nil {
		pomodoros = *input.PomodorosTotal
	}
	if apiErr := validatePomodoros(pomodoros); apiErr != nil {
		return nil, apiErr
	}
	priority := 1
	if input.Priority != nil {
		priority = *input.Priority
	}
	if apiErr := validatePriority(priority); apiErr != nil {
		return nil, apiErr
	}

	goalID, apiErr := ownedGoal(ctx, s.goals, userID, input.GoalID)
	if apiErr != nil {
		return nil, apiErr
	}

	count, err := s.tasks.CountByDate(ctx, userID, input.Date)
	if err != nil {
		log.Printf("count tasks: %v", err)
		return nil, apperrors.Internal("failed to create task")
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          title,
		Description:    normalizeText(input.Description),
		Date:           input.Date,
		StartTime:      startTime,
		EndTime:        endTime,
		Status:         model.TaskStatusTodo,
		Priority:       priority,
		PomodorosTotal: pomodoros,
		Order:          count,
		GoalID:         goalID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		log.Printf("create task: %v", err)
		return nil, apperrors.Internal("failed to create task")
	}
	return &task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*model.Task, *apperrors.APIError) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, taskNotFound()
	}
	if err != nil {
		log.Printf("get task %s: %v", id, err)
		return nil, apperrors.Internal("failed to get task")
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id string, input UpdateTaskInput) (*model.Task, *apperrors.APIError) {
	task, apiErr := s.Get(ctx, userID, id)
	if apiErr != nil {
		return nil, apiErr
	}

	if input.Title != nil {
		title, apiErr := normalizeTitle(*input.Title)
		if apiErr != nil {
			return nil, apiErr
		}
		task.Title = title
	}
	if input.Description.Set {
		task.Description = normalizeText(input.Description.Value)
	}
	if input.Date != nil {
		if apiErr := validateDate(*input.Date); apiErr != nil {
			return nil, apiErr
		}
		task.Date = *input.Date
	}
	if input.StartTime.Set {
		startTime, apiErr := normalizeClock(input.StartTime.Value, "startTime")
		if apiErr != nil {
			return nil, apiErr
		}
		task.StartTime = startTime
	}
	if input.EndTime.Set {
		endTime, apiErr := normalizeClock(input.EndTime.Value, "endTime")
		if apiErr != nil {
			return nil, apiErr
		}
		task.EndTime = endTime
	}
	if input.Priority != nil {
		if apiErr := validatePriority(*input.Priority); apiErr != nil {
			return nil, apiErr
		}
		task.Priority = *input.Priority
	}
	if input.PomodorosTotal != nil {
		if apiErr := validatePomodoros(*input.PomodorosTotal); apiErr != nil {
			return nil, apiErr
		}
		if *input.PomodorosTotal < task.PomodorosCompleted {
			return nil, apperrors.BadRequest("invalid_pomodoros", "pomodorosTotal cannot be below pomodorosCompleted")
		}
		task.PomodorosTotal = *input.PomodorosTotal
	}
	if input.GoalID.Set {
		goalID, apiErr := ownedGoal(ctx, s.goals, userID, input.GoalID.Value)
		if apiErr != nil {
			return nil, apiErr
		}
		task.GoalID = goalID
	}

	task.UpdatedAt = time.Now().UTC()
	if err := s.tasks.Update(ctx, task); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("task_exists", "a task from this rule already exists on that date with that title", nil)
		}
		log.Printf("update task %s: %v", id, err)
		return nil, apperrors.Internal("failed to update task")
	}
	return task, nil
}

// UpdateStatus sets TODO or DONE and reports how many rows changed.
func (s *TaskService) UpdateStatus(ctx context.Context, userID, id, status string) (int64, *apperrors.APIError) {
	if !model.IsValidTaskStatus(status) {
		return 0, apperrors.BadRequest("invalid_status", "status must be TODO or DONE")
	}
	count, err := s.tasks.UpdateStatus(ctx, userID, id, status, time.Now().UTC())
	if err != nil {
		log.Printf("update task status %s: %v", id, err)
		return 0, apperrors.Internal("failed to update status")
	}
	if count == 0 {
		return 0, taskNotFound()
	}
	return count, nil
}

// RecordProgress applies one completed work interval: the counter moves by
// one, capped at the total, and a closed focus session is written in the
// same transaction. A report for a task already at its total changes
// nothing.
func (s *TaskService) RecordProgress(ctx context.Context, userID, id string, input ProgressInput) (*model.Task, *apperrors.APIError) {
	now := time.Now().UTC()
	end := now
	if input.EndTime != nil {
		end = input.EndTime.UTC()
	}
	start := end.Add(-focus.ModePomodoro.Duration())
	if input.StartTime != nil {
		start = input.StartTime.UTC()
	}
	if !start.Before(end) {
		return nil, apperrors.BadRequest("invalid_range", "startTime must be before endTime")
	}

	tx, err := s.tasks.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	if _, err := s.tasks.GetByIDTx(ctx, tx, userID, id); err != nil {
		if err == repository.ErrNotFound {
			return nil, taskNotFound()
		}
		log.Printf("progress: get task %s: %v", id, err)
		return nil, apperrors.Internal("failed to get task")
	}

	incremented, err := s.tasks.IncrementProgressTx(ctx, tx, id, now)
	if err != nil {
		log.Printf("progress: increment task %s: %v", id, err)
		return nil, apperrors.Internal("failed to update progress")
	}
	if incremented {
		session := model.FocusSession{
			ID:        uuid.NewString(),
			TaskID:    id,
			StartTime: start,
			EndTime:   &end,
			CreatedAt: now,
		}
		if err := s.sessions.InsertTx(ctx, tx, &session); err != nil {
			log.Printf("progress: insert session for task %s: %v", id, err)
			return nil, apperrors.Internal("failed to record focus session")
		}
	}

	task, err := s.tasks.GetByIDTx(ctx, tx, userID, id)
	if err != nil {
		log.Printf("progress: reload task %s: %v", id, err)
		return nil, apperrors.Internal("failed to get task")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}
	return task, nil
}

// LogSession records an explicitly ended work interval without touching
// the pomodoro counters.
func (s *TaskService) LogSession(ctx context.Context, userID, taskID string, input LogSessionInput) (*model.FocusSession, *apperrors.APIError) {
	if _, apiErr := s.Get(ctx, userID, taskID); apiErr != nil {
		return nil, apiErr
	}
	if input.StartTime.IsZero() {
		return nil, apperrors.BadRequest("invalid_range", "startTime is required")
	}
	start := input.StartTime.UTC()
	var end *time.Time
	if input.EndTime != nil {
		value := input.EndTime.UTC()
		if !start.Before(value) {
			return nil, apperrors.BadRequest("invalid_range", "startTime must be before endTime")
		}
		end = &value
	}

	session := model.FocusSession{
		ID:                 uuid.NewString(),
		TaskID:             taskID,
		StartTime:          start,
		EndTime:            end,
		InterruptionReason: normalizeText(input.InterruptionReason),
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.sessions.Insert(ctx, &session); err != nil {
		log.Printf("log session for task %s: %v", taskID, err)
		return nil, apperrors.Internal("failed to record focus session")
	}
	return &session, nil
}

func (s *TaskService) ListSessions(ctx context.Context, userID, taskID string) ([]model.FocusSession, *apperrors.APIError) {
	if _, apiErr := s.Get(ctx, userID, taskID); apiErr != nil {
		return nil, apiErr
	}
	sessions, err := s.sessions.ListByTask(ctx, taskID)
	if err != nil {
		log.Printf("list sessions for task %s: %v", taskID, err)
		return nil, apperrors.Internal("failed to list focus sessions")
	}
	return sessions, nil
}

// Reorder gives every listed task its index as order. Ids the user does
// not own are ignored.
func (s *TaskService) Reorder(ctx context.Context, userID string, taskIDs []string) *apperrors.APIError {
	seen := make(map[string]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		if strings.TrimSpace(id) == "" {
			return apperrors.BadRequest("invalid_task_ids", "taskIds must not contain empty ids")
		}
		if _, dup := seen[id]; dup {
			return apperrors.BadRequest("invalid_task_ids", "taskIds must not contain duplicates")
		}
		seen[id] = struct{}{}
	}
	if err := s.tasks.Reorder(ctx, userID, taskIDs, time.Now().UTC()); err != nil {
		log.Printf("reorder tasks: %v", err)
		return apperrors.Internal("failed to reorder tasks")
	}
	return nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	count, err := s.tasks.Delete(ctx, userID, id)
	if err != nil {
		log.Printf("delete task %s: %v", id, err)
		return apperrors.Internal("failed to delete task")
	}
	if count == 0 {
		return taskNotFound()
	}
	return nil
}

func taskNotFound() *apperrors.APIError {
	return apperrors.NotFound("task_not_found", "task not found")
}
