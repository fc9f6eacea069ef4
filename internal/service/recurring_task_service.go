package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	apperrors "beproductive/backend/internal/errors"
	"beproductive/backend/internal/model"
	"beproductive/backend/internal/recurrence"
	"beproductive/backend/internal/repository"
)

type RecurringTaskService struct {
	rules *repository.RecurringTaskRepository
	goals *repository.GoalRepository
}

func NewRecurringTaskService(rules *repository.RecurringTaskRepository, goals *repository.GoalRepository) *RecurringTaskService {
	return &RecurringTaskService{rules: rules, goals: goals}
}

type CreateRecurringTaskInput struct {
	Title             string
	Description       *string
	RecurrencePattern string
	DaysOfWeek        *string
	StartTime         *string
	EndTime           *string
	Priority          *int
	PomodorosTotal    *int
	GoalID            *string
}

type UpdateRecurringTaskInput struct {
	Title             *string
	Description       OptionalString
	RecurrencePattern *string
	DaysOfWeek        OptionalString
	StartTime         OptionalString
	EndTime           OptionalString
	Priority          *int
	PomodorosTotal    *int
	GoalID            OptionalString
	IsActive          *bool
}

func (s *RecurringTaskService) List(ctx context.Context, userID string) ([]model.RecurringTask, *apperrors.APIError) {
	rules, err := s.rules.List(ctx, userID)
	if err != nil {
		log.Printf("list recurring tasks: %v", err)
		return nil, apperrors.Internal("failed to list recurring tasks")
	}
	return rules, nil
}

func (s *RecurringTaskService) Get(ctx context.Context, userID, id string) (*model.RecurringTask, *apperrors.APIError) {
	rule, err := s.rules.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("recurring_task_not_found", "recurring task not found")
	}
	if err != nil {
		log.Printf("get recurring task %s: %v", id, err)
		return nil, apperrors.Internal("failed to get recurring task")
	}
	return rule, nil
}

func (s *RecurringTaskService) Create(ctx context.Context, userID string, input CreateRecurringTaskInput) (*model.RecurringTask, *apperrors.APIError) {
	title, apiErr := normalizeTitle(input.Title)
	if apiErr != nil {
		return nil, apiErr
	}
	daysOfWeek, apiErr := normalizeSchedule(input.RecurrencePattern, input.DaysOfWeek)
	if apiErr != nil {
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

	now := time.Now().UTC()
	rule := model.RecurringTask{
		ID:                uuid.NewString(),
		UserID:            userID,
		Title:             title,
		Description:       normalizeText(input.Description),
		RecurrencePattern: input.RecurrencePattern,
		DaysOfWeek:        daysOfWeek,
		StartTime:         startTime,
		EndTime:           endTime,
		Priority:          priority,
		PomodorosTotal:    pomodoros,
		GoalID:            goalID,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.rules.Create(ctx, &rule); err != nil {
		log.Printf("create recurring task: %v", err)
		return nil, apperrors.Internal("failed to create recurring task")
	}
	return s.Get(ctx, userID, rule.ID)
}

func (s *RecurringTaskService) Update(ctx context.Context, userID, id string, input UpdateRecurringTaskInput) (*model.RecurringTask, *apperrors.APIError) {
	rule, apiErr := s.Get(ctx, userID, id)
	if apiErr != nil {
		return nil, apiErr
	}

	if input.Title != nil {
		title, apiErr := normalizeTitle(*input.Title)
		if apiErr != nil {
			return nil, apiErr
		}
		rule.Title = title
	}
	if input.Description.Set {
		rule.Description = normalizeText(input.Description.Value)
	}

	// The pattern and its days are validated together, whichever changed.
	pattern := rule.RecurrencePattern
	if input.RecurrencePattern != nil {
		pattern = *input.RecurrencePattern
	}
	days := rule.DaysOfWeek
	if input.DaysOfWeek.Set {
		days = input.DaysOfWeek.Value
	}
	if input.RecurrencePattern != nil || input.DaysOfWeek.Set {
		normalized, apiErr := normalizeSchedule(pattern, days)
		if apiErr != nil {
			return nil, apiErr
		}
		rule.RecurrencePattern = pattern
		rule.DaysOfWeek = normalized
	}

	if input.StartTime.Set {
		startTime, apiErr := normalizeClock(input.StartTime.Value, "startTime")
		if apiErr != nil {
			return nil, apiErr
		}
		rule.StartTime = startTime
	}
	if input.EndTime.Set {
		endTime, apiErr := normalizeClock(input.EndTime.Value, "endTime")
		if apiErr != nil {
			return nil, apiErr
		}
		rule.EndTime = endTime
	}
	if input.Priority != nil {
		if apiErr := validatePriority(*input.Priority); apiErr != nil {
			return nil, apiErr
		}
		rule.Priority = *input.Priority
	}
	if input.PomodorosTotal != nil {
		if apiErr := validatePomodoros(*input.PomodorosTotal); apiErr != nil {
			return nil, apiErr
		}
		rule.PomodorosTotal = *input.PomodorosTotal
	}
	if input.GoalID.Set {
		goalID, apiErr := ownedGoal(ctx, s.goals, userID, input.GoalID.Value)
		if apiErr != nil {
			return nil, apiErr
		}
		rule.GoalID = goalID
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}

	rule.UpdatedAt = time.Now().UTC()
	if err := s.rules.Update(ctx, rule); err != nil {
		log.Printf("update recurring task %s: %v", id, err)
		return nil, apperrors.Internal("failed to update recurring task")
	}
	return s.Get(ctx, userID, id)
}

// Delete removes the rule. Instances it already produced stay, with their
// back reference cleared by the schema.
func (s *RecurringTaskService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	count, err := s.rules.Delete(ctx, userID, id)
	if err != nil {
		log.Printf("delete recurring task %s: %v", id, err)
		return apperrors.Internal("failed to delete recurring task")
	}
	if count == 0 {
		return apperrors.NotFound("recurring_task_not_found", "recurring task not found")
	}
	return nil
}

// normalizeSchedule validates pattern and days and returns the days in
// their canonical storage form. Only CUSTOM keeps days.
func normalizeSchedule(pattern string, days *string) (*string, *apperrors.APIError) {
	schedule, err := recurrence.ValidateSchedule(pattern, days)
	if errors.Is(err, recurrence.ErrInvalidPattern) {
		return nil, apperrors.BadRequest("invalid_pattern", err.Error())
	}
	if err != nil {
		return nil, apperrors.BadRequest("invalid_days_of_week", err.Error())
	}
	custom, ok := schedule.(recurrence.Custom)
	if !ok {
		return nil, nil
	}
	encoded := recurrence.EncodeDays(custom.Days)
	return &encoded, nil
}
