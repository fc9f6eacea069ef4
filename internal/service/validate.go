package service

import (
	"context"
	"log"
	"regexp"
	"strings"

	apperrors "beproductive/backend/internal/errors"
	"beproductive/backend/internal/recurrence"
	"beproductive/backend/internal/repository"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func normalizeTitle(title string) (string, *apperrors.APIError) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", apperrors.BadRequest("invalid_title", "title is required")
	}
	if len(trimmed) > 200 {
		return "", apperrors.BadRequest("invalid_title", "title must be at most 200 characters")
	}
	return trimmed, nil
}

func validateDate(date string) *apperrors.APIError {
	if _, err := recurrence.ParseDate(date); err != nil {
		return apperrors.BadRequest("invalid_date", "date must use YYYY-MM-DD")
	}
	return nil
}

// normalizeClock checks an optional HH:MM time of day; an empty string
// clears it.
func normalizeClock(value *string, field string) (*string, *apperrors.APIError) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}
	if !clockPattern.MatchString(trimmed) {
		return nil, apperrors.BadRequest("invalid_time", field+" must use HH:MM")
	}
	return &trimmed, nil
}

func normalizeText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validatePomodoros(total int) *apperrors.APIError {
	if total < 1 || total > 100 {
		return apperrors.BadRequest("invalid_pomodoros", "pomodorosTotal must be between 1 and 100")
	}
	return nil
}

func validatePriority(priority int) *apperrors.APIError {
	if priority < 0 || priority > 3 {
		return apperrors.BadRequest("invalid_priority", "priority must be between 0 and 3")
	}
	return nil
}

// ownedGoal resolves an optional goal reference, rejecting ids that do not
// belong to userID.
func ownedGoal(ctx context.Context, goals *repository.GoalRepository, userID string, goalID *string) (*string, *apperrors.APIError) {
	if goalID == nil || strings.TrimSpace(*goalID) == "" {
		return nil, nil
	}
	id := strings.TrimSpace(*goalID)
	if _, err := goals.GetByID(ctx, userID, id); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("goal_not_found", "goal not found")
		}
		log.Printf("resolve goal %s: %v", id, err)
		return nil, apperrors.Internal("failed to load goal")
	}
	return &id, nil
}
