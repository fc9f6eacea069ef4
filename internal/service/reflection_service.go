package service

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	apperrors "beproductive/backend/internal/errors"
	"beproductive/backend/internal/model"
	"beproductive/backend/internal/render"
	"beproductive/backend/internal/repository"
)

const reflectionHistoryLimit = 10

type ReflectionService struct {
	reflections *repository.ReflectionRepository
	tasks       *repository.TaskRepository
	sessions    *repository.FocusSessionRepository
}

func NewReflectionService(
	reflections *repository.ReflectionRepository,
	tasks *repository.TaskRepository,
	sessions *repository.FocusSessionRepository,
) *ReflectionService {
	return &ReflectionService{reflections: reflections, tasks: tasks, sessions: sessions}
}

// ReflectionView adds the rendered HTML of each non-empty answer.
type ReflectionView struct {
	model.Reflection
	HTML map[string]string `json:"html"`
}

type SaveReflectionInput struct {
	WeekStartDate   string
	WentWell        *string
	ToImprove       *string
	Accomplishments *string
	Challenges      *string
}

type DayStats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type WeeklyStats struct {
	DailyStats          map[string]DayStats `json:"dailyStats"`
	TotalTasks          int                 `json:"totalTasks"`
	CompletedTasks      int                 `json:"completedTasks"`
	CompletionRate      int                 `json:"completionRate"`
	TotalFocusMinutes   int                 `json:"totalFocusMinutes"`
	TotalFocusHours     float64             `json:"totalFocusHours"`
	InterruptedSessions int                 `json:"interruptedSessions"`
	TotalSessions       int                 `json:"totalSessions"`
}

// GetByWeek returns nil without error when the week has no reflection.
func (s *ReflectionService) GetByWeek(ctx context.Context, userID, weekStartDate string) (*ReflectionView, *apperrors.APIError) {
	if apiErr := validateDate(weekStartDate); apiErr != nil {
		return nil, apiErr
	}
	reflection, err := s.reflections.GetByWeek(ctx, userID, weekStartDate)
	if err == repository.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		log.Printf("get reflection %s: %v", weekStartDate, err)
		return nil, apperrors.Internal("failed to get reflection")
	}
	view := reflectionView(*reflection)
	return &view, nil
}

func (s *ReflectionService) History(ctx context.Context, userID string) ([]ReflectionView, *apperrors.APIError) {
	reflections, err := s.reflections.ListRecent(ctx, userID, reflectionHistoryLimit)
	if err != nil {
		log.Printf("list reflections: %v", err)
		return nil, apperrors.Internal("failed to list reflections")
	}
	views := make([]ReflectionView, 0, len(reflections))
	for _, reflection := range reflections {
		views = append(views, reflectionView(reflection))
	}
	return views, nil
}

// Save creates or replaces the reflection for the week.
func (s *ReflectionService) Save(ctx context.Context, userID string, input SaveReflectionInput) (*ReflectionView, *apperrors.APIError) {
	if apiErr := validateDate(input.WeekStartDate); apiErr != nil {
		return nil, apiErr
	}
	now := time.Now().UTC()
	saved, err := s.reflections.Upsert(ctx, &model.Reflection{
		ID:              uuid.NewString(),
		UserID:          userID,
		WeekStartDate:   input.WeekStartDate,
		WentWell:        normalizeText(input.WentWell),
		ToImprove:       normalizeText(input.ToImprove),
		Accomplishments: normalizeText(input.Accomplishments),
		Challenges:      normalizeText(input.Challenges),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		log.Printf("save reflection %s: %v", input.WeekStartDate, err)
		return nil, apperrors.Internal("failed to save reflection")
	}
	view := reflectionView(*saved)
	return &view, nil
}

// Stats aggregates tasks and focus sessions for tasks dated in
// [startDate, endDate].
func (s *ReflectionService) Stats(ctx context.Context, userID, startDate, endDate string) (*WeeklyStats, *apperrors.APIError) {
	if apiErr := validateDate(startDate); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := validateDate(endDate); apiErr != nil {
		return nil, apiErr
	}
	if endDate < startDate {
		return nil, apperrors.BadRequest("invalid_range", "endDate must not be before startDate")
	}

	tasks, err := s.tasks.ListInRange(ctx, userID, startDate, endDate)
	if err != nil {
		log.Printf("stats: list tasks: %v", err)
		return nil, apperrors.Internal("failed to compute stats")
	}
	sessions, err := s.sessions.ListByTaskDateRange(ctx, userID, startDate, endDate)
	if err != nil {
		log.Printf("stats: list sessions: %v", err)
		return nil, apperrors.Internal("failed to compute stats")
	}
	return computeStats(tasks, sessions), nil
}

func computeStats(tasks []model.Task, sessions []model.FocusSession) *WeeklyStats {
	stats := &WeeklyStats{DailyStats: make(map[string]DayStats)}
	for _, task := range tasks {
		day := stats.DailyStats[task.Date]
		day.Total++
		stats.TotalTasks++
		if task.Status == model.TaskStatusDone {
			day.Completed++
			stats.CompletedTasks++
		}
		stats.DailyStats[task.Date] = day
	}
	stats.CompletionRate = percent(stats.CompletedTasks, stats.TotalTasks)

	var focusMinutes float64
	for _, session := range sessions {
		if session.EndTime != nil {
			focusMinutes += session.EndTime.Sub(session.StartTime).Minutes()
		}
		if session.InterruptionReason != nil {
			stats.InterruptedSessions++
		}
	}
	stats.TotalSessions = len(sessions)
	stats.TotalFocusMinutes = int(math.Round(focusMinutes))
	stats.TotalFocusHours = math.Round(focusMinutes/60*10) / 10
	return stats
}

func reflectionView(reflection model.Reflection) ReflectionView {
	return ReflectionView{
		Reflection: reflection,
		HTML: render.Fields(map[string]*string{
			"wentWell":        reflection.WentWell,
			"toImprove":       reflection.ToImprove,
			"accomplishments": reflection.Accomplishments,
			"challenges":      reflection.Challenges,
		}),
	}
}
