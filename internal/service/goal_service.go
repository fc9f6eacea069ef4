package service

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	apperrors "beproductive/backend/internal/errors"
	"beproductive/backend/internal/model"
	"beproductive/backend/internal/repository"
)

type GoalService struct {
	goals *repository.GoalRepository
}

func NewGoalService(goals *repository.GoalRepository) *GoalService {
	return &GoalService{goals: goals}
}

// GoalView is a goal with its hierarchy and task completion.
type GoalView struct {
	model.Goal
	Progress       int                `json:"progress"`
	TotalTasks     int                `json:"totalTasks"`
	CompletedTasks int                `json:"completedTasks"`
	SubGoals       []model.Goal       `json:"subGoals"`
	ParentGoal     *model.GoalSummary `json:"parentGoal"`
}

type CreateGoalInput struct {
	Title        string
	Description  *string
	Level        string
	ParentGoalID *string
}

type UpdateGoalInput struct {
	Title        *string
	Description  OptionalString
	Level        *string
	ParentGoalID OptionalString
}

func (s *GoalService) List(ctx context.Context, userID, level string) ([]GoalView, *apperrors.APIError) {
	if level != "" && !model.IsValidGoalLevel(level) {
		return nil, invalidLevel()
	}

	// Sub-goals and parents may sit on other levels, so the whole set is
	// loaded once and indexed.
	all, err := s.goals.List(ctx, userID, "")
	if err != nil {
		log.Printf("list goals: %v", err)
		return nil, apperrors.Internal("failed to list goals")
	}
	stats, err := s.goals.TaskStats(ctx, userID)
	if err != nil {
		log.Printf("goal task stats: %v", err)
		return nil, apperrors.Internal("failed to list goals")
	}

	byID := make(map[string]model.Goal, len(all))
	children := make(map[string][]model.Goal)
	for _, goal := range all {
		byID[goal.ID] = goal
	}
	// all is newest first; sub-goals read oldest first.
	for i := len(all) - 1; i >= 0; i-- {
		if parent := all[i].ParentGoalID; parent != nil {
			children[*parent] = append(children[*parent], all[i])
		}
	}

	views := make([]GoalView, 0, len(all))
	for _, goal := range all {
		if level != "" && goal.Level != level {
			continue
		}
		views = append(views, buildGoalView(goal, stats[goal.ID], children[goal.ID], byID))
	}
	return views, nil
}

func (s *GoalService) Get(ctx context.Context, userID, id string) (*GoalView, *apperrors.APIError) {
	goal, apiErr := s.load(ctx, userID, id, "goal_not_found", "goal not found")
	if apiErr != nil {
		return nil, apiErr
	}
	return s.view(ctx, userID, goal)
}

func (s *GoalService) Create(ctx context.Context, userID string, input CreateGoalInput) (*GoalView, *apperrors.APIError) {
	title, apiErr := normalizeTitle(input.Title)
	if apiErr != nil {
		return nil, apiErr
	}
	if !model.IsValidGoalLevel(input.Level) {
		return nil, invalidLevel()
	}

	var parentID *string
	if input.ParentGoalID != nil && *input.ParentGoalID != "" {
		parent, apiErr := s.load(ctx, userID, *input.ParentGoalID, "parent_goal_not_found", "parent goal not found")
		if apiErr != nil {
			return nil, apiErr
		}
		parentID = &parent.ID
	}

	now := time.Now().UTC()
	goal := model.Goal{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        title,
		Description:  normalizeText(input.Description),
		Level:        input.Level,
		ParentGoalID: parentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.goals.Create(ctx, &goal); err != nil {
		log.Printf("create goal: %v", err)
		return nil, apperrors.Internal("failed to create goal")
	}
	return s.view(ctx, userID, &goal)
}

func (s *GoalService) Update(ctx context.Context, userID, id string, input UpdateGoalInput) (*GoalView, *apperrors.APIError) {
	goal, apiErr := s.load(ctx, userID, id, "goal_not_found", "goal not found")
	if apiErr != nil {
		return nil, apiErr
	}

	if input.Title != nil {
		title, apiErr := normalizeTitle(*input.Title)
		if apiErr != nil {
			return nil, apiErr
		}
		goal.Title = title
	}
	if input.Description.Set {
		goal.Description = normalizeText(input.Description.Value)
	}
	if input.Level != nil {
		if !model.IsValidGoalLevel(*input.Level) {
			return nil, invalidLevel()
		}
		goal.Level = *input.Level
	}
	if input.ParentGoalID.Set {
		if input.ParentGoalID.Value == nil || *input.ParentGoalID.Value == "" {
			goal.ParentGoalID = nil
		} else {
			parentID := *input.ParentGoalID.Value
			if parentID == goal.ID {
				return nil, apperrors.BadRequest("invalid_parent", "goal cannot be its own parent")
			}
			parent, apiErr := s.load(ctx, userID, parentID, "parent_goal_not_found", "parent goal not found")
			if apiErr != nil {
				return nil, apiErr
			}
			goal.ParentGoalID = &parent.ID
		}
	}

	goal.UpdatedAt = time.Now().UTC()
	if err := s.goals.Update(ctx, goal); err != nil {
		log.Printf("update goal %s: %v", id, err)
		return nil, apperrors.Internal("failed to update goal")
	}
	return s.view(ctx, userID, goal)
}

func (s *GoalService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	count, err := s.goals.Delete(ctx, userID, id)
	if err != nil {
		log.Printf("delete goal %s: %v", id, err)
		return apperrors.Internal("failed to delete goal")
	}
	if count == 0 {
		return apperrors.NotFound("goal_not_found", "goal not found")
	}
	return nil
}

func (s *GoalService) load(ctx context.Context, userID, id, code, message string) (*model.Goal, *apperrors.APIError) {
	goal, err := s.goals.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound(code, message)
	}
	if err != nil {
		log.Printf("get goal %s: %v", id, err)
		return nil, apperrors.Internal("failed to get goal")
	}
	return goal, nil
}

func (s *GoalService) view(ctx context.Context, userID string, goal *model.Goal) (*GoalView, *apperrors.APIError) {
	stats, err := s.goals.TaskStats(ctx, userID)
	if err != nil {
		log.Printf("goal task stats: %v", err)
		return nil, apperrors.Internal("failed to load goal progress")
	}
	subGoals, err := s.goals.ListChildren(ctx, userID, goal.ID)
	if err != nil {
		log.Printf("list sub goals of %s: %v", goal.ID, err)
		return nil, apperrors.Internal("failed to load sub goals")
	}
	byID := map[string]model.Goal{}
	if goal.ParentGoalID != nil {
		parent, err := s.goals.GetByID(ctx, userID, *goal.ParentGoalID)
		if err != nil && err != repository.ErrNotFound {
			log.Printf("get parent goal %s: %v", *goal.ParentGoalID, err)
			return nil, apperrors.Internal("failed to load parent goal")
		}
		if parent != nil {
			byID[parent.ID] = *parent
		}
	}
	view := buildGoalView(*goal, stats[goal.ID], subGoals, byID)
	return &view, nil
}

func buildGoalView(goal model.Goal, stats repository.GoalTaskStats, subGoals []model.Goal, byID map[string]model.Goal) GoalView {
	if subGoals == nil {
		subGoals = []model.Goal{}
	}
	view := GoalView{
		Goal:           goal,
		Progress:       percent(stats.Done, stats.Total),
		TotalTasks:     stats.Total,
		CompletedTasks: stats.Done,
		SubGoals:       subGoals,
	}
	if goal.ParentGoalID != nil {
		if parent, ok := byID[*goal.ParentGoalID]; ok {
			view.ParentGoal = &model.GoalSummary{ID: parent.ID, Title: parent.Title, Level: parent.Level}
		}
	}
	return view
}

// percent is done/total as a rounded whole percentage, 0 when total is 0.
func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

func invalidLevel() *apperrors.APIError {
	return apperrors.BadRequest("invalid_level", "level must be YEAR, QUARTER, MONTH or WEEK")
}
