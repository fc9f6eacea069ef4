package model

import "time"

const (
	GoalLevelYear    = "YEAR"
	GoalLevelQuarter = "QUARTER"
	GoalLevelMonth   = "MONTH"
	GoalLevelWeek    = "WEEK"
)

type Goal struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	Level        string    `json:"level"`
	ParentGoalID *string   `json:"parentGoalId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type GoalSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level string `json:"level"`
}

func IsValidGoalLevel(level string) bool {
	switch level {
	case GoalLevelYear, GoalLevelQuarter, GoalLevelMonth, GoalLevelWeek:
		return true
	default:
		return false
	}
}
