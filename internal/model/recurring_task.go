package model

import "time"

const (
	PatternDaily    = "DAILY"
	PatternWeekdays = "WEEKDAYS"
	PatternWeekly   = "WEEKLY"
	PatternCustom   = "CUSTOM"
)

// RecurringTask is the stored form of a recurrence rule. DaysOfWeek keeps the
// string-encoded JSON array used on the wire; recurrence.ParseSchedule turns
// the pair (RecurrencePattern, DaysOfWeek) into a typed schedule.
type RecurringTask struct {
	ID                string       `json:"id"`
	UserID            string       `json:"userId"`
	Title             string       `json:"title"`
	Description       *string      `json:"description"`
	RecurrencePattern string       `json:"recurrencePattern"`
	DaysOfWeek        *string      `json:"daysOfWeek"`
	StartTime         *string      `json:"startTime"`
	EndTime           *string      `json:"endTime"`
	Priority          int          `json:"priority"`
	PomodorosTotal    int          `json:"pomodorosTotal"`
	GoalID            *string      `json:"goalId"`
	IsActive          bool         `json:"isActive"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
	Goal              *GoalSummary `json:"goal"`
}
