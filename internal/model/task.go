package model

import "time"

const (
	TaskStatusTodo = "TODO"
	TaskStatusDone = "DONE"
)

// DateLayout is the calendar-day form used for task dates and week starts.
const DateLayout = "2006-01-02"

type Task struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	Title              string    `json:"title"`
	Description        *string   `json:"description"`
	Date               string    `json:"date"`
	StartTime          *string   `json:"startTime"`
	EndTime            *string   `json:"endTime"`
	Status             string    `json:"status"`
	Priority           int       `json:"priority"`
	PomodorosTotal     int       `json:"pomodorosTotal"`
	PomodorosCompleted int       `json:"pomodorosCompleted"`
	Order              int       `json:"order"`
	GoalID             *string   `json:"goalId"`
	RecurringTaskID    *string   `json:"recurringTaskId"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// FocusSession is one closed work interval, or an interrupted one when
// InterruptionReason is set.
type FocusSession struct {
	ID                 string     `json:"id"`
	TaskID             string     `json:"taskId"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            *time.Time `json:"endTime"`
	InterruptionReason *string    `json:"interruptionReason"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func IsValidTaskStatus(status string) bool {
	return status == TaskStatusTodo || status == TaskStatusDone
}
