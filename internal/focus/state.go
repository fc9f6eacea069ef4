// Package focus is the client-side pomodoro timer: a three mode cycle whose
// countdown is derived from an absolute deadline so a suspended process
// catches up on its next tick.
package focus

import (
	"encoding/json"
	"fmt"
	"time"
)

type Mode string

const (
	ModePomodoro   Mode = "POMODORO"
	ModeShortBreak Mode = "SHORT_BREAK"
	ModeLongBreak  Mode = "LONG_BREAK"
)

// LongBreakEvery is the number of work intervals per long break.
const LongBreakEvery = 4

func (m Mode) Valid() bool {
	switch m {
	case ModePomodoro, ModeShortBreak, ModeLongBreak:
		return true
	default:
		return false
	}
}

// Duration is the canonical length of an interval in this mode.
func (m Mode) Duration() time.Duration {
	switch m {
	case ModeShortBreak:
		return 5 * time.Minute
	case ModeLongBreak:
		return 15 * time.Minute
	default:
		return 25 * time.Minute
	}
}

func (m Mode) Seconds() int {
	return int(m.Duration() / time.Second)
}

func (m Mode) Label() string {
	if m == ModePomodoro {
		return "Focus"
	}
	return "Break"
}

// Task is the slice of a task instance the timer needs.
type Task struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	PomodorosTotal     int    `json:"pomodorosTotal"`
	PomodorosCompleted int    `json:"pomodorosCompleted"`
}

// State is the complete timer state. EndTime is set only while active;
// StartedAt is the first start of the current interval.
type State struct {
	Mode              Mode       `json:"mode"`
	IsActive          bool       `json:"isActive"`
	TimeLeft          int        `json:"timeLeft"`
	EndTime           *time.Time `json:"endTime,omitempty"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	ActiveTask        *Task      `json:"activeTask,omitempty"`
	SessionsCompleted int        `json:"sessionsCompleted"`
}

func InitialState() State {
	return State{
		Mode:     ModePomodoro,
		TimeLeft: ModePomodoro.Seconds(),
	}
}

// Clone returns a copy sharing no pointers with s.
func (s State) Clone() State {
	out := s
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	if s.StartedAt != nil {
		started := *s.StartedAt
		out.StartedAt = &started
	}
	if s.ActiveTask != nil {
		task := *s.ActiveTask
		out.ActiveTask = &task
	}
	return out
}

func (s State) validate() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("unknown timer mode %q", s.Mode)
	}
	if s.TimeLeft < 0 || s.TimeLeft > s.Mode.Seconds() {
		return fmt.Errorf("timeLeft %d out of range for %s", s.TimeLeft, s.Mode)
	}
	if s.SessionsCompleted < 0 {
		return fmt.Errorf("negative sessionsCompleted %d", s.SessionsCompleted)
	}
	return nil
}

func (s State) normalized() State {
	if s.IsActive && s.EndTime == nil {
		s.IsActive = false
	}
	if !s.IsActive {
		s.EndTime = nil
	}
	return s
}

// Clock formats TimeLeft as MM:SS.
func (s State) Clock() string {
	return fmt.Sprintf("%02d:%02d", s.TimeLeft/60, s.TimeLeft%60)
}

// Title is the one-line header shown while the timer runs, e.g. "24:59 Focus".
func (s State) Title() string {
	return s.Clock() + " " + s.Mode.Label()
}

func EncodeState(s State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode timer state: %w", err)
	}
	return data, nil
}

// DecodeState parses and validates an encoded state. An active state
// without a deadline comes back paused.
func DecodeState(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decode timer state: %w", err)
	}
	if err := s.validate(); err != nil {
		return State{}, err
	}
	return s.normalized(), nil
}
