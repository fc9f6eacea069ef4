package focus

import (
	"context"
	"errors"
	"log"
	"math"
	"time"
)

// ErrSkipWork is returned by Skip during a work interval.
var ErrSkipWork = errors.New("work intervals cannot be skipped")

// Report describes one completed work interval.
type Report struct {
	TaskID    string
	StartTime time.Time
	EndTime   time.Time
}

// Reporter records completed work intervals with the task store.
type Reporter interface {
	ReportPomodoro(ctx context.Context, report Report) error
}

// Event is what a call to Tick or Skip did.
type Event int

const (
	EventNone Event = iota
	EventWorkCompleted
	EventBreakCompleted
)

// Timer owns a State and applies every transition to it. It is not safe
// for concurrent use; the caller drives it from a single goroutine.
type Timer struct {
	state    State
	now      func() time.Time
	reporter Reporter
	logger   *log.Logger
}

type Option func(*Timer)

func WithClock(now func() time.Time) Option {
	return func(t *Timer) {
		t.now = now
	}
}

func WithReporter(reporter Reporter) Option {
	return func(t *Timer) {
		t.reporter = reporter
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(t *Timer) {
		t.logger = logger
	}
}

func NewTimer(opts ...Option) *Timer {
	t := &Timer{
		state:  InitialState(),
		now:    time.Now,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Snapshot returns a copy of the current state.
func (t *Timer) Snapshot() State {
	return t.state.Clone()
}

// Restore replaces the state, e.g. with one persisted by a previous run.
// A restored active timer keeps its deadline, so time spent while the
// process was gone is counted on the next Tick.
func (t *Timer) Restore(s State) error {
	if err := s.validate(); err != nil {
		return err
	}
	t.state = s.Clone().normalized()
	return nil
}

// SetActiveTask binds task (nil unbinds) and resets to an idle work
// interval. The completed session count is kept.
func (t *Timer) SetActiveTask(task *Task) {
	if task != nil {
		bound := *task
		t.state.ActiveTask = &bound
	} else {
		t.state.ActiveTask = nil
	}
	t.load(ModePomodoro)
}

func (t *Timer) Start() {
	if t.state.IsActive {
		return
	}
	now := t.now()
	end := now.Add(time.Duration(t.state.TimeLeft) * time.Second)
	t.state.IsActive = true
	t.state.EndTime = &end
	if t.state.StartedAt == nil {
		t.state.StartedAt = &now
	}
}

// Pause stops the countdown with TimeLeft taken from the deadline at the
// moment of pausing. An interval whose deadline has already passed
// completes instead.
func (t *Timer) Pause(ctx context.Context) Event {
	if !t.state.IsActive || t.state.EndTime == nil {
		return EventNone
	}
	now := t.now()
	t.state.TimeLeft = remaining(*t.state.EndTime, now)
	if t.state.TimeLeft == 0 {
		return t.complete(ctx, now)
	}
	t.state.IsActive = false
	t.state.EndTime = nil
	return EventNone
}

// Reset restarts the current mode from its full duration.
func (t *Timer) Reset() {
	t.load(t.state.Mode)
}

// Skip ends a break immediately. It refuses to end a work interval.
func (t *Timer) Skip(ctx context.Context) (Event, error) {
	if t.state.Mode == ModePomodoro {
		return EventNone, ErrSkipWork
	}
	t.state.TimeLeft = 0
	return t.complete(ctx, t.now()), nil
}

// Tick recomputes TimeLeft from the deadline and runs the completion
// transition once it reaches zero. It does nothing while inactive.
func (t *Timer) Tick(ctx context.Context) Event {
	if !t.state.IsActive || t.state.EndTime == nil {
		return EventNone
	}
	now := t.now()
	t.state.TimeLeft = remaining(*t.state.EndTime, now)
	if t.state.TimeLeft > 0 {
		return EventNone
	}
	return t.complete(ctx, now)
}

func remaining(end, now time.Time) int {
	left := end.Sub(now).Seconds()
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left))
}

func (t *Timer) complete(ctx context.Context, now time.Time) Event {
	if t.state.Mode != ModePomodoro {
		t.load(ModePomodoro)
		return EventBreakCompleted
	}

	t.state.SessionsCompleted++
	if task := t.state.ActiveTask; task != nil {
		t.report(ctx, task.ID, now)
		if task.PomodorosCompleted < task.PomodorosTotal {
			task.PomodorosCompleted++
		}
	}

	next := ModeShortBreak
	if t.state.SessionsCompleted%LongBreakEvery == 0 {
		next = ModeLongBreak
	}
	t.load(next)
	return EventWorkCompleted
}

func (t *Timer) report(ctx context.Context, taskID string, now time.Time) {
	if t.reporter == nil {
		return
	}
	started := now.Add(-ModePomodoro.Duration())
	if t.state.StartedAt != nil {
		started = *t.state.StartedAt
	}
	err := t.reporter.ReportPomodoro(ctx, Report{TaskID: taskID, StartTime: started, EndTime: now})
	if err != nil {
		t.logger.Printf("report pomodoro for task %s: %v", taskID, err)
	}
}

func (t *Timer) load(mode Mode) {
	t.state.Mode = mode
	t.state.TimeLeft = mode.Seconds()
	t.state.IsActive = false
	t.state.EndTime = nil
	t.state.StartedAt = nil
}
