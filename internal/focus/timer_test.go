package focus

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type recordingReporter struct {
	reports []Report
	err     error
}

func (r *recordingReporter) ReportPomodoro(_ context.Context, report Report) error {
	r.reports = append(r.reports, report)
	return r.err
}

// runInterval starts the timer and ticks once past its deadline.
func runInterval(t *testing.T, timer *Timer, clock *fakeClock) Event {
	t.Helper()
	timer.Start()
	clock.Advance(time.Duration(timer.Snapshot().TimeLeft) * time.Second)
	return timer.Tick(context.Background())
}

func TestInitialState(t *testing.T) {
	state := NewTimer().Snapshot()
	if state.Mode != ModePomodoro || state.IsActive || state.TimeLeft != 1500 ||
		state.ActiveTask != nil || state.SessionsCompleted != 0 || state.EndTime != nil {
		t.Fatalf("unexpected initial state: %+v", state)
	}
}

func TestFourWorkIntervalsEarnALongBreak(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(WithClock(clock.Now))

	want := []Mode{
		ModeShortBreak, ModePomodoro,
		ModeShortBreak, ModePomodoro,
		ModeShortBreak, ModePomodoro,
		ModeLongBreak,
	}
	for i, mode := range want {
		runInterval(t, timer, clock)
		state := timer.Snapshot()
		if state.Mode != mode {
			t.Fatalf("step %d: expected %s, got %s", i+1, mode, state.Mode)
		}
		if state.IsActive || state.EndTime != nil {
			t.Fatalf("step %d: expected inactive timer after completion", i+1)
		}
		if state.TimeLeft != mode.Seconds() {
			t.Fatalf("step %d: expected full %s duration, got %d", i+1, mode, state.TimeLeft)
		}
		if mode == ModeLongBreak && state.SessionsCompleted != 4 {
			t.Fatalf("expected 4 sessions at long break, got %d", state.SessionsCompleted)
		}
		if mode == ModeShortBreak && state.SessionsCompleted >= 4 {
			t.Fatalf("sessions reached %d before the long break", state.SessionsCompleted)
		}
	}
}

func TestTickFollowsWallClockAfterSuspend(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(WithClock(clock.Now))
	timer.Start()

	clock.Advance(time.Second)
	timer.Tick(context.Background())
	if got := timer.Snapshot().TimeLeft; got != 1499 {
		t.Fatalf("expected 1499 after one second, got %d", got)
	}

	// No ticks for ten minutes and a half.
	clock.Advance(10*time.Minute + 500*time.Millisecond)
	if event := timer.Tick(context.Background()); event != EventNone {
		t.Fatalf("unexpected event %v", event)
	}
	if got := timer.Snapshot().TimeLeft; got != 899 {
		t.Fatalf("expected 899 seconds left (rounded up), got %d", got)
	}

	clock.Advance(time.Hour)
	if event := timer.Tick(context.Background()); event != EventWorkCompleted {
		t.Fatalf("expected work completion after deadline, got %v", event)
	}
}

func TestPauseKeepsRemainingTimeAndStartResumes(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(WithClock(clock.Now))
	timer.Start()
	clock.Advance(100 * time.Second)
	timer.Tick(context.Background())
	timer.Pause(context.Background())

	clock.Advance(time.Hour)
	if event := timer.Tick(context.Background()); event != EventNone {
		t.Fatalf("paused timer must not tick, got %v", event)
	}
	state := timer.Snapshot()
	if state.IsActive || state.EndTime != nil || state.TimeLeft != 1400 {
		t.Fatalf("unexpected paused state: %+v", state)
	}

	timer.Start()
	clock.Advance(400 * time.Second)
	timer.Tick(context.Background())
	if got := timer.Snapshot().TimeLeft; got != 1000 {
		t.Fatalf("expected 1000 after resuming, got %d", got)
	}

	end := *timer.Snapshot().EndTime
	timer.Start()
	if !timer.Snapshot().EndTime.Equal(end) {
		t.Fatal("start while active must not move the deadline")
	}
}

func TestPauseCountsTimeSinceLastTick(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(WithClock(clock.Now))
	timer.Start()

	// Suspended for ten minutes, then paused before any tick.
	clock.Advance(10 * time.Minute)
	if event := timer.Pause(context.Background()); event != EventNone {
		t.Fatalf("unexpected event %v", event)
	}
	if got := timer.Snapshot().TimeLeft; got != 900 {
		t.Fatalf("expected 900 seconds left at pause, got %d", got)
	}

	timer.Start()
	clock.Advance(900 * time.Second)
	if event := timer.Tick(context.Background()); event != EventWorkCompleted {
		t.Fatalf("expected work completion, got %v", event)
	}
	if mode := timer.Snapshot().Mode; mode != ModeShortBreak {
		t.Fatalf("expected short break, got %s", mode)
	}
}

func TestPauseAfterDeadlineCompletes(t *testing.T) {
	clock := newFakeClock()
	reporter := &recordingReporter{}
	timer := NewTimer(WithClock(clock.Now), WithReporter(reporter))
	timer.SetActiveTask(&Task{ID: "t1", Title: "Write", PomodorosTotal: 2})
	timer.Start()

	clock.Advance(30 * time.Minute)
	if event := timer.Pause(context.Background()); event != EventWorkCompleted {
		t.Fatalf("expected work completion, got %v", event)
	}
	state := timer.Snapshot()
	if state.Mode != ModeShortBreak || state.IsActive || state.SessionsCompleted != 1 {
		t.Fatalf("unexpected state after late pause: %+v", state)
	}
	if len(reporter.reports) != 1 {
		t.Fatalf("expected one report, got %d", len(reporter.reports))
	}
}

func TestResetKeepsMode(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(WithClock(clock.Now))
	runInterval(t, timer, clock)

	timer.Start()
	clock.Advance(time.Minute)
	timer.Tick(context.Background())
	timer.Reset()

	state := timer.Snapshot()
	if state.Mode != ModeShortBreak || state.IsActive || state.TimeLeft != 300 || state.EndTime != nil {
		t.Fatalf("unexpected state after reset: %+v", state)
	}
}

func TestSkipOnlyEndsBreaks(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(WithClock(clock.Now))
	timer.Start()
	before := timer.Snapshot()

	if _, err := timer.Skip(context.Background()); !errors.Is(err, ErrSkipWork) {
		t.Fatalf("expected ErrSkipWork, got %v", err)
	}
	after := timer.Snapshot()
	if after.Mode != before.Mode || after.TimeLeft != before.TimeLeft || !after.IsActive || after.SessionsCompleted != 0 {
		t.Fatalf("skip during work changed state: %+v", after)
	}

	clock.Advance(25 * time.Minute)
	timer.Tick(context.Background())
	if timer.Snapshot().Mode != ModeShortBreak {
		t.Fatalf("expected short break, got %s", timer.Snapshot().Mode)
	}

	event, err := timer.Skip(context.Background())
	if err != nil {
		t.Fatalf("skip break: %v", err)
	}
	if event != EventBreakCompleted {
		t.Fatalf("expected break completion, got %v", event)
	}
	state := timer.Snapshot()
	if state.Mode != ModePomodoro || state.TimeLeft != 1500 || state.IsActive {
		t.Fatalf("unexpected state after skip: %+v", state)
	}
}

func TestCompletionReportsIntervalAndCapsLocalCounter(t *testing.T) {
	clock := newFakeClock()
	reporter := &recordingReporter{}
	timer := NewTimer(WithClock(clock.Now), WithReporter(reporter))
	timer.SetActiveTask(&Task{ID: "task-1", Title: "Write", PomodorosTotal: 1})

	start := clock.Now()
	runInterval(t, timer, clock)
	if len(reporter.reports) != 1 {
		t.Fatalf("expected one report, got %d", len(reporter.reports))
	}
	report := reporter.reports[0]
	if report.TaskID != "task-1" || !report.StartTime.Equal(start) || !report.EndTime.Equal(start.Add(25*time.Minute)) {
		t.Fatalf("unexpected report: %+v", report)
	}
	if got := timer.Snapshot().ActiveTask.PomodorosCompleted; got != 1 {
		t.Fatalf("expected local counter 1, got %d", got)
	}

	timer.SetActiveTask(timer.Snapshot().ActiveTask)
	runInterval(t, timer, clock)
	if got := timer.Snapshot().ActiveTask.PomodorosCompleted; got != 1 {
		t.Fatalf("local counter exceeded total: %d", got)
	}
	if timer.Snapshot().SessionsCompleted != 2 {
		t.Fatalf("expected sessions to keep counting, got %d", timer.Snapshot().SessionsCompleted)
	}
}

func TestReporterFailureIsLoggedNotRolledBack(t *testing.T) {
	clock := newFakeClock()
	var buf bytes.Buffer
	reporter := &recordingReporter{err: errors.New("network down")}
	timer := NewTimer(WithClock(clock.Now), WithReporter(reporter), WithLogger(log.New(&buf, "", 0)))
	timer.SetActiveTask(&Task{ID: "task-1", PomodorosTotal: 4})

	if event := runInterval(t, timer, clock); event != EventWorkCompleted {
		t.Fatalf("expected work completion, got %v", event)
	}
	state := timer.Snapshot()
	if state.Mode != ModeShortBreak || state.SessionsCompleted != 1 || state.ActiveTask.PomodorosCompleted != 1 {
		t.Fatalf("state rolled back after failed report: %+v", state)
	}
	if !strings.Contains(buf.String(), "network down") {
		t.Fatalf("expected failure in log, got %q", buf.String())
	}
}

func TestSetActiveTaskResetsToIdleWork(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(WithClock(clock.Now))
	runInterval(t, timer, clock)
	timer.Start()

	timer.SetActiveTask(&Task{ID: "task-2", PomodorosTotal: 2})
	state := timer.Snapshot()
	if state.Mode != ModePomodoro || state.IsActive || state.TimeLeft != 1500 || state.ActiveTask.ID != "task-2" {
		t.Fatalf("unexpected state after binding: %+v", state)
	}
	if state.SessionsCompleted != 1 {
		t.Fatalf("binding a task must keep the session count, got %d", state.SessionsCompleted)
	}
}

func TestSnapshotRoundTripResumesDeadline(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(WithClock(clock.Now))
	timer.SetActiveTask(&Task{ID: "task-1", Title: "Write", PomodorosTotal: 2})
	timer.Start()

	data, err := EncodeState(timer.Snapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeState(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	clock.Advance(5 * time.Minute)
	restored := NewTimer(WithClock(clock.Now))
	if err := restored.Restore(decoded); err != nil {
		t.Fatalf("restore: %v", err)
	}
	restored.Tick(context.Background())
	state := restored.Snapshot()
	if state.TimeLeft != 1200 || !state.IsActive || state.ActiveTask == nil || state.ActiveTask.ID != "task-1" {
		t.Fatalf("unexpected restored state: %+v", state)
	}
}

func TestDecodeStateRejectsUnknownMode(t *testing.T) {
	if _, err := DecodeState([]byte(`{"mode":"NAP","timeLeft":10}`)); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	state, err := DecodeState([]byte(`{"mode":"SHORT_BREAK","isActive":true,"timeLeft":10}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.IsActive {
		t.Fatal("active state without deadline should decode as paused")
	}
}

func TestTitle(t *testing.T) {
	state := State{Mode: ModeLongBreak, TimeLeft: 61}
	if got := state.Title(); got != "01:01 Break" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := InitialState().Title(); got != "25:00 Focus" {
		t.Fatalf("unexpected title %q", got)
	}
}
