package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"beproductive/backend/internal/focus"
)

type keyMap struct {
	Toggle key.Binding
	Reset  key.Binding
	Skip   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Skip, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Toggle: key.NewBinding(key.WithKeys(" ", "space", "p"), key.WithHelp("space", "start/pause")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Skip:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip break")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// tickMsg drives focus.Timer.Tick once per second.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// TimerModel is the focus screen. The timer is shared, so value copies of
// the model all drive the same state.
type TimerModel struct {
	ctx      context.Context
	timer    *focus.Timer
	save     func(focus.State)
	keys     keyMap
	help     help.Model
	progress progress.Model
	width    int
	notice   string
	quitting bool
}

// NewTimerModel builds the screen for timer. save, when non-nil, receives
// the state after every transition and on quit.
func NewTimerModel(ctx context.Context, timer *focus.Timer, save func(focus.State)) TimerModel {
	return TimerModel{
		ctx:      ctx,
		timer:    timer,
		save:     save,
		keys:     defaultKeys,
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(tick(), tea.SetWindowTitle(m.timer.Snapshot().Title()))
}

func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		event := m.timer.Tick(m.ctx)
		if event != focus.EventNone {
			m.notice = eventNotice(event)
			m.persist()
		}
		return m, tea.Batch(tick(), tea.SetWindowTitle(m.timer.Snapshot().Title()))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = clamp(msg.Width-8, 10, 60)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.persist()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.notice = ""
			if m.timer.Snapshot().IsActive {
				if event := m.timer.Pause(m.ctx); event != focus.EventNone {
					m.notice = eventNotice(event)
				}
			} else {
				m.timer.Start()
			}
			m.persist()
		case key.Matches(msg, m.keys.Reset):
			m.timer.Reset()
			m.notice = ""
			m.persist()
		case key.Matches(msg, m.keys.Skip):
			event, err := m.timer.Skip(m.ctx)
			if errors.Is(err, focus.ErrSkipWork) {
				m.notice = "Work intervals cannot be skipped"
				return m, nil
			}
			m.notice = eventNotice(event)
			m.persist()
		}
		return m, nil
	}
	return m, nil
}

func (m TimerModel) persist() {
	if m.save != nil {
		m.save(m.timer.Snapshot())
	}
}

func (m TimerModel) View() string {
	if m.quitting {
		return ""
	}
	state := m.timer.Snapshot()

	color := ColorFocus
	if state.Mode != focus.ModePomodoro {
		color = ColorBreak
	}
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true).
		Render(state.Title())

	var lines []string
	lines = append(lines, header, "")

	taskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	if task := state.ActiveTask; task != nil {
		lines = append(lines, taskStyle.Render(fmt.Sprintf("%s  (%d/%d)", task.Title, task.PomodorosCompleted, task.PomodorosTotal)))
	} else {
		lines = append(lines, taskStyle.Render("No task selected"))
	}

	lines = append(lines, "", m.progress.ViewAs(elapsedFraction(state)), "")

	status := "paused"
	if state.IsActive {
		status = "running"
	}
	meta := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	lines = append(lines, meta.Render(fmt.Sprintf("%s · %d sessions completed", status, state.SessionsCompleted)))

	if m.notice != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)).Render(m.notice))
	}

	lines = append(lines, "", m.help.View(m.keys))
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func eventNotice(event focus.Event) string {
	switch event {
	case focus.EventWorkCompleted:
		return "Pomodoro complete, take a break"
	case focus.EventBreakCompleted:
		return "Break over, back to work"
	default:
		return ""
	}
}

func elapsedFraction(state focus.State) float64 {
	total := state.Mode.Seconds()
	if total == 0 {
		return 0
	}
	return 1 - float64(state.TimeLeft)/float64(total)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
