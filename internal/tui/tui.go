package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"beproductive/backend/internal/focus"
)

// RunTimer shows the focus screen until the user quits.
func RunTimer(ctx context.Context, timer *focus.Timer, save func(focus.State)) error {
	p := tea.NewProgram(NewTimerModel(ctx, timer, save), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
