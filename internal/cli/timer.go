package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"beproductive/backend/internal/client"
	"beproductive/backend/internal/focus"
	"beproductive/backend/internal/snapshot"
	"beproductive/backend/internal/tui"
)

const reportTimeout = 10 * time.Second

func newTimerCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "timer [TASK_ID]",
		Short: "Run the pomodoro timer, optionally bound to a task",
		Long: `timer opens the focus screen. Completed work intervals of the bound task
are reported to the server. The timer state is kept between runs, so a
running interval keeps counting while the screen is closed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.client()
			if err != nil {
				return err
			}
			user, err := c.Me(ctx)
			if err != nil {
				return relogin(err)
			}

			logger, closeLog, err := openLog(a.cfg.LogPath)
			if err != nil {
				return err
			}
			defer closeLog()

			store, err := snapshot.Open(a.cfg.SnapshotPath)
			if err != nil {
				return err
			}
			defer store.Close()

			reporter := client.NewAsyncReporter(client.NewProgressReporter(c), reportTimeout, logger)
			defer reporter.Wait()

			timer := focus.NewTimer(focus.WithReporter(reporter), focus.WithLogger(logger))
			restoreTimer(ctx, timer, store, user.ID, logger)

			if len(args) == 1 {
				if err := bindTask(ctx, c, timer, date, args[0]); err != nil {
					return err
				}
			}

			save := func(state focus.State) {
				if err := store.Save(ctx, user.ID, state); err != nil {
					logger.Printf("save timer snapshot: %v", err)
				}
			}
			return tui.RunTimer(ctx, timer, save)
		},
	}
	cmd.Flags().StringVar(&date, "date", today(), "date of the task to bind (YYYY-MM-DD)")
	return cmd
}

func restoreTimer(ctx context.Context, timer *focus.Timer, store *snapshot.Store, owner string, logger *log.Logger) {
	state, ok, err := store.Load(ctx, owner)
	if err != nil {
		logger.Printf("load timer snapshot: %v", err)
		return
	}
	if !ok {
		return
	}
	if err := timer.Restore(state); err != nil {
		logger.Printf("restore timer snapshot: %v", err)
	}
}

// bindTask makes taskID the timer's active task unless it already is.
func bindTask(ctx context.Context, c *client.Client, timer *focus.Timer, date, taskID string) error {
	if current := timer.Snapshot().ActiveTask; current != nil && current.ID == taskID {
		return nil
	}
	tasks, err := c.ListTasks(ctx, date)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if task.ID == taskID {
			timer.SetActiveTask(&focus.Task{
				ID:                 task.ID,
				Title:              task.Title,
				PomodorosTotal:     task.PomodorosTotal,
				PomodorosCompleted: task.PomodorosCompleted,
			})
			return nil
		}
	}
	return fmt.Errorf("task %s not found on %s", taskID, date)
}

// openLog appends to path so log output never lands on the TUI screen.
func openLog(path string) (*log.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log %s: %w", path, err)
	}
	return log.New(f, "focus ", log.LstdFlags), func() { _ = f.Close() }, nil
}
