package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"beproductive/backend/internal/client"
	apperrors "beproductive/backend/internal/errors"
	"beproductive/backend/internal/model"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	server     string
	cfg        Config
}

// NewRootCommand builds the focus command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "focus",
		Short: "BeProductive from the terminal",
		Long: `focus lists and adds the day's tasks, manages recurring rules and runs
the pomodoro timer against a BeProductive server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			if a.server != "" {
				cfg.Server = a.server
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", DefaultConfigPath(), "config file")
	root.PersistentFlags().StringVar(&a.server, "server", "", "server URL (overrides config)")

	root.AddCommand(
		newLoginCmd(a),
		newTasksCmd(a),
		newAddCmd(a),
		newDoneCmd(a),
		newRulesCmd(a),
		newSessionCmd(a),
		newTimerCmd(a),
	)
	return root
}

func (a *app) client() (*client.Client, error) {
	if a.cfg.Token == "" {
		return nil, errors.New("not logged in; run `focus login` first")
	}
	return client.New(a.cfg.Server, client.WithToken(a.cfg.Token)), nil
}

// relogin points at `focus login` when the stored token was rejected.
func relogin(err error) error {
	if apperrors.HasCode(err, "unauthorized") {
		return fmt.Errorf("%w (run `focus login` again)", err)
	}
	return err
}

func today() string {
	return time.Now().Format(model.DateLayout)
}

func taskLine(task model.Task) string {
	mark := " "
	if task.Status == model.TaskStatusDone {
		mark = "x"
	}
	line := fmt.Sprintf("[%s] %-36s %s  (%d/%d)", mark, task.ID, task.Title, task.PomodorosCompleted, task.PomodorosTotal)
	if task.RecurringTaskID != nil {
		line += "  ↻"
	}
	return line
}
