package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"beproductive/backend/internal/client"
	"beproductive/backend/internal/model"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the token in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(a.cfg.Server)
			result, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			a.cfg.Token = result.Token
			if err := SaveConfig(a.configPath, a.cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", result.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newTasksCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"ls"},
		Short:   "List the tasks of a day, recurring ones included",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			tasks, err := c.ListTasks(cmd.Context(), date)
			if err != nil {
				return relogin(err)
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintf(out, "No tasks for %s\n", date)
				return nil
			}
			for _, task := range tasks {
				fmt.Fprintln(out, taskLine(task))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", today(), "day to list (YYYY-MM-DD)")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var date string
	var pomodoros int

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a one-off task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			task, err := c.CreateTask(cmd.Context(), client.CreateTaskRequest{
				Title:          args[0],
				Date:           date,
				PomodorosTotal: &pomodoros,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s) for %s\n", task.Title, task.ID, task.Date)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", today(), "task date (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&pomodoros, "pomodoros", "n", 1, "planned pomodoros")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done TASK_ID",
		Short: "Mark a task done (or not, with --undo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			status := model.TaskStatusDone
			if undo {
				status = model.TaskStatusTodo
			}
			if err := c.UpdateTaskStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s is %s\n", args[0], status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "set the task back to TODO")
	return cmd
}
