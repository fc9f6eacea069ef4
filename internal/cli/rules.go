package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"beproductive/backend/internal/client"
	"beproductive/backend/internal/model"
	"beproductive/backend/internal/recurrence"
)

func newRulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List recurring task rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			rules, err := c.ListRecurringTasks(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rules) == 0 {
				fmt.Fprintln(out, "No recurring rules")
				return nil
			}
			for _, rule := range rules {
				fmt.Fprintln(out, ruleLine(rule))
			}
			return nil
		},
	}
	cmd.AddCommand(newRulesAddCmd(a))
	return cmd
}

func newRulesAddCmd(a *app) *cobra.Command {
	var pattern, days string
	var pomodoros int

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a recurring rule",
		Example: `  focus rules add "Standup" --pattern WEEKDAYS
  focus rules add "Gym" --pattern CUSTOM --days 1,3,5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern = strings.ToUpper(pattern)
			req := client.CreateRecurringTaskRequest{
				Title:             args[0],
				RecurrencePattern: pattern,
				PomodorosTotal:    &pomodoros,
			}
			if days != "" {
				set, err := recurrence.ParseDays("[" + days + "]")
				if err != nil {
					return fmt.Errorf("--days: %w", err)
				}
				encoded := recurrence.EncodeDays(set)
				req.DaysOfWeek = &encoded
			}
			if _, err := recurrence.ValidateSchedule(pattern, req.DaysOfWeek); err != nil {
				return err
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			rule, err := c.CreateRecurringTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created rule %s\n", ruleLine(*rule))
			return nil
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", model.PatternDaily, "DAILY, WEEKDAYS, WEEKLY or CUSTOM")
	cmd.Flags().StringVar(&days, "days", "", "weekdays for CUSTOM, 0=Sunday (e.g. 1,3,5)")
	cmd.Flags().IntVarP(&pomodoros, "pomodoros", "n", 1, "planned pomodoros per instance")
	return cmd
}

func ruleLine(rule model.RecurringTask) string {
	schedule := rule.RecurrencePattern
	if rule.RecurrencePattern == model.PatternCustom && rule.DaysOfWeek != nil {
		schedule += " " + *rule.DaysOfWeek
	}
	state := ""
	if !rule.IsActive {
		state = "  (paused)"
	}
	return fmt.Sprintf("%s  %s  [%s]%s", rule.ID, rule.Title, schedule, state)
}
