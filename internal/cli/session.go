package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"beproductive/backend/internal/client"
)

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Record focus sessions by hand",
	}
	cmd.AddCommand(newSessionLogCmd(a))
	return cmd
}

func newSessionLogCmd(a *app) *cobra.Command {
	var date, start, end, reason string

	cmd := &cobra.Command{
		Use:   "log TASK_ID",
		Short: "Log a work interval that ended early",
		Example: `  focus session log 3f2a... --start 09:00 --end 09:12 --reason "meeting"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime, err := clockOn(date, start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			req := client.LogSessionRequest{StartTime: startTime}
			if end != "" {
				endTime, err := clockOn(date, end)
				if err != nil {
					return fmt.Errorf("--end: %w", err)
				}
				req.EndTime = &endTime
			}
			if reason != "" {
				req.InterruptionReason = &reason
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			session, err := c.LogSession(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged session %s\n", session.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", today(), "session date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&start, "start", "", "start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "end time (HH:MM)")
	cmd.Flags().StringVar(&reason, "reason", "", "why the interval was interrupted")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

// clockOn resolves an HH:MM wall-clock time on date in the local zone.
func clockOn(date, clock string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
}
