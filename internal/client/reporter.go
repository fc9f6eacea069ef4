package client

import (
	"context"
	"log"
	"sync"
	"time"

	"beproductive/backend/internal/focus"
)

// ProgressReporter sends timer completions to the progress endpoint.
type ProgressReporter struct {
	client *Client
}

func NewProgressReporter(client *Client) *ProgressReporter {
	return &ProgressReporter{client: client}
}

func (r *ProgressReporter) ReportPomodoro(ctx context.Context, report focus.Report) error {
	_, err := r.client.ReportProgress(ctx, report.TaskID, report.StartTime, report.EndTime)
	return err
}

// AsyncReporter hands reports to a background goroutine so a slow server
// never stalls the timer. Failures are logged.
type AsyncReporter struct {
	next    focus.Reporter
	timeout time.Duration
	logger  *log.Logger
	wg      sync.WaitGroup
}

func NewAsyncReporter(next focus.Reporter, timeout time.Duration, logger *log.Logger) *AsyncReporter {
	if logger == nil {
		logger = log.Default()
	}
	return &AsyncReporter{next: next, timeout: timeout, logger: logger}
}

// ReportPomodoro always returns nil; the outcome is only logged.
func (r *AsyncReporter) ReportPomodoro(_ context.Context, report focus.Report) error {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.next.ReportPomodoro(ctx, report); err != nil {
			r.logger.Printf("report pomodoro for task %s: %v", report.TaskID, err)
		}
	}()
	return nil
}

// Wait blocks until every dispatched report has finished.
func (r *AsyncReporter) Wait() {
	r.wg.Wait()
}
