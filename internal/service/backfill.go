package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"beproductive/backend/internal/model"
	"beproductive/backend/internal/repository"
)

const (
	backfillDayStart = 9 * time.Hour
	backfillSpacing  = 30 * time.Minute
	backfillLength   = 25 * time.Minute
)

// BackfillFocusSessions creates the closed sessions missing for tasks whose
// completed count was recorded before sessions were kept. Synthesised
// sessions start at 09:00 on the task date, 30 minutes apart. It returns the
// number of sessions created.
func BackfillFocusSessions(
	ctx context.Context,
	tasks *repository.TaskRepository,
	sessions *repository.FocusSessionRepository,
) (int, error) {
	candidates, err := tasks.ListBackfillCandidates(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	now := time.Now().UTC()
	for _, candidate := range candidates {
		day, err := time.Parse(model.DateLayout, candidate.Task.Date)
		if err != nil {
			return created, fmt.Errorf("backfill task %s: bad date %q: %w", candidate.Task.ID, candidate.Task.Date, err)
		}
		for i := candidate.SessionCount; i < candidate.Task.PomodorosCompleted; i++ {
			start := day.Add(backfillDayStart + time.Duration(i)*backfillSpacing)
			end := start.Add(backfillLength)
			if err := sessions.Insert(ctx, &model.FocusSession{
				ID:        uuid.NewString(),
				TaskID:    candidate.Task.ID,
				StartTime: start,
				EndTime:   &end,
				CreatedAt: now,
			}); err != nil {
				return created, fmt.Errorf("backfill task %s: %w", candidate.Task.ID, err)
			}
			created++
		}
	}
	return created, nil
}
