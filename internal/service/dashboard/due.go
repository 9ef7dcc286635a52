package dashboard

import (
	"context"
	"time"

	"habitpulse/internal/consistency"
)

// DueReport lists the user's habits that have not been logged yet in their
// current day, week or month.
type DueReport struct {
	GeneratedAt time.Time `json:"generated_at"`
	consistency.DueList
}

func (s *Service) Due(ctx context.Context, userID int) (DueReport, error) {
	now := s.now()
	params := now.Format(dateLayout)

	var cached DueReport
	version, hit := s.cache.Get(ctx, userID, "due", params, &cached)
	if hit {
		return cached, nil
	}

	ctx, done := startReport(ctx, "due")
	defer done()

	habits, err := s.habits.ListByUser(ctx, userID)
	if err != nil {
		return DueReport{}, err
	}
	logs, err := s.logs.ListAnnotatedByUser(ctx, userID)
	if err != nil {
		return DueReport{}, err
	}

	out := DueReport{
		GeneratedAt: now,
		DueList:     consistency.Due(habits, plainLogs(logs), now),
	}
	s.cache.Set(ctx, userID, version, "due", params, out)
	return out, nil
}
