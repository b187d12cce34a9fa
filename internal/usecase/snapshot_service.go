package usecase

import (
	"context"
	"fmt"

	"github.com/rabsht/fpl-h2h/internal/platform/logging"
)

// snapshotRenderer is the dashboard render whose persistence path the
// trigger re-runs.
type snapshotRenderer interface {
	Get(ctx context.Context) (Dashboard, error)
}

// feedInvalidator drops cached feeds once a snapshot lands.
type feedInvalidator interface {
	Invalidate(ctx context.Context)
}

// SnapshotReport summarizes one forced snapshot pass.
type SnapshotReport struct {
	Gameweek  int
	State     GameweekState
	Persisted bool
	Standings int
	Matches   int
}

// SnapshotService backs the internal snapshot trigger. It renders the
// individual dashboard so the same write path that runs on live and
// finished page loads runs now, then invalidates the cached feeds so
// the freshly written baseline shows up in the next render.
type SnapshotService struct {
	renderer snapshotRenderer
	feed     feedInvalidator
	logger   *logging.Logger
}

func NewSnapshotService(renderer snapshotRenderer, feed feedInvalidator, logger *logging.Logger) *SnapshotService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotService{
		renderer: renderer,
		feed:     feed,
		logger:   logger,
	}
}

// Trigger forces a snapshot pass for the current gameweek. A round that
// has not kicked off persists nothing and leaves the caches alone; the
// report says which case the caller hit.
func (s *SnapshotService) Trigger(ctx context.Context) (SnapshotReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Trigger")
	defer span.End()

	if s.renderer == nil {
		return SnapshotReport{}, fmt.Errorf("%w: dashboard renderer not configured", ErrDependencyUnavailable)
	}

	dash, err := s.renderer.Get(ctx)
	if err != nil {
		return SnapshotReport{}, fmt.Errorf("render dashboard for snapshot: %w", err)
	}

	persisted := dash.State == GameweekLive || dash.State == GameweekFinished
	if persisted && s.feed != nil {
		s.feed.Invalidate(ctx)
	}
	s.logger.InfoContext(ctx, "snapshot trigger completed",
		"gameweek", dash.Gameweek,
		"state", string(dash.State),
		"persisted", persisted,
	)

	return SnapshotReport{
		Gameweek:  dash.Gameweek,
		State:     dash.State,
		Persisted: persisted,
		Standings: len(dash.Standings),
		Matches:   len(dash.Matches),
	}, nil
}
