package usecase

import (
	"context"
	"fmt"

	"github.com/rabsht/fpl-h2h/internal/domain/gameweek"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
)

// classicFeed is the slice of the feed layer the classic board reads.
type classicFeed interface {
	CurrentGameweek(ctx context.Context) (gameweek.Event, error)
	ClassicStandings(ctx context.Context, leagueID, limit int) (ClassicLeague, error)
}

// ClassicStanding is one row of an official classic table, annotated with
// the qualification marker and upstream rank movement.
type ClassicStanding struct {
	EntryID        int
	PlayerName     string
	TeamName       string
	Rank           int
	RankDelta      int
	Total          int
	GameweekPoints int
	Qualifying     bool
}

// ClassicBoard is the classic-league payload. No live computation runs
// here; rows come from upstream as ranked.
type ClassicBoard struct {
	ID       int
	Name     string
	Gameweek int
	Cutoff   int
	Rows     []ClassicStanding
}

// ClassicService serves the configured classic leagues straight from the
// official standings, marking the qualification places.
type ClassicService struct {
	feed    classicFeed
	leagues []league.Classic
	logger  *logging.Logger
}

func NewClassicService(feed classicFeed, leagues []league.Classic, logger *logging.Logger) *ClassicService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ClassicService{
		feed:    feed,
		leagues: leagues,
		logger:  logger,
	}
}

// Get builds the board for one configured classic league. limit caps the
// row count; zero or negative keeps everything the feed returns.
func (s *ClassicService) Get(ctx context.Context, leagueID, limit int) (ClassicBoard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClassicService.Get")
	defer span.End()

	if s.feed == nil {
		return ClassicBoard{}, fmt.Errorf("%w: upstream feed not configured", ErrDependencyUnavailable)
	}
	cfg, ok := s.find(leagueID)
	if !ok {
		return ClassicBoard{}, fmt.Errorf("%w: classic league %d", ErrNotFound, leagueID)
	}

	event, err := s.feed.CurrentGameweek(ctx)
	if err != nil {
		return ClassicBoard{}, fmt.Errorf("resolve current gameweek: %w", err)
	}
	if limit < 0 {
		limit = 0
	}
	standings, err := s.feed.ClassicStandings(ctx, leagueID, limit)
	if err != nil {
		return ClassicBoard{}, fmt.Errorf("load classic standings: %w", err)
	}

	rows := make([]ClassicStanding, 0, len(standings.Rows))
	for _, row := range standings.Rows {
		rows = append(rows, ClassicStanding{
			EntryID:        row.EntryID,
			PlayerName:     row.PlayerName,
			TeamName:       row.TeamName,
			Rank:           row.Rank,
			RankDelta:      row.RankChange(),
			Total:          row.Total,
			GameweekPoints: row.EventTotal,
			Qualifying:     row.WithinCutoff(cfg.Cutoff),
		})
	}

	name := cfg.Name
	if name == "" {
		name = standings.Name
	}

	return ClassicBoard{
		ID:       leagueID,
		Name:     name,
		Gameweek: event.ID,
		Cutoff:   cfg.Cutoff,
		Rows:     rows,
	}, nil
}

func (s *ClassicService) find(leagueID int) (league.Classic, bool) {
	for _, l := range s.leagues {
		if l.ID == leagueID {
			return l, true
		}
	}
	return league.Classic{}, false
}
