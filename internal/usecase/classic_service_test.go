package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rabsht/fpl-h2h/internal/domain/gameweek"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
)

func TestClassicService_Get_MarksCutoffAndMovement(t *testing.T) {
	t.Parallel()

	feed := &stubClassicFeed{
		event: gameweek.Event{ID: 7, IsCurrent: true},
		boards: map[int]ClassicLeague{
			500: {
				Name: "Overall Century",
				Rows: []league.ClassicRow{
					{EntryID: 1, PlayerName: "Alice", TeamName: "Alpha", Rank: 1, LastRank: 2, Total: 900, EventTotal: 61},
					{EntryID: 2, PlayerName: "Bilal", TeamName: "Beta", Rank: 2, LastRank: 1, Total: 890, EventTotal: 48},
					{EntryID: 3, PlayerName: "Carol", TeamName: "Gamma", Rank: 3, LastRank: 0, Total: 870, EventTotal: 55},
				},
			},
		},
	}

	svc := NewClassicService(feed, []league.Classic{{ID: 500, Name: "The Century", Cutoff: 2}}, logging.NewNop())
	board, err := svc.Get(context.Background(), 500, 0)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}

	if board.ID != 500 || board.Name != "The Century" || board.Gameweek != 7 || board.Cutoff != 2 {
		t.Fatalf("unexpected board header: %+v", board)
	}
	if len(board.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(board.Rows))
	}

	top := board.Rows[0]
	if top.RankDelta != 1 || !top.Qualifying || top.GameweekPoints != 61 {
		t.Fatalf("unexpected top row: %+v", top)
	}
	if board.Rows[1].RankDelta != -1 || !board.Rows[1].Qualifying {
		t.Fatalf("unexpected second row: %+v", board.Rows[1])
	}
	// Never ranked before: no movement, outside the places.
	third := board.Rows[2]
	if third.RankDelta != 0 || third.Qualifying {
		t.Fatalf("unexpected third row: %+v", third)
	}
}

func TestClassicService_Get_LimitPassedThrough(t *testing.T) {
	t.Parallel()

	feed := &stubClassicFeed{
		event:  gameweek.Event{ID: 7, IsCurrent: true},
		boards: map[int]ClassicLeague{500: {Name: "Overall Century"}},
	}

	svc := NewClassicService(feed, []league.Classic{{ID: 500, Cutoff: 100}}, logging.NewNop())
	board, err := svc.Get(context.Background(), 500, 50)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	// Config has no display name, so the upstream name shows.
	if board.Name != "Overall Century" {
		t.Fatalf("unexpected board name: %q", board.Name)
	}

	if _, err := svc.Get(context.Background(), 500, -3); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(feed.limits) != 2 || feed.limits[0] != 50 || feed.limits[1] != 0 {
		t.Fatalf("unexpected limits: %v", feed.limits)
	}
}

func TestClassicService_Get_UnknownLeague(t *testing.T) {
	t.Parallel()

	svc := NewClassicService(&stubClassicFeed{}, []league.Classic{{ID: 500}}, logging.NewNop())
	if _, err := svc.Get(context.Background(), 777, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClassicService_Get_FeedUnavailable(t *testing.T) {
	t.Parallel()

	svc := NewClassicService(nil, nil, logging.NewNop())
	if _, err := svc.Get(context.Background(), 500, 0); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

type stubClassicFeed struct {
	event  gameweek.Event
	boards map[int]ClassicLeague

	limits []int
}

var _ classicFeed = (*stubClassicFeed)(nil)

func (f *stubClassicFeed) CurrentGameweek(ctx context.Context) (gameweek.Event, error) {
	return f.event, nil
}

func (f *stubClassicFeed) ClassicStandings(ctx context.Context, leagueID, limit int) (ClassicLeague, error) {
	f.limits = append(f.limits, limit)
	return f.boards[leagueID], nil
}
