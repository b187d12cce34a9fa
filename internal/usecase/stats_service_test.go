package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/rabsht/fpl-h2h/internal/domain/entry"
	"github.com/rabsht/fpl-h2h/internal/domain/gameweek"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/scoring"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
)

func TestStatsService_Get_BuildsDigest(t *testing.T) {
	t.Parallel()

	alice := sharedSquadPicks(11, 3, 120000, 50)
	bilal := sharedSquadPicks(11, 3, 90000, 41)
	carol := sharedSquadPicks(10, 3, 50000, 38)
	carol.ActiveChip = entry.ChipTripleCaptain
	dana := sharedSquadPicks(2, 3, 300000, 37)
	dana.ActiveChip = entry.ChipBenchBoost

	feed := &stubStatsFeed{
		event:     gameweek.Event{ID: 5, IsCurrent: true},
		bootstrap: UpstreamBootstrap{Players: dashboardCatalog(), Clubs: map[int]string{1: "ARS"}},
		table: H2HLeague{
			Name: "Elite League",
			Rows: []league.Standing{
				{EntryID: 10, PlayerName: "Alice", TeamName: "Alpha FC"},
				{EntryID: 20, PlayerName: "Bilal", TeamName: "Beta XI"},
				{EntryID: 30, PlayerName: "Carol", TeamName: "Gamma United"},
				{EntryID: 40, PlayerName: "Dana", TeamName: "Delta Town"},
			},
		},
		bundles: map[int]GameweekBundle{
			5: dashboardBundle(5, true, sharedStats(), []league.Match{
				{Entry1: 10, Entry1Points: 50, Entry2: 20, Entry2Points: 41},
				{Entry1: 30, Entry1Points: 38, Entry2: 40, Entry2Points: 37},
			}),
		},
		picksByGW: map[int]map[int]entry.Picks{
			5: {10: alice, 20: bilal, 30: carol, 40: dana},
		},
	}

	svc := NewStatsService(feed, league.Individual{ID: 7}, logging.NewNop())
	stats, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}

	if stats.Gameweek != 5 || stats.LeagueName != "Elite League" || stats.TotalManagers != 4 {
		t.Fatalf("unexpected digest header: gw=%d name=%q managers=%d", stats.Gameweek, stats.LeagueName, stats.TotalManagers)
	}
	if len(feed.loads) != 1 || feed.loads[0] != "7/5/false" {
		t.Fatalf("unexpected bundle loads: %v", feed.loads)
	}

	if len(stats.Captains) != 3 {
		t.Fatalf("expected 3 captain rows, got %d", len(stats.Captains))
	}
	if got := stats.Captains[0]; got.Element != 11 || got.Name != "P11" || got.Count != 2 {
		t.Fatalf("unexpected top captain: %+v", got)
	}
	if stats.Captains[1].Element != 2 || stats.Captains[2].Element != 10 {
		t.Fatalf("captain ties must order by element: %+v", stats.Captains)
	}

	if len(stats.Chips) != 2 {
		t.Fatalf("expected 2 chip plays, got %d", len(stats.Chips))
	}
	if got := stats.Chips[0]; got.EntryID != 30 || got.Manager != "Carol" || got.Chip != entry.ChipTripleCaptain || got.Label != "Triple Captain" {
		t.Fatalf("unexpected chip play: %+v", got)
	}
	if stats.Chips[1].Label != "Bench Boost" {
		t.Fatalf("unexpected chip label: %+v", stats.Chips[1])
	}

	points := stats.Points
	if points.Min != 37 || len(points.MinManagers) != 1 || points.MinManagers[0] != "Dana" {
		t.Fatalf("unexpected points floor: %+v", points)
	}
	if points.Max != 50 || len(points.MaxManagers) != 1 || points.MaxManagers[0] != "Alice" {
		t.Fatalf("unexpected points ceiling: %+v", points)
	}
	if points.Average != 41.5 || points.Counted != 4 {
		t.Fatalf("unexpected points summary: avg=%v counted=%d", points.Average, points.Counted)
	}

	if stats.BestRank.Rank != 50000 || len(stats.BestRank.Managers) != 1 || stats.BestRank.Managers[0] != "Carol" {
		t.Fatalf("unexpected best rank: %+v", stats.BestRank)
	}
	if stats.WorstRank.Rank != 300000 || stats.WorstRank.Managers[0] != "Dana" {
		t.Fatalf("unexpected worst rank: %+v", stats.WorstRank)
	}

	if stats.LuckyWin.Manager != "Carol" || stats.LuckyWin.Points != 38 {
		t.Fatalf("unexpected lucky win: %+v", stats.LuckyWin)
	}
	if stats.UnluckyLoss.Manager != "Bilal" || stats.UnluckyLoss.Points != 41 {
		t.Fatalf("unexpected unlucky loss: %+v", stats.UnluckyLoss)
	}

	if len(stats.Ownership) != 15 {
		t.Fatalf("expected 15 ownership rows, got %d", len(stats.Ownership))
	}
	top := stats.Ownership[0]
	if top.Element != 10 || top.Name != "P10" || top.Club != "ARS" || top.Count != 6 || top.Percentage != 150 {
		t.Fatalf("unexpected top ownership: %+v", top)
	}
	if stats.Ownership[1].Element != 11 || stats.Ownership[1].Count != 6 {
		t.Fatalf("ownership ties must order by element: %+v", stats.Ownership[1])
	}
	if got := stats.Ownership[2]; got.Element != 2 || got.Count != 5 || got.Percentage != 125 {
		t.Fatalf("unexpected ownership row: %+v", got)
	}
	if got := stats.Ownership[14]; got.Count != 1 || got.Percentage != 25 {
		t.Fatalf("unexpected ownership tail: %+v", got)
	}
}

func TestStatsService_Get_FallsBackBeforeKickoff(t *testing.T) {
	t.Parallel()

	feed := &stubStatsFeed{
		event:     gameweek.Event{ID: 6, IsCurrent: true},
		bootstrap: UpstreamBootstrap{Players: dashboardCatalog(), Clubs: map[int]string{1: "ARS"}},
		table: H2HLeague{
			Name: "Elite League",
			Rows: []league.Standing{
				{EntryID: 10, PlayerName: "Alice"},
				{EntryID: 20, PlayerName: "Bilal"},
			},
		},
		bundles: map[int]GameweekBundle{
			6: dashboardBundle(6, false, scoring.Stats{}, nil),
			5: dashboardBundle(5, true, sharedStats(), []league.Match{
				{Entry1: 10, Entry1Points: 44, Entry2: 20, Entry2Points: 33},
			}),
		},
		picksByGW: map[int]map[int]entry.Picks{
			5: {
				10: sharedSquadPicks(11, 3, 1000, 44),
				20: sharedSquadPicks(1, 3, 2000, 33),
			},
		},
	}

	svc := NewStatsService(feed, league.Individual{ID: 7}, logging.NewNop())
	stats, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}

	if stats.Gameweek != 5 {
		t.Fatalf("unexpected gameweek: got=%d want=5", stats.Gameweek)
	}
	wantLoads := []string{"7/6/false", "7/5/false"}
	if len(feed.loads) != 2 || feed.loads[0] != wantLoads[0] || feed.loads[1] != wantLoads[1] {
		t.Fatalf("unexpected bundle loads: got=%v want=%v", feed.loads, wantLoads)
	}
	if len(feed.picksGameweeks) != 1 || feed.picksGameweeks[0] != 5 {
		t.Fatalf("picks must come from the fallback round: %v", feed.picksGameweeks)
	}

	if stats.Points.Max != 44 || stats.Points.Min != 33 {
		t.Fatalf("unexpected points spread: %+v", stats.Points)
	}
	if stats.LuckyWin.Manager != "Alice" || stats.LuckyWin.Points != 44 {
		t.Fatalf("unexpected lucky win: %+v", stats.LuckyWin)
	}
}

func TestStatsService_Get_SkipsManagersWithoutPicks(t *testing.T) {
	t.Parallel()

	feed := &stubStatsFeed{
		event:     gameweek.Event{ID: 5, IsCurrent: true},
		bootstrap: UpstreamBootstrap{Players: dashboardCatalog(), Clubs: map[int]string{1: "ARS"}},
		table: H2HLeague{
			Rows: []league.Standing{
				{EntryID: 10, PlayerName: "Alice"},
				{EntryID: 20, PlayerName: "Bilal"},
				{EntryID: 30, PlayerName: "Carol"},
			},
		},
		bundles: map[int]GameweekBundle{
			5: dashboardBundle(5, true, sharedStats(), []league.Match{
				{Entry1: 10, Entry1Points: 40, Entry2: 30, Entry2Points: 45},
			}),
		},
		picksByGW: map[int]map[int]entry.Picks{
			5: {
				10: sharedSquadPicks(11, 3, 1000, 40),
				20: sharedSquadPicks(11, 3, 2000, 52),
			},
		},
	}

	svc := NewStatsService(feed, league.Individual{ID: 7}, logging.NewNop())
	stats, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}

	if stats.TotalManagers != 3 || stats.Points.Counted != 2 {
		t.Fatalf("unexpected manager counts: total=%d counted=%d", stats.TotalManagers, stats.Points.Counted)
	}
	if stats.Points.Min != 40 || stats.Points.Max != 52 || stats.Points.Average != 46 {
		t.Fatalf("unexpected points summary: %+v", stats.Points)
	}
	if len(stats.Captains) != 1 || stats.Captains[0].Count != 2 {
		t.Fatalf("unexpected captain rows: %+v", stats.Captains)
	}

	// The skipped manager still stands in the table, so the pairing
	// against them keeps feeding the match extremes.
	if stats.LuckyWin.Manager != "Carol" || stats.LuckyWin.Points != 45 {
		t.Fatalf("unexpected lucky win: %+v", stats.LuckyWin)
	}
	if stats.UnluckyLoss.Manager != "Alice" || stats.UnluckyLoss.Points != 40 {
		t.Fatalf("unexpected unlucky loss: %+v", stats.UnluckyLoss)
	}

	// Ownership shares divide by the managers actually counted.
	if got := stats.Ownership[0]; got.Element != 11 || got.Count != 4 || got.Percentage != 200 {
		t.Fatalf("unexpected top ownership: %+v", got)
	}
}

func TestStatsService_Get_ExcludedManagerHidden(t *testing.T) {
	t.Parallel()

	feed := &stubStatsFeed{
		event:     gameweek.Event{ID: 5, IsCurrent: true},
		bootstrap: UpstreamBootstrap{Players: dashboardCatalog(), Clubs: map[int]string{1: "ARS"}},
		table: H2HLeague{
			Rows: []league.Standing{
				{EntryID: 10, PlayerName: "Alice"},
				{EntryID: 99, PlayerName: "Ghost"},
				{EntryID: 20, PlayerName: "Bilal"},
				{EntryID: 40, PlayerName: "Dana"},
			},
		},
		bundles: map[int]GameweekBundle{
			5: dashboardBundle(5, true, sharedStats(), []league.Match{
				{Entry1: 10, Entry1Points: 5, Entry2: 99, Entry2Points: 8},
				{Entry1: 20, Entry1Points: 30, Entry2: 40, Entry2Points: 28},
			}),
		},
		picksByGW: map[int]map[int]entry.Picks{
			5: {
				10: sharedSquadPicks(1, 3, 1000, 5),
				20: sharedSquadPicks(2, 3, 2000, 30),
				40: sharedSquadPicks(2, 3, 3000, 28),
			},
		},
	}

	individual := league.Individual{ID: 7, Excluded: []string{"Ghost"}}
	svc := NewStatsService(feed, individual, logging.NewNop())
	stats, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}

	if stats.TotalManagers != 3 || stats.Points.Counted != 3 {
		t.Fatalf("unexpected manager counts: total=%d counted=%d", stats.TotalManagers, stats.Points.Counted)
	}
	if len(feed.picksEntries) == 0 {
		t.Fatalf("expected a picks fetch")
	}
	for _, id := range feed.picksEntries[0] {
		if id == 99 {
			t.Fatalf("excluded manager fetched: %v", feed.picksEntries[0])
		}
	}

	// Ghost's cheap win must not register as the lucky one.
	if stats.LuckyWin.Manager != "Bilal" || stats.LuckyWin.Points != 30 {
		t.Fatalf("unexpected lucky win: %+v", stats.LuckyWin)
	}
	if stats.UnluckyLoss.Manager != "Dana" || stats.UnluckyLoss.Points != 28 {
		t.Fatalf("unexpected unlucky loss: %+v", stats.UnluckyLoss)
	}
	if got := stats.Captains[0]; got.Element != 2 || got.Count != 2 {
		t.Fatalf("unexpected top captain: %+v", got)
	}
}

func TestStatsService_Comparison_BuildsSeries(t *testing.T) {
	t.Parallel()

	feed := &stubStatsFeed{
		event: gameweek.Event{ID: 3, IsCurrent: true},
		table: H2HLeague{
			Rows: []league.Standing{
				{EntryID: 10, PlayerName: "Alice", TeamName: "Alpha FC"},
				{EntryID: 20, PlayerName: "Bilal", TeamName: "Beta XI"},
			},
		},
		histories: map[int][]entry.HistoryRow{
			10: {
				{Event: 1, Points: 60, OverallRank: 100000},
				{Event: 2, Points: 45, TransfersCost: 4, OverallRank: 90000},
				{Event: 3, Points: 70, OverallRank: 80000},
				{Event: 4, Points: 99, OverallRank: 70000},
			},
			20: {
				{Event: 1, Points: 50, OverallRank: 200000},
				{Event: 2, Points: 55, OverallRank: 150000},
			},
		},
	}

	svc := NewStatsService(feed, league.Individual{ID: 7}, logging.NewNop())
	comp, err := svc.Comparison(context.Background())
	if err != nil {
		t.Fatalf("Comparison error: %v", err)
	}

	if comp.Gameweek != 3 {
		t.Fatalf("unexpected gameweek: got=%d want=3", comp.Gameweek)
	}
	if len(comp.Gameweeks) != 3 || comp.Gameweeks[0] != 1 || comp.Gameweeks[2] != 3 {
		t.Fatalf("unexpected gameweek axis: %v", comp.Gameweeks)
	}
	if len(comp.Managers) != 2 {
		t.Fatalf("expected 2 series, got %d", len(comp.Managers))
	}

	alice := comp.Managers[0]
	if alice.EntryID != 10 || alice.Name != "Alice" || alice.TeamName != "Alpha FC" || alice.NoData {
		t.Fatalf("unexpected series header: %+v", alice)
	}
	if len(alice.Points) != 3 {
		t.Fatalf("rows past the current gameweek must drop: %v", alice.Points)
	}
	if alice.Points[2] != 41 {
		t.Fatalf("net points must subtract transfer costs: got=%d want=41", alice.Points[2])
	}
	if alice.Ranks[3] != 80000 {
		t.Fatalf("unexpected rank point: got=%d want=80000", alice.Ranks[3])
	}

	bilal := comp.Managers[1]
	if _, ok := bilal.Points[3]; ok {
		t.Fatalf("missing history rows must leave gaps: %v", bilal.Points)
	}
	if bilal.Points[1] != 50 {
		t.Fatalf("unexpected net points: got=%d want=50", bilal.Points[1])
	}

	if len(feed.historyEntries) != 1 || len(feed.historyEntries[0]) != 2 {
		t.Fatalf("unexpected history fetches: %v", feed.historyEntries)
	}
}

func TestStatsService_Comparison_HistoryOutageDegrades(t *testing.T) {
	t.Parallel()

	feed := &stubStatsFeed{
		event: gameweek.Event{ID: 2, IsCurrent: true},
		table: H2HLeague{
			Rows: []league.Standing{
				{EntryID: 10, PlayerName: "Alice"},
				{EntryID: 99, PlayerName: "Ghost"},
				{EntryID: 20, PlayerName: "Bilal"},
			},
		},
		histories: map[int][]entry.HistoryRow{
			10: {{Event: 1, Points: 60, OverallRank: 100000}},
		},
	}

	individual := league.Individual{ID: 7, Excluded: []string{"Ghost"}}
	svc := NewStatsService(feed, individual, logging.NewNop())
	comp, err := svc.Comparison(context.Background())
	if err != nil {
		t.Fatalf("Comparison error: %v", err)
	}

	if len(comp.Managers) != 2 {
		t.Fatalf("expected 2 series, got %d", len(comp.Managers))
	}
	for _, id := range feed.historyEntries[0] {
		if id == 99 {
			t.Fatalf("excluded manager fetched: %v", feed.historyEntries[0])
		}
	}
	if comp.Managers[0].NoData {
		t.Fatalf("healthy series marked no-data: %+v", comp.Managers[0])
	}
	degraded := comp.Managers[1]
	if !degraded.NoData || degraded.Points != nil || degraded.Ranks != nil {
		t.Fatalf("unexpected degraded series: %+v", degraded)
	}
}

func TestStatsService_FeedUnavailable(t *testing.T) {
	t.Parallel()

	svc := NewStatsService(nil, league.Individual{ID: 7}, logging.NewNop())
	if _, err := svc.Get(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if _, err := svc.Comparison(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

type stubStatsFeed struct {
	event     gameweek.Event
	bootstrap UpstreamBootstrap
	table     H2HLeague
	bundles   map[int]GameweekBundle
	picksByGW map[int]map[int]entry.Picks
	histories map[int][]entry.HistoryRow

	loads          []string
	picksGameweeks []int
	picksEntries   [][]int
	historyEntries [][]int
}

var _ statsFeed = (*stubStatsFeed)(nil)

func (f *stubStatsFeed) CurrentGameweek(ctx context.Context) (gameweek.Event, error) {
	return f.event, nil
}

func (f *stubStatsFeed) Bootstrap(ctx context.Context) (UpstreamBootstrap, error) {
	return f.bootstrap, nil
}

func (f *stubStatsFeed) H2HStandings(ctx context.Context, leagueID int) (H2HLeague, error) {
	return f.table, nil
}

func (f *stubStatsFeed) LoadGameweek(ctx context.Context, leagueID, gw int, projectBonus bool) (GameweekBundle, error) {
	f.loads = append(f.loads, fmt.Sprintf("%d/%d/%t", leagueID, gw, projectBonus))
	bundle, ok := f.bundles[gw]
	if !ok {
		return GameweekBundle{}, fmt.Errorf("no bundle for gameweek %d", gw)
	}
	return bundle, nil
}

func (f *stubStatsFeed) PicksByEntry(ctx context.Context, gw int, entries []int) (map[int]entry.Picks, []int, error) {
	f.picksGameweeks = append(f.picksGameweeks, gw)
	f.picksEntries = append(f.picksEntries, entries)

	out := make(map[int]entry.Picks, len(entries))
	var failed []int
	for _, id := range entries {
		if p, ok := f.picksByGW[gw][id]; ok {
			out[id] = p
			continue
		}
		failed = append(failed, id)
	}
	sort.Ints(failed)
	return out, failed, nil
}

func (f *stubStatsFeed) HistoriesByEntry(ctx context.Context, entries []int) (map[int][]entry.HistoryRow, []int, error) {
	f.historyEntries = append(f.historyEntries, entries)

	out := make(map[int][]entry.HistoryRow, len(entries))
	var failed []int
	for _, id := range entries {
		if rows, ok := f.histories[id]; ok {
			out[id] = rows
			continue
		}
		failed = append(failed, id)
	}
	sort.Ints(failed)
	return out, failed, nil
}
