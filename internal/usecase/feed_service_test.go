package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rabsht/fpl-h2h/internal/domain/entry"
	"github.com/rabsht/fpl-h2h/internal/domain/fixture"
	"github.com/rabsht/fpl-h2h/internal/domain/gameweek"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/player"
	"github.com/rabsht/fpl-h2h/internal/domain/scoring"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
)

func TestFeedService_CurrentGameweek(t *testing.T) {
	t.Parallel()

	provider := newStubUpstreamProvider()
	provider.bootstrap = UpstreamBootstrap{
		Events: []gameweek.Event{
			{ID: 11, Finished: true, DataChecked: true},
			{ID: 12, IsCurrent: true},
			{ID: 13, IsNext: true},
		},
	}
	service := NewFeedService(provider, FeedConfig{}, logging.NewNop())

	event, err := service.CurrentGameweek(context.Background())
	if err != nil {
		t.Fatalf("CurrentGameweek error: %v", err)
	}
	if event.ID != 12 {
		t.Fatalf("unexpected current gameweek: got=%d want=%d", event.ID, 12)
	}
	if event.Complete() {
		t.Fatalf("a running gameweek must not read as complete")
	}
}

func TestFeedService_Bootstrap_CachesAcrossCalls(t *testing.T) {
	t.Parallel()

	provider := newStubUpstreamProvider()
	provider.bootstrap = UpstreamBootstrap{
		Events:  []gameweek.Event{{ID: 1, IsCurrent: true}},
		Players: map[int]player.Player{100: {ID: 100, WebName: "Salah"}},
	}
	service := NewFeedService(provider, FeedConfig{}, logging.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := service.Bootstrap(context.Background()); err != nil {
			t.Fatalf("Bootstrap error: %v", err)
		}
	}

	if calls := provider.callCount("bootstrap"); calls != 1 {
		t.Fatalf("expected one upstream bootstrap fetch, got %d", calls)
	}
}

func TestFeedService_LoadGameweek_ProjectionLeavesCachedStatsRaw(t *testing.T) {
	t.Parallel()

	provider := newStubUpstreamProvider()
	provider.statsByGW[9] = scoring.Stats{
		100: {Minutes: 90, TotalPoints: 10, BPS: 30, FixtureID: 50},
		200: {Minutes: 90, TotalPoints: 6, BPS: 25, FixtureID: 50},
		300: {Minutes: 88, TotalPoints: 2, BPS: 20, FixtureID: 50},
	}
	provider.fixturesByGW[9] = []fixture.Fixture{
		{ID: 50, Event: 9, HomeClub: 1, AwayClub: 2, Started: true},
	}
	service := NewFeedService(provider, FeedConfig{}, logging.NewNop())

	projected, err := service.LoadGameweek(context.Background(), 0, 9, true)
	if err != nil {
		t.Fatalf("LoadGameweek error: %v", err)
	}
	if got := projected.Stats.Points(100); got != 13 {
		t.Fatalf("unexpected projected total for leader: got=%d want=%d", got, 13)
	}
	if got := projected.Stats.Line(300).Bonus; got != 1 {
		t.Fatalf("unexpected projected bonus for third: got=%d want=%d", got, 1)
	}

	raw, err := service.LoadGameweek(context.Background(), 0, 9, false)
	if err != nil {
		t.Fatalf("LoadGameweek error: %v", err)
	}
	if got := raw.Stats.Points(100); got != 10 {
		t.Fatalf("projection leaked into the cached stats: got=%d want=%d", got, 10)
	}
	if got := raw.Stats.Line(100).Bonus; got != 0 {
		t.Fatalf("projection leaked bonus into the cached stats: got=%d", got)
	}

	if calls := provider.callCount("live"); calls != 1 {
		t.Fatalf("expected one upstream live fetch, got %d", calls)
	}
}

func TestFeedService_LoadGameweek_SkipsMatchesWithoutLeague(t *testing.T) {
	t.Parallel()

	provider := newStubUpstreamProvider()
	provider.statsByGW[4] = scoring.Stats{}
	provider.fixturesByGW[4] = []fixture.Fixture{}
	service := NewFeedService(provider, FeedConfig{}, logging.NewNop())

	bundle, err := service.LoadGameweek(context.Background(), 0, 4, false)
	if err != nil {
		t.Fatalf("LoadGameweek error: %v", err)
	}
	if bundle.Matches != nil {
		t.Fatalf("expected no match pairings without a league, got=%+v", bundle.Matches)
	}
	if calls := provider.callCount("matches"); calls != 0 {
		t.Fatalf("expected no upstream match fetch, got %d", calls)
	}
	if bundle.Tracker == nil {
		t.Fatalf("expected a tracker even for an empty fixture set")
	}
}

func TestFeedService_LoadGameweek_FetchesMatchesForLeague(t *testing.T) {
	t.Parallel()

	provider := newStubUpstreamProvider()
	provider.statsByGW[7] = scoring.Stats{}
	provider.fixturesByGW[7] = []fixture.Fixture{}
	provider.matchesByKey[matchStubKey(820322, 7)] = []league.Match{
		{Entry1: 1001, Entry2: 1002},
	}
	service := NewFeedService(provider, FeedConfig{}, logging.NewNop())

	bundle, err := service.LoadGameweek(context.Background(), 820322, 7, false)
	if err != nil {
		t.Fatalf("LoadGameweek error: %v", err)
	}
	if len(bundle.Matches) != 1 {
		t.Fatalf("expected one pairing, got %d", len(bundle.Matches))
	}
}

func TestFeedService_PicksByEntry_PartialFailureDegradesToNoData(t *testing.T) {
	t.Parallel()

	provider := newStubUpstreamProvider()
	entries := make([]int, 0, 20)
	for i := 1; i <= 20; i++ {
		entryID := 1000 + i
		entries = append(entries, entryID)
		if i%7 == 0 {
			provider.picksErrByID[entryID] = fmt.Errorf("upstream hiccup")
			continue
		}
		provider.picksByKey[picksStubKey(entryID, 5)] = entry.Picks{
			OfficialPoints: i,
			List:           []entry.Pick{{Element: i, Position: 1, Multiplier: 1}},
		}
	}
	service := NewFeedService(provider, FeedConfig{MaxWorkers: 4}, logging.NewNop())

	picks, failed, err := service.PicksByEntry(context.Background(), 5, entries)
	if err != nil {
		t.Fatalf("PicksByEntry error: %v", err)
	}
	if len(picks) != 18 {
		t.Fatalf("expected 18 successful rows, got %d", len(picks))
	}
	if len(failed) != 2 || failed[0] != 1007 || failed[1] != 1014 {
		t.Fatalf("unexpected failed entries: %v", failed)
	}
	if got := picks[1003].OfficialPoints; got != 3 {
		t.Fatalf("unexpected merged row: got=%d want=%d", got, 3)
	}
	if _, ok := picks[1007]; ok {
		t.Fatalf("failed entry must not appear in the merged map")
	}
}

func TestFeedService_PicksByEntry_CachesPerEntry(t *testing.T) {
	t.Parallel()

	provider := newStubUpstreamProvider()
	provider.picksByKey[picksStubKey(2001, 8)] = entry.Picks{OfficialPoints: 44}
	provider.picksByKey[picksStubKey(2002, 8)] = entry.Picks{OfficialPoints: 51}
	service := NewFeedService(provider, FeedConfig{MaxWorkers: 2}, logging.NewNop())

	for i := 0; i < 2; i++ {
		if _, _, err := service.PicksByEntry(context.Background(), 8, []int{2001, 2002}); err != nil {
			t.Fatalf("PicksByEntry error: %v", err)
		}
	}

	if calls := provider.callCount("picks"); calls != 2 {
		t.Fatalf("expected one upstream picks fetch per entry, got %d", calls)
	}
}

func TestFeedService_H2HStandings_PaginatesAndCaches(t *testing.T) {
	t.Parallel()

	provider := newStubUpstreamProvider()
	provider.h2hPages[820322] = []UpstreamH2HPage{
		{
			LeagueName: "Arab League",
			HasNext:    true,
			Standings:  []league.Standing{{EntryID: 1, Rank: 1}, {EntryID: 2, Rank: 2}},
		},
		{
			Standings: []league.Standing{{EntryID: 3, Rank: 3}},
		},
	}
	service := NewFeedService(provider, FeedConfig{}, logging.NewNop())

	standings, err := service.H2HStandings(context.Background(), 820322)
	if err != nil {
		t.Fatalf("H2HStandings error: %v", err)
	}
	if standings.Name != "Arab League" {
		t.Fatalf("unexpected league name: got=%q", standings.Name)
	}
	if len(standings.Rows) != 3 {
		t.Fatalf("expected 3 rows across pages, got %d", len(standings.Rows))
	}

	if _, err := service.H2HStandings(context.Background(), 820322); err != nil {
		t.Fatalf("H2HStandings error: %v", err)
	}
	if calls := provider.callCount("h2h"); calls != 2 {
		t.Fatalf("expected two page fetches total, got %d", calls)
	}
}

func TestFeedService_ClassicStandings_LimitStopsPagination(t *testing.T) {
	t.Parallel()

	provider := newStubUpstreamProvider()
	firstPage := UpstreamClassicPage{LeagueName: "Overall", HasNext: true}
	for i := 1; i <= 50; i++ {
		firstPage.Rows = append(firstPage.Rows, league.ClassicRow{EntryID: i, Rank: i})
	}
	provider.classicPages[412] = []UpstreamClassicPage{firstPage, {Rows: []league.ClassicRow{{EntryID: 51}}}}
	service := NewFeedService(provider, FeedConfig{}, logging.NewNop())

	standings, err := service.ClassicStandings(context.Background(), 412, 30)
	if err != nil {
		t.Fatalf("ClassicStandings error: %v", err)
	}
	if len(standings.Rows) != 30 {
		t.Fatalf("expected rows trimmed to the limit, got %d", len(standings.Rows))
	}
	if calls := provider.callCount("classic"); calls != 1 {
		t.Fatalf("expected a single page fetch under the limit, got %d", calls)
	}
}

func TestFeedService_HistoriesByEntry_PartialFailure(t *testing.T) {
	t.Parallel()

	provider := newStubUpstreamProvider()
	provider.historyByID[3001] = []entry.HistoryRow{{Event: 1, Points: 60}}
	provider.historyErrByID[3002] = fmt.Errorf("upstream hiccup")
	service := NewFeedService(provider, FeedConfig{MaxWorkers: 2}, logging.NewNop())

	histories, failed, err := service.HistoriesByEntry(context.Background(), []int{3001, 3002})
	if err != nil {
		t.Fatalf("HistoriesByEntry error: %v", err)
	}
	if len(histories[3001]) != 1 {
		t.Fatalf("expected the healthy entry's history, got=%+v", histories)
	}
	if len(failed) != 1 || failed[0] != 3002 {
		t.Fatalf("unexpected failed entries: %v", failed)
	}
}

func TestFeedService_Invalidate_ForcesRefetch(t *testing.T) {
	t.Parallel()

	provider := newStubUpstreamProvider()
	provider.statsByGW[6] = scoring.Stats{}
	provider.fixturesByGW[6] = []fixture.Fixture{}
	service := NewFeedService(provider, FeedConfig{}, logging.NewNop())

	if _, err := service.LoadGameweek(context.Background(), 0, 6, false); err != nil {
		t.Fatalf("LoadGameweek error: %v", err)
	}
	service.Invalidate(context.Background())
	if _, err := service.LoadGameweek(context.Background(), 0, 6, false); err != nil {
		t.Fatalf("LoadGameweek error: %v", err)
	}

	if calls := provider.callCount("live"); calls != 2 {
		t.Fatalf("expected a fresh live fetch after invalidation, got %d", calls)
	}
}

type stubUpstreamProvider struct {
	mu sync.Mutex

	bootstrap    UpstreamBootstrap
	bootstrapErr error

	statsByGW      map[int]scoring.Stats
	fixturesByGW   map[int][]fixture.Fixture
	matchesByKey   map[string][]league.Match
	h2hPages       map[int][]UpstreamH2HPage
	classicPages   map[int][]UpstreamClassicPage
	entriesByID    map[int]entry.Entry
	picksByKey     map[string]entry.Picks
	picksErrByID   map[int]error
	historyByID    map[int][]entry.HistoryRow
	historyErrByID map[int]error

	calls map[string]int
}

var _ UpstreamProvider = (*stubUpstreamProvider)(nil)

func newStubUpstreamProvider() *stubUpstreamProvider {
	return &stubUpstreamProvider{
		statsByGW:      make(map[int]scoring.Stats),
		fixturesByGW:   make(map[int][]fixture.Fixture),
		matchesByKey:   make(map[string][]league.Match),
		h2hPages:       make(map[int][]UpstreamH2HPage),
		classicPages:   make(map[int][]UpstreamClassicPage),
		entriesByID:    make(map[int]entry.Entry),
		picksByKey:     make(map[string]entry.Picks),
		picksErrByID:   make(map[int]error),
		historyByID:    make(map[int][]entry.HistoryRow),
		historyErrByID: make(map[int]error),
		calls:          make(map[string]int),
	}
}

func (s *stubUpstreamProvider) record(name string) {
	s.mu.Lock()
	s.calls[name]++
	s.mu.Unlock()
}

func (s *stubUpstreamProvider) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubUpstreamProvider) FetchBootstrap(_ context.Context) (UpstreamBootstrap, error) {
	s.record("bootstrap")
	return s.bootstrap, s.bootstrapErr
}

func (s *stubUpstreamProvider) FetchLiveStats(_ context.Context, gw int) (scoring.Stats, error) {
	s.record("live")
	stats, ok := s.statsByGW[gw]
	if !ok {
		return nil, fmt.Errorf("no live stats for gameweek %d", gw)
	}
	return stats, nil
}

func (s *stubUpstreamProvider) FetchFixtures(_ context.Context, gw int) ([]fixture.Fixture, error) {
	s.record("fixtures")
	fixtures, ok := s.fixturesByGW[gw]
	if !ok {
		return nil, fmt.Errorf("no fixtures for gameweek %d", gw)
	}
	return fixtures, nil
}

func (s *stubUpstreamProvider) FetchH2HStandings(_ context.Context, leagueID, page int) (UpstreamH2HPage, error) {
	s.record("h2h")
	pages := s.h2hPages[leagueID]
	if page < 1 || page > len(pages) {
		return UpstreamH2HPage{}, fmt.Errorf("no standings page %d for league %d", page, leagueID)
	}
	return pages[page-1], nil
}

func (s *stubUpstreamProvider) FetchH2HMatches(_ context.Context, leagueID, gw int) ([]league.Match, error) {
	s.record("matches")
	matches, ok := s.matchesByKey[matchStubKey(leagueID, gw)]
	if !ok {
		return nil, fmt.Errorf("no matches for league %d gameweek %d", leagueID, gw)
	}
	return matches, nil
}

func (s *stubUpstreamProvider) FetchClassicStandings(_ context.Context, leagueID, page int) (UpstreamClassicPage, error) {
	s.record("classic")
	pages := s.classicPages[leagueID]
	if page < 1 || page > len(pages) {
		return UpstreamClassicPage{}, fmt.Errorf("no classic page %d for league %d", page, leagueID)
	}
	return pages[page-1], nil
}

func (s *stubUpstreamProvider) FetchEntry(_ context.Context, entryID int) (entry.Entry, error) {
	s.record("entry")
	e, ok := s.entriesByID[entryID]
	if !ok {
		return entry.Entry{}, fmt.Errorf("no entry %d", entryID)
	}
	return e, nil
}

func (s *stubUpstreamProvider) FetchEntryPicks(_ context.Context, entryID, gw int) (entry.Picks, error) {
	s.record("picks")
	s.mu.Lock()
	err := s.picksErrByID[entryID]
	picks, ok := s.picksByKey[picksStubKey(entryID, gw)]
	s.mu.Unlock()
	if err != nil {
		return entry.Picks{}, err
	}
	if !ok {
		return entry.Picks{}, fmt.Errorf("no picks for entry %d gameweek %d", entryID, gw)
	}
	return picks, nil
}

func (s *stubUpstreamProvider) FetchEntryHistory(_ context.Context, entryID int) ([]entry.HistoryRow, error) {
	s.record("history")
	s.mu.Lock()
	err := s.historyErrByID[entryID]
	rows, ok := s.historyByID[entryID]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no history for entry %d", entryID)
	}
	return rows, nil
}

func matchStubKey(leagueID, gw int) string {
	return fmt.Sprintf("%d/%d", leagueID, gw)
}

func picksStubKey(entryID, gw int) string {
	return fmt.Sprintf("%d/%d", entryID, gw)
}
