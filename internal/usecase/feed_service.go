package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rabsht/fpl-h2h/internal/domain/entry"
	"github.com/rabsht/fpl-h2h/internal/domain/fixture"
	"github.com/rabsht/fpl-h2h/internal/domain/gameweek"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/player"
	"github.com/rabsht/fpl-h2h/internal/domain/scoring"
	"github.com/rabsht/fpl-h2h/internal/platform/cache"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// UpstreamProvider is the game API surface the feed layer consumes.
type UpstreamProvider interface {
	FetchBootstrap(ctx context.Context) (UpstreamBootstrap, error)
	FetchLiveStats(ctx context.Context, gw int) (scoring.Stats, error)
	FetchFixtures(ctx context.Context, gw int) ([]fixture.Fixture, error)
	FetchH2HStandings(ctx context.Context, leagueID, page int) (UpstreamH2HPage, error)
	FetchH2HMatches(ctx context.Context, leagueID, gw int) ([]league.Match, error)
	FetchClassicStandings(ctx context.Context, leagueID, page int) (UpstreamClassicPage, error)
	FetchEntry(ctx context.Context, entryID int) (entry.Entry, error)
	FetchEntryPicks(ctx context.Context, entryID, gw int) (entry.Picks, error)
	FetchEntryHistory(ctx context.Context, entryID int) ([]entry.HistoryRow, error)
}

// UpstreamBootstrap is the season-static payload: the gameweek calendar,
// the player catalog keyed by element id, and club short names.
type UpstreamBootstrap struct {
	Events  []gameweek.Event
	Players map[int]player.Player
	Clubs   map[int]string
}

// UpstreamH2HPage is one page of an H2H league's official standings.
type UpstreamH2HPage struct {
	LeagueName string
	HasNext    bool
	Standings  []league.Standing
}

// UpstreamClassicPage is one page of a classic league's standings.
type UpstreamClassicPage struct {
	LeagueName string
	HasNext    bool
	Rows       []league.ClassicRow
}

// H2HLeague is a fully paginated H2H standings pull.
type H2HLeague struct {
	Name string
	Rows []league.Standing
}

// ClassicLeague is a classic standings pull trimmed to the caller's limit.
type ClassicLeague struct {
	Name string
	Rows []league.ClassicRow
}

// GameweekBundle holds everything the live engine needs for one league's
// gameweek: stat lines (bonus-projected when asked), the fixture set with
// its tracker, and the league's match pairings. Stale reports that at
// least one piece was served from the cache's stale window after a failed
// refresh.
type GameweekBundle struct {
	Gameweek int
	Stats    scoring.Stats
	Fixtures []fixture.Fixture
	Tracker  *fixture.Tracker
	Matches  []league.Match
	Stale    bool
}

// Feed pagination stops here even if the upstream keeps claiming more
// pages; a league that deep is a configuration mistake.
const maxStandingsPages = 20

type FeedConfig struct {
	// CoreTTL caches the fast-moving feeds (live stats, fixtures,
	// matches, picks). LeagueTTL caches standings pages, entry profiles
	// and histories. StaleFor extends both past expiry for fallback
	// reads when a refresh fails.
	CoreTTL   time.Duration
	LeagueTTL time.Duration
	StaleFor  time.Duration
	// MaxWorkers bounds the per-entry fan-out pool.
	MaxWorkers int
	// PostponedClubs force-resolves clubs whose fixture the upstream
	// still lists without a kickoff.
	PostponedClubs []int
}

// FeedService fronts the upstream provider with TTL caches and turns raw
// payloads into the aggregates the dashboard services work from. Every
// service reads the game API through here, never through the provider
// directly.
type FeedService struct {
	provider UpstreamProvider
	cfg      FeedConfig
	logger   *logging.Logger
	core     *cache.Store
	leagues  *cache.Store
}

func NewFeedService(provider UpstreamProvider, cfg FeedConfig, logger *logging.Logger) *FeedService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CoreTTL <= 0 {
		cfg.CoreTTL = 30 * time.Second
	}
	if cfg.LeagueTTL <= 0 {
		cfg.LeagueTTL = 2 * time.Minute
	}
	if cfg.StaleFor <= 0 {
		cfg.StaleFor = 10 * time.Minute
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 8
	}

	return &FeedService{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		core:     cache.NewStoreWithStale(cfg.CoreTTL, cfg.StaleFor),
		leagues:  cache.NewStoreWithStale(cfg.LeagueTTL, cfg.StaleFor),
	}
}

// Bootstrap returns the cached season-static payload.
func (s *FeedService) Bootstrap(ctx context.Context) (UpstreamBootstrap, error) {
	value, stale, err := s.core.GetOrLoadStale(ctx, "bootstrap", func(ctx context.Context) (any, error) {
		return s.provider.FetchBootstrap(ctx)
	})
	if err != nil {
		return UpstreamBootstrap{}, fmt.Errorf("load bootstrap: %w", err)
	}
	bootstrap, ok := value.(UpstreamBootstrap)
	if !ok {
		return UpstreamBootstrap{}, fmt.Errorf("unexpected cached bootstrap type %T", value)
	}
	if stale {
		s.logger.WarnContext(ctx, "serving stale bootstrap after failed refresh")
	}
	return bootstrap, nil
}

// CurrentGameweek resolves the active gameweek event from the calendar.
func (s *FeedService) CurrentGameweek(ctx context.Context) (gameweek.Event, error) {
	bootstrap, err := s.Bootstrap(ctx)
	if err != nil {
		return gameweek.Event{}, err
	}

	id, err := gameweek.Current(bootstrap.Events)
	if err != nil {
		return gameweek.Event{}, fmt.Errorf("%w: %s", ErrDependencyUnavailable, err)
	}
	event, ok := gameweek.Find(bootstrap.Events, id)
	if !ok {
		return gameweek.Event{ID: id}, nil
	}
	return event, nil
}

// LoadGameweek assembles the live bundle for one league and gameweek.
// The three feeds load concurrently and the first failure cancels the
// rest. leagueID 0 skips the match pairings, for callers that only need
// stats and fixtures.
func (s *FeedService) LoadGameweek(ctx context.Context, leagueID, gw int, projectBonus bool) (GameweekBundle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedService.LoadGameweek")
	defer span.End()

	var (
		stats         scoring.Stats
		fixtures      []fixture.Fixture
		matches       []league.Match
		statsStale    bool
		fixturesStale bool
		matchesStale  bool
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		stats, statsStale, err = s.liveStats(ctx, gw)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		fixtures, fixturesStale, err = s.fixtures(ctx, gw)
		return err
	})
	if leagueID > 0 {
		p.Go(func(ctx context.Context) error {
			var err error
			matches, matchesStale, err = s.matches(ctx, leagueID, gw)
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return GameweekBundle{}, fmt.Errorf("load gameweek bundle gameweek=%d: %w", gw, err)
	}

	if projectBonus {
		stats = stats.Clone()
		scoring.ProjectBonus(stats)
	}

	return GameweekBundle{
		Gameweek: gw,
		Stats:    stats,
		Fixtures: fixtures,
		Tracker:  fixture.NewTracker(fixtures, s.cfg.PostponedClubs),
		Matches:  matches,
		Stale:    statsStale || fixturesStale || matchesStale,
	}, nil
}

// H2HStandings pulls and caches the full official table of an H2H league.
func (s *FeedService) H2HStandings(ctx context.Context, leagueID int) (H2HLeague, error) {
	key := fmt.Sprintf("h2h-standings/%d", leagueID)
	value, stale, err := s.leagues.GetOrLoadStale(ctx, key, func(ctx context.Context) (any, error) {
		out := H2HLeague{}
		for page := 1; page <= maxStandingsPages; page++ {
			result, err := s.provider.FetchH2HStandings(ctx, leagueID, page)
			if err != nil {
				return nil, err
			}
			if out.Name == "" {
				out.Name = result.LeagueName
			}
			out.Rows = append(out.Rows, result.Standings...)
			if !result.HasNext {
				return out, nil
			}
		}
		s.logger.WarnContext(ctx, "h2h standings truncated at page cap", "league_id", leagueID, "pages", maxStandingsPages)
		return out, nil
	})
	if err != nil {
		return H2HLeague{}, fmt.Errorf("load h2h standings league=%d: %w", leagueID, err)
	}
	standings, ok := value.(H2HLeague)
	if !ok {
		return H2HLeague{}, fmt.Errorf("unexpected cached standings type %T", value)
	}
	if stale {
		s.logger.WarnContext(ctx, "serving stale h2h standings after failed refresh", "league_id", leagueID)
	}
	return standings, nil
}

// ClassicStandings pulls a classic league's table up to limit rows.
// limit 0 keeps everything the page cap allows.
func (s *FeedService) ClassicStandings(ctx context.Context, leagueID, limit int) (ClassicLeague, error) {
	key := fmt.Sprintf("classic-standings/%d/%d", leagueID, limit)
	value, stale, err := s.leagues.GetOrLoadStale(ctx, key, func(ctx context.Context) (any, error) {
		out := ClassicLeague{}
		for page := 1; page <= maxStandingsPages; page++ {
			result, err := s.provider.FetchClassicStandings(ctx, leagueID, page)
			if err != nil {
				return nil, err
			}
			if out.Name == "" {
				out.Name = result.LeagueName
			}
			out.Rows = append(out.Rows, result.Rows...)
			if limit > 0 && len(out.Rows) >= limit {
				out.Rows = out.Rows[:limit]
				return out, nil
			}
			if !result.HasNext {
				return out, nil
			}
		}
		s.logger.WarnContext(ctx, "classic standings truncated at page cap", "league_id", leagueID, "pages", maxStandingsPages)
		return out, nil
	})
	if err != nil {
		return ClassicLeague{}, fmt.Errorf("load classic standings league=%d: %w", leagueID, err)
	}
	standings, ok := value.(ClassicLeague)
	if !ok {
		return ClassicLeague{}, fmt.Errorf("unexpected cached classic standings type %T", value)
	}
	if stale {
		s.logger.WarnContext(ctx, "serving stale classic standings after failed refresh", "league_id", leagueID)
	}
	return standings, nil
}

// PicksByEntry fans the picks fetch out over a bounded worker pool and
// merges results by entry id. A failed entry is dropped from the map and
// reported in the second return so the caller can render a no-data row;
// one manager's outage never takes the whole aggregation down.
func (s *FeedService) PicksByEntry(ctx context.Context, gw int, entries []int) (map[int]entry.Picks, []int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedService.PicksByEntry")
	defer span.End()

	type picksRow struct {
		entryID int
		picks   entry.Picks
		err     error
	}

	workers, err := fanOutWorkers(ctx, s, entries, func(ctx context.Context, entryID int) picksRow {
		picks, err := s.entryPicks(ctx, entryID, gw)
		return picksRow{entryID: entryID, picks: picks, err: err}
	})
	if err != nil {
		return nil, nil, err
	}

	out := make(map[int]entry.Picks, len(entries))
	var failed []int
	for _, row := range workers {
		if row.err != nil {
			s.logger.WarnContext(ctx, "picks fetch failed, row degrades to no-data",
				"entry_id", row.entryID,
				"gameweek", gw,
				"error", row.err,
			)
			failed = append(failed, row.entryID)
			continue
		}
		out[row.entryID] = row.picks
	}
	sort.Ints(failed)
	return out, failed, nil
}

// HistoriesByEntry fans the season-history fetch out the same way.
func (s *FeedService) HistoriesByEntry(ctx context.Context, entries []int) (map[int][]entry.HistoryRow, []int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedService.HistoriesByEntry")
	defer span.End()

	type historyRow struct {
		entryID int
		rows    []entry.HistoryRow
		err     error
	}

	workers, err := fanOutWorkers(ctx, s, entries, func(ctx context.Context, entryID int) historyRow {
		rows, err := s.entryHistory(ctx, entryID)
		return historyRow{entryID: entryID, rows: rows, err: err}
	})
	if err != nil {
		return nil, nil, err
	}

	out := make(map[int][]entry.HistoryRow, len(entries))
	var failed []int
	for _, row := range workers {
		if row.err != nil {
			s.logger.WarnContext(ctx, "history fetch failed, entry degrades to no-data",
				"entry_id", row.entryID,
				"error", row.err,
			)
			failed = append(failed, row.entryID)
			continue
		}
		out[row.entryID] = row.rows
	}
	sort.Ints(failed)
	return out, failed, nil
}

// Entry returns a manager's profile, cached on the slow store.
func (s *FeedService) Entry(ctx context.Context, entryID int) (entry.Entry, error) {
	key := fmt.Sprintf("entry/%d", entryID)
	value, stale, err := s.leagues.GetOrLoadStale(ctx, key, func(ctx context.Context) (any, error) {
		return s.provider.FetchEntry(ctx, entryID)
	})
	if err != nil {
		return entry.Entry{}, fmt.Errorf("load entry entry_id=%d: %w", entryID, err)
	}
	e, ok := value.(entry.Entry)
	if !ok {
		return entry.Entry{}, fmt.Errorf("unexpected cached entry type %T", value)
	}
	if stale {
		s.logger.WarnContext(ctx, "serving stale entry profile after failed refresh", "entry_id", entryID)
	}
	return e, nil
}

// Invalidate drops the cached live feeds so the next read hits upstream.
// Called after a snapshot persists, so freshly written baselines show up
// in the following dashboard render instead of a TTL later.
func (s *FeedService) Invalidate(ctx context.Context) {
	s.core.DeletePrefix(ctx, "live/")
	s.core.DeletePrefix(ctx, "fixtures/")
	s.core.DeletePrefix(ctx, "matches/")
	s.core.DeletePrefix(ctx, "picks/")
	s.leagues.DeletePrefix(ctx, "h2h-standings/")
}

// fanOutWorkers runs one task per entry id on an ants pool and collects
// every result. It fails only on pool mechanics or a dead context, never
// on a task's own error.
func fanOutWorkers[T any](ctx context.Context, s *FeedService, entries []int, task func(context.Context, int) T) ([]T, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	workerCount := s.cfg.MaxWorkers
	if workerCount > len(entries) {
		workerCount = len(entries)
	}

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create fan-out worker pool: %w", err)
	}
	defer workerPool.Release()

	results := make(chan T, len(entries))
	var wg sync.WaitGroup
	for _, entryID := range entries {
		entryID := entryID
		wg.Add(1)
		if err := workerPool.Submit(func() {
			defer wg.Done()
			results <- task(ctx, entryID)
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit fan-out task entry_id=%d: %w", entryID, err)
		}
	}
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(entries))
	for row := range results {
		out = append(out, row)
	}
	return out, nil
}

func (s *FeedService) liveStats(ctx context.Context, gw int) (scoring.Stats, bool, error) {
	key := fmt.Sprintf("live/%d", gw)
	value, stale, err := s.core.GetOrLoadStale(ctx, key, func(ctx context.Context) (any, error) {
		return s.provider.FetchLiveStats(ctx, gw)
	})
	if err != nil {
		return nil, false, err
	}
	stats, ok := value.(scoring.Stats)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cached live stats type %T", value)
	}
	if stale {
		s.logger.WarnContext(ctx, "serving stale live stats after failed refresh", "gameweek", gw)
	}
	return stats, stale, nil
}

func (s *FeedService) fixtures(ctx context.Context, gw int) ([]fixture.Fixture, bool, error) {
	key := fmt.Sprintf("fixtures/%d", gw)
	value, stale, err := s.core.GetOrLoadStale(ctx, key, func(ctx context.Context) (any, error) {
		return s.provider.FetchFixtures(ctx, gw)
	})
	if err != nil {
		return nil, false, err
	}
	fixtures, ok := value.([]fixture.Fixture)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cached fixtures type %T", value)
	}
	if stale {
		s.logger.WarnContext(ctx, "serving stale fixtures after failed refresh", "gameweek", gw)
	}
	return fixtures, stale, nil
}

func (s *FeedService) matches(ctx context.Context, leagueID, gw int) ([]league.Match, bool, error) {
	key := fmt.Sprintf("matches/%d/%d", leagueID, gw)
	value, stale, err := s.core.GetOrLoadStale(ctx, key, func(ctx context.Context) (any, error) {
		return s.provider.FetchH2HMatches(ctx, leagueID, gw)
	})
	if err != nil {
		return nil, false, err
	}
	matches, ok := value.([]league.Match)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cached matches type %T", value)
	}
	if stale {
		s.logger.WarnContext(ctx, "serving stale match pairings after failed refresh", "league_id", leagueID, "gameweek", gw)
	}
	return matches, stale, nil
}

func (s *FeedService) entryPicks(ctx context.Context, entryID, gw int) (entry.Picks, error) {
	key := fmt.Sprintf("picks/%d/%d", gw, entryID)
	value, _, err := s.core.GetOrLoadStale(ctx, key, func(ctx context.Context) (any, error) {
		return s.provider.FetchEntryPicks(ctx, entryID, gw)
	})
	if err != nil {
		return entry.Picks{}, err
	}
	picks, ok := value.(entry.Picks)
	if !ok {
		return entry.Picks{}, fmt.Errorf("unexpected cached picks type %T", value)
	}
	return picks, nil
}

func (s *FeedService) entryHistory(ctx context.Context, entryID int) ([]entry.HistoryRow, error) {
	key := fmt.Sprintf("history/%d", entryID)
	value, _, err := s.leagues.GetOrLoadStale(ctx, key, func(ctx context.Context) (any, error) {
		return s.provider.FetchEntryHistory(ctx, entryID)
	})
	if err != nil {
		return nil, err
	}
	rows, ok := value.([]entry.HistoryRow)
	if !ok {
		return nil, fmt.Errorf("unexpected cached history type %T", value)
	}
	return rows, nil
}
