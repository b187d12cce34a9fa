package usecase

import (
	"context"
	"fmt"

	"github.com/rabsht/fpl-h2h/internal/domain/entry"
	"github.com/rabsht/fpl-h2h/internal/domain/fixture"
	"github.com/rabsht/fpl-h2h/internal/domain/gameweek"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/scoring"
	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
)

// teamLeagueFeed is the slice of the feed layer the team leagues read.
type teamLeagueFeed interface {
	CurrentGameweek(ctx context.Context) (gameweek.Event, error)
	Bootstrap(ctx context.Context) (UpstreamBootstrap, error)
	H2HStandings(ctx context.Context, leagueID int) (H2HLeague, error)
	LoadGameweek(ctx context.Context, leagueID, gw int, projectBonus bool) (GameweekBundle, error)
	PicksByEntry(ctx context.Context, gw int, entries []int) (map[int]entry.Picks, []int, error)
	Entry(ctx context.Context, entryID int) (entry.Entry, error)
}

// TeamLeagueDashboard is the full payload for one roster-team league.
// BaseGameweek names the table the live projection built on; it stays
// zero for leagues ranked by official totals. Rosters carries the
// per-manager drill-down in configured roster order.
type TeamLeagueDashboard struct {
	Key          string
	Name         string
	Gameweek     int
	BaseGameweek int
	TotalTeams   int
	Live         bool
	Stale        bool
	Standings    []league.TeamStanding
	Matches      []league.TeamMatch
	Rosters      []league.TeamScore
	Honors       league.Honors
}

// TeamLeagueService renders the roster-team leagues, where fixed teams
// of managers compete under per-league scoring rules. Leagues on the
// projected point system carry a base table forward and persist the
// projected result once the round settles; leagues on official totals
// rank by the upstream's own head-to-head points.
type TeamLeagueService struct {
	feed    teamLeagueFeed
	tables  snapshot.TeamTableRepository
	leagues []league.TeamLeague
	logger  *logging.Logger
}

func NewTeamLeagueService(
	feed teamLeagueFeed,
	tables snapshot.TeamTableRepository,
	leagues []league.TeamLeague,
	logger *logging.Logger,
) *TeamLeagueService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamLeagueService{
		feed:    feed,
		tables:  tables,
		leagues: leagues,
		logger:  logger,
	}
}

// Get builds the dashboard of one team league for the current gameweek.
func (s *TeamLeagueService) Get(ctx context.Context, key string) (TeamLeagueDashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamLeagueService.Get")
	defer span.End()

	if s.feed == nil {
		return TeamLeagueDashboard{}, fmt.Errorf("%w: upstream feed not configured", ErrDependencyUnavailable)
	}
	l, ok := s.find(key)
	if !ok {
		return TeamLeagueDashboard{}, fmt.Errorf("%w: team league %q", ErrNotFound, key)
	}

	event, err := s.feed.CurrentGameweek(ctx)
	if err != nil {
		return TeamLeagueDashboard{}, fmt.Errorf("resolve current gameweek: %w", err)
	}
	bootstrap, err := s.feed.Bootstrap(ctx)
	if err != nil {
		return TeamLeagueDashboard{}, fmt.Errorf("load player catalog: %w", err)
	}
	table, err := s.feed.H2HStandings(ctx, l.ID)
	if err != nil {
		return TeamLeagueDashboard{}, fmt.Errorf("load league standings: %w", err)
	}
	bundle, err := s.feed.LoadGameweek(ctx, l.ID, event.ID, l.Rules.BonusProjectionEnabled)
	if err != nil {
		return TeamLeagueDashboard{}, fmt.Errorf("load gameweek feeds: %w", err)
	}

	names := make(map[int]string, len(table.Rows))
	totals := make(map[int]int, len(table.Rows))
	for _, row := range table.Rows {
		names[row.EntryID] = row.PlayerName
		totals[row.EntryID] = row.Total
	}

	entries := l.EntryIDs()
	picks, failed, err := s.feed.PicksByEntry(ctx, event.ID, entries)
	if err != nil {
		return TeamLeagueDashboard{}, fmt.Errorf("load gameweek picks: %w", err)
	}
	if len(failed) > 0 {
		s.logger.WarnContext(ctx, "manager scores degraded to no-data",
			"league", l.Key,
			"gameweek", event.ID,
			"entries", failed,
		)
	}

	byEntry := make(map[int]league.ManagerScore, len(entries))
	for _, entryID := range entries {
		p, ok := picks[entryID]
		if !ok {
			continue
		}
		live := scoring.LiveScore(p, bootstrap.Players, bundle.Stats, bundle.Tracker, l.Rules)
		byEntry[entryID] = league.ManagerScore{
			EntryID: entryID,
			Name:    managerName(names, entryID),
			Points:  live.Total,
			Captain: captainName(p, bootstrap.Players),
			FinalXI: weightedXI(fieldedWeights(p, bootstrap.Players, bundle.Stats, bundle.Tracker, l.Rules)),
		}
	}

	scores := league.SumTeams(l, byEntry)
	pairings := league.MapPairings(bundle.Matches, l)
	matches := league.BuildTeamMatches(pairings, scores, bootstrap.Players, bundle.Stats, bundle.Tracker)

	rosters := make([]league.TeamScore, 0, len(l.Teams))
	for _, team := range l.Teams {
		rosters = append(rosters, scores[team.Name])
	}

	isLive := fixture.AnyInPlay(bundle.Fixtures)

	var standings []league.TeamStanding
	baseGW := 0
	if l.Rules.PointSystem == scoring.PointSystemH2HOfficial {
		standings = league.OfficialTeamStandings(l, totals, scores)
	} else {
		var base league.Table
		base, baseGW = s.baseTable(ctx, l, event.ID)
		standings = league.ProjectTeamStandings(l, base, league.TeamResults(matches), scores)
		if !isLive && fixture.AllFinished(bundle.Fixtures) {
			s.persist(ctx, l, event.ID, standings)
		}
	}

	honors := league.WeeklyHonors(scores)
	s.resolveManagerNames(ctx, &honors)

	name := l.Name
	if name == "" {
		name = table.Name
	}

	return TeamLeagueDashboard{
		Key:          l.Key,
		Name:         name,
		Gameweek:     event.ID,
		BaseGameweek: baseGW,
		TotalTeams:   len(l.Teams),
		Live:         isLive,
		Stale:        bundle.Stale,
		Standings:    standings,
		Matches:      matches,
		Rosters:      rosters,
		Honors:       honors,
	}, nil
}

func (s *TeamLeagueService) find(key string) (league.TeamLeague, bool) {
	for _, l := range s.leagues {
		if l.Key == key {
			return l, true
		}
	}
	return league.TeamLeague{}, false
}

// baseTable resolves the table the live projection builds on: the
// configured table for the previous gameweek, then a persisted one, then
// the nearest configured fallback.
func (s *TeamLeagueService) baseTable(ctx context.Context, l league.TeamLeague, gw int) (league.Table, int) {
	prev := gw - 1
	if table, ok := l.BaseTables[prev]; ok {
		return table, prev
	}
	if s.tables != nil {
		stored, ok, err := s.tables.Get(ctx, l.Key, prev)
		if err != nil {
			s.logger.WarnContext(ctx, "stored team table unavailable",
				"league", l.Key,
				"gameweek", prev,
				"error", err,
			)
		} else if ok && len(stored.Points) > 0 {
			return stored.Points, prev
		}
	}
	if table, baseGW, ok := l.BaseTable(prev); ok {
		return table, baseGW
	}
	return league.Table{}, 0
}

// persist writes the projected table under the settled gameweek so the
// next round builds on it. Failures are logged and swallowed, matching
// the dashboard's storage-outage behavior.
func (s *TeamLeagueService) persist(ctx context.Context, l league.TeamLeague, gw int, standings []league.TeamStanding) {
	if s.tables == nil {
		return
	}
	points := make(league.Table, len(standings))
	for _, row := range standings {
		points[row.Team] = row.LeaguePoints
	}
	if err := s.tables.Upsert(ctx, snapshot.TeamTable{LeagueKey: l.Key, Gameweek: gw, Points: points}); err != nil {
		s.logger.WarnContext(ctx, "team table not persisted", "league", l.Key, "gameweek", gw, "error", err)
	}
}

// resolveManagerNames swaps the honor roll's standings names for the
// managers' profile names. A failed lookup keeps the standings name.
func (s *TeamLeagueService) resolveManagerNames(ctx context.Context, honors *league.Honors) {
	for i, entryID := range honors.ManagerEntries {
		profile, err := s.feed.Entry(ctx, entryID)
		if err != nil || profile.PlayerName == "" {
			continue
		}
		honors.Managers[i] = profile.PlayerName
	}
}

// managerName resolves a display name from the standings rows.
func managerName(names map[int]string, entryID int) string {
	if name := names[entryID]; name != "" {
		return name
	}
	return fmt.Sprintf("Manager %d", entryID)
}

// weightedXI expands a fielded-weight map into the element multiset team
// totals count from, so a double-counted captain carries through.
func weightedXI(weights map[int]int) []int {
	xi := make([]int, 0, len(weights))
	for element, count := range weights {
		for i := 0; i < count; i++ {
			xi = append(xi, element)
		}
	}
	return xi
}
