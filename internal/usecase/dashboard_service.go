package usecase

import (
	"context"
	"fmt"

	"github.com/rabsht/fpl-h2h/internal/domain/entry"
	"github.com/rabsht/fpl-h2h/internal/domain/fixture"
	"github.com/rabsht/fpl-h2h/internal/domain/gameweek"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/player"
	"github.com/rabsht/fpl-h2h/internal/domain/scoring"
	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
)

// dashboardFeed is the slice of the feed layer the dashboard reads.
type dashboardFeed interface {
	CurrentGameweek(ctx context.Context) (gameweek.Event, error)
	Bootstrap(ctx context.Context) (UpstreamBootstrap, error)
	H2HStandings(ctx context.Context, leagueID int) (H2HLeague, error)
	LoadGameweek(ctx context.Context, leagueID, gw int, projectBonus bool) (GameweekBundle, error)
	PicksByEntry(ctx context.Context, gw int, entries []int) (map[int]entry.Picks, []int, error)
}

// GameweekState tells the client which of the three dashboard modes the
// payload was built in.
type GameweekState string

const (
	// GameweekFinished means the event is finished and data checked, so
	// everything shown is official.
	GameweekFinished GameweekState = "finished"
	// GameweekLive means at least one fixture kicked off and scores are
	// computed from the live feed.
	GameweekLive GameweekState = "live"
	// GameweekNotStarted means no fixture has kicked off yet; matches
	// shown are the previous gameweek's finals.
	GameweekNotStarted GameweekState = "not-started"
)

// DashboardRow is one manager line of the head-to-head table.
type DashboardRow struct {
	EntryID        int
	PlayerName     string
	TeamName       string
	Rank           int
	RankDelta      int
	LeaguePoints   int
	GameweekPoints int
	TotalPoints    int
	OverallRank    int
	Captain        string
	Chip           string
	Result         league.Result
	Opponent       string
	NoData         bool
}

// DashboardMatch is one head-to-head pairing card.
type DashboardMatch struct {
	Entry1        int
	Entry1Name    string
	Entry1Points  int
	Entry1Captain string
	Entry1Chip    string
	Entry1Unique  []league.UniquePlayer
	Entry2        int
	Entry2Name    string
	Entry2Points  int
	Entry2Captain string
	Entry2Chip    string
	Entry2Unique  []league.UniquePlayer
	Winner        int
	PointsDiff    int
}

// Dashboard is the full individual-league payload. FixturesGameweek can
// trail Gameweek by one when the current round has not kicked off yet.
type Dashboard struct {
	Gameweek         int
	FixturesGameweek int
	State            GameweekState
	LeagueName       string
	Stale            bool
	Matches          []DashboardMatch
	Standings        []DashboardRow
}

// DashboardService renders the individual head-to-head league in one of
// three modes: official finals once the gameweek settles, the live
// engine's projection while matches run, and the previous round's finals
// before kickoff. Live and finished renders persist a standings snapshot
// so the next gameweek can report rank movement.
type DashboardService struct {
	feed      dashboardFeed
	standings snapshot.StandingRepository
	results   snapshot.FixtureResultRepository
	league    league.Individual
	rules     scoring.Rules
	logger    *logging.Logger
}

func NewDashboardService(
	feed dashboardFeed,
	standings snapshot.StandingRepository,
	results snapshot.FixtureResultRepository,
	individual league.Individual,
	rules scoring.Rules,
	logger *logging.Logger,
) *DashboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardService{
		feed:      feed,
		standings: standings,
		results:   results,
		league:    individual,
		rules:     rules,
		logger:    logger,
	}
}

// Get builds the dashboard for the current gameweek.
func (s *DashboardService) Get(ctx context.Context) (Dashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Get")
	defer span.End()

	if s.feed == nil {
		return Dashboard{}, fmt.Errorf("%w: upstream feed not configured", ErrDependencyUnavailable)
	}

	event, err := s.feed.CurrentGameweek(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("resolve current gameweek: %w", err)
	}
	bootstrap, err := s.feed.Bootstrap(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load player catalog: %w", err)
	}
	table, err := s.feed.H2HStandings(ctx, s.league.ID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load league standings: %w", err)
	}

	base := make([]league.Standing, 0, len(table.Rows))
	infoOf := make(map[int]league.Standing, len(table.Rows))
	entries := make([]int, 0, len(table.Rows))
	for _, row := range table.Rows {
		if s.league.Excludes(row.PlayerName) {
			continue
		}
		base = append(base, row)
		infoOf[row.EntryID] = row
		entries = append(entries, row.EntryID)
	}

	bundle, err := s.feed.LoadGameweek(ctx, s.league.ID, event.ID, s.rules.BonusProjectionEnabled)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load gameweek feeds: %w", err)
	}

	state := GameweekNotStarted
	switch {
	case event.Complete():
		state = GameweekFinished
	case bundle.Tracker.AnyStarted():
		state = GameweekLive
	}

	// Before kickoff the pairing cards fall back to the previous round's
	// finals while the table keeps showing the upcoming captains and chips.
	fixturesGW := event.ID
	if state == GameweekNotStarted && event.ID > 1 {
		fixturesGW = event.ID - 1
		bundle, err = s.feed.LoadGameweek(ctx, s.league.ID, fixturesGW, false)
		if err != nil {
			return Dashboard{}, fmt.Errorf("load previous gameweek feeds: %w", err)
		}
	}

	picks, failed, err := s.feed.PicksByEntry(ctx, event.ID, entries)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load gameweek picks: %w", err)
	}
	if len(failed) > 0 {
		s.logger.WarnContext(ctx, "dashboard rows degraded to no-data",
			"gameweek", event.ID,
			"entries", failed,
		)
	}

	fixturePicks := picks
	if fixturesGW != event.ID {
		fixturePicks, _, err = s.feed.PicksByEntry(ctx, fixturesGW, entries)
		if err != nil {
			return Dashboard{}, fmt.Errorf("load fixture picks: %w", err)
		}
	}

	scores := make(map[int]league.EntryScore, len(entries))
	for _, entryID := range entries {
		p, ok := picks[entryID]
		if !ok {
			scores[entryID] = league.EntryScore{NoData: true}
			continue
		}
		if state == GameweekLive {
			live := scoring.LiveScore(p, bootstrap.Players, bundle.Stats, bundle.Tracker, s.rules)
			scores[entryID] = league.EntryScore{Points: live.Total, OverallRank: p.OverallRank}
			continue
		}
		scores[entryID] = league.EntryScore{Points: p.OfficialPoints, OverallRank: p.OverallRank}
	}

	// Only a running gameweek folds provisional match outcomes into the
	// table; finished rounds are already counted in the upstream totals.
	displayMatches := bundle.Matches
	var tableMatches []league.Match
	if state == GameweekLive {
		displayMatches = league.ScoreMatches(bundle.Matches, scores)
		tableMatches = displayMatches
	}
	rows := league.ProjectStandings(base, tableMatches, scores)

	previous := s.previousRanks(ctx, event.ID)
	standings := make([]DashboardRow, 0, len(rows))
	for _, row := range rows {
		out := DashboardRow{
			EntryID:        row.EntryID,
			PlayerName:     row.PlayerName,
			TeamName:       row.TeamName,
			Rank:           row.LiveRank,
			RankDelta:      snapshot.RankDelta(previous, row.EntryID, row.LiveRank),
			LeaguePoints:   row.ProjectedTotal,
			GameweekPoints: row.GameweekPoints,
			TotalPoints:    row.PointsFor,
			OverallRank:    row.OverallRank,
			Captain:        "-",
			Result:         row.Result,
			Opponent:       "-",
			NoData:         row.NoData,
		}
		if info, ok := infoOf[row.Opponent]; ok {
			out.Opponent = info.PlayerName
		}
		if p, ok := picks[row.EntryID]; ok {
			out.Captain = captainName(p, bootstrap.Players)
			out.Chip = p.ActiveChip.Label()
		}
		standings = append(standings, out)
	}

	matches := s.buildMatches(displayMatches, infoOf, fixturePicks, bootstrap.Players, bundle)

	if state == GameweekLive || state == GameweekFinished {
		s.persist(ctx, event.ID, standings, matches)
	}

	return Dashboard{
		Gameweek:         event.ID,
		FixturesGameweek: fixturesGW,
		State:            state,
		LeagueName:       table.Name,
		Stale:            bundle.Stale,
		Matches:          matches,
		Standings:        standings,
	}, nil
}

// buildMatches turns scored pairings into display cards. Pairings with a
// side outside the filtered table are dropped.
func (s *DashboardService) buildMatches(
	pairings []league.Match,
	infoOf map[int]league.Standing,
	picks map[int]entry.Picks,
	catalog map[int]player.Player,
	bundle GameweekBundle,
) []DashboardMatch {
	matches := make([]DashboardMatch, 0, len(pairings))
	for _, m := range pairings {
		info1, ok1 := infoOf[m.Entry1]
		info2, ok2 := infoOf[m.Entry2]
		if !ok1 || !ok2 {
			continue
		}

		card := DashboardMatch{
			Entry1:        m.Entry1,
			Entry1Name:    info1.PlayerName,
			Entry1Points:  m.Entry1Points,
			Entry1Captain: "-",
			Entry2:        m.Entry2,
			Entry2Name:    info2.PlayerName,
			Entry2Points:  m.Entry2Points,
			Entry2Captain: "-",
			Winner:        m.Winner(),
			PointsDiff:    m.PointsDiff(),
		}

		var weights1, weights2 map[int]int
		if p, ok := picks[m.Entry1]; ok {
			card.Entry1Captain = captainName(p, catalog)
			card.Entry1Chip = p.ActiveChip.Label()
			weights1 = fieldedWeights(p, catalog, bundle.Stats, bundle.Tracker, s.rules)
		}
		if p, ok := picks[m.Entry2]; ok {
			card.Entry2Captain = captainName(p, catalog)
			card.Entry2Chip = p.ActiveChip.Label()
			weights2 = fieldedWeights(p, catalog, bundle.Stats, bundle.Tracker, s.rules)
		}
		card.Entry1Unique, card.Entry2Unique = league.UniquePlayers(weights1, weights2, catalog, bundle.Stats, bundle.Tracker)

		matches = append(matches, card)
	}
	return matches
}

// previousRanks loads the prior gameweek's persisted table for rank
// movement. Missing history degrades to zero deltas, never to an error.
func (s *DashboardService) previousRanks(ctx context.Context, gw int) map[int]int {
	if s.standings == nil || gw <= 1 {
		return nil
	}
	rows, err := s.standings.ListByGameweek(ctx, gw-1)
	if err != nil {
		s.logger.WarnContext(ctx, "previous standings unavailable, rank deltas zeroed",
			"gameweek", gw-1,
			"error", err,
		)
		return nil
	}
	return snapshot.Ranks(rows)
}

// persist writes the rendered table and pairings as the gameweek's
// snapshot. Failures are logged and swallowed so a storage outage never
// takes the dashboard down.
func (s *DashboardService) persist(ctx context.Context, gw int, standings []DashboardRow, matches []DashboardMatch) {
	if s.standings != nil {
		rows := make([]snapshot.Standing, 0, len(standings))
		for _, row := range standings {
			rows = append(rows, snapshot.Standing{
				Gameweek:       gw,
				EntryID:        row.EntryID,
				PlayerName:     row.PlayerName,
				TeamName:       row.TeamName,
				Rank:           row.Rank,
				LeaguePoints:   row.LeaguePoints,
				GameweekPoints: row.GameweekPoints,
				TotalPoints:    row.TotalPoints,
				OverallRank:    row.OverallRank,
				Result:         row.Result,
				Opponent:       row.Opponent,
				Captain:        row.Captain,
				Chip:           row.Chip,
			})
		}
		if err := s.standings.Upsert(ctx, rows); err != nil {
			s.logger.WarnContext(ctx, "standings snapshot not persisted", "gameweek", gw, "error", err)
		}
	}

	if s.results != nil {
		rows := make([]snapshot.FixtureResult, 0, len(matches))
		for _, m := range matches {
			rows = append(rows, snapshot.FixtureResult{
				Gameweek:     gw,
				Entry1:       m.Entry1,
				Entry1Name:   m.Entry1Name,
				Entry1Points: m.Entry1Points,
				Entry2:       m.Entry2,
				Entry2Name:   m.Entry2Name,
				Entry2Points: m.Entry2Points,
				Winner:       m.Winner,
			})
		}
		if err := s.results.Upsert(ctx, rows); err != nil {
			s.logger.WarnContext(ctx, "fixture results not persisted", "gameweek", gw, "error", err)
		}
	}
}

// captainName resolves the display name of the captain pick.
func captainName(picks entry.Picks, catalog map[int]player.Player) string {
	captain, ok := picks.Captain()
	if !ok {
		return "-"
	}
	if p, ok := catalog[captain.Element]; ok && p.WebName != "" {
		return p.WebName
	}
	return "-"
}

// fieldedWeights runs the substitution and captaincy simulations for one
// manager and returns the weighted final XI used for unique-player
// comparisons.
func fieldedWeights(picks entry.Picks, catalog map[int]player.Player, stats scoring.Stats, tracker *fixture.Tracker, rules scoring.Rules) map[int]int {
	subs := scoring.SimulateSubs(picks, catalog, stats, tracker, rules)
	captaincy := scoring.ResolveCaptaincy(picks, catalog, stats, tracker, rules)
	return scoring.FieldedWeights(picks, subs, captaincy, rules)
}
