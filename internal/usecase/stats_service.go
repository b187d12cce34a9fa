package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rabsht/fpl-h2h/internal/domain/entry"
	"github.com/rabsht/fpl-h2h/internal/domain/gameweek"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/player"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
)

// statsFeed is the slice of the feed layer the statistics views read.
type statsFeed interface {
	CurrentGameweek(ctx context.Context) (gameweek.Event, error)
	Bootstrap(ctx context.Context) (UpstreamBootstrap, error)
	H2HStandings(ctx context.Context, leagueID int) (H2HLeague, error)
	LoadGameweek(ctx context.Context, leagueID, gw int, projectBonus bool) (GameweekBundle, error)
	PicksByEntry(ctx context.Context, gw int, entries []int) (map[int]entry.Picks, []int, error)
	HistoriesByEntry(ctx context.Context, entries []int) (map[int][]entry.HistoryRow, []int, error)
}

// ownershipTopN caps the effective-ownership leaderboard.
const ownershipTopN = 15

// CaptainCount is one row of the captaincy distribution. Element zero
// collects managers whose selection named no captain at all.
type CaptainCount struct {
	Element int
	Name    string
	Count   int
}

// ChipPlay records one manager's activated chip for the gameweek.
type ChipPlay struct {
	EntryID int
	Manager string
	Chip    entry.Chip
	Label   string
}

// PointsSummary aggregates the official gameweek scores of the counted
// managers. Counted can trail TotalManagers when picks were unavailable.
type PointsSummary struct {
	Min         int
	MinManagers []string
	Max         int
	MaxManagers []string
	Average     float64
	Counted     int
}

// RankExtreme is the best or worst overall rank and who holds it.
type RankExtreme struct {
	Rank     int
	Managers []string
}

// MatchExtreme singles a manager out by a head-to-head margin: the
// cheapest win of the round, or the highest-scoring defeat.
type MatchExtreme struct {
	Manager string
	Points  int
}

// OwnershipLine is one row of the effective-ownership leaderboard.
// Percentage is the share of counted managers fielding the player.
type OwnershipLine struct {
	Element    int
	Name       string
	Club       string
	Count      int
	Percentage float64
}

// LeagueStats is the gameweek statistics digest of the individual league.
type LeagueStats struct {
	Gameweek      int
	LeagueName    string
	TotalManagers int
	Captains      []CaptainCount
	Chips         []ChipPlay
	Points        PointsSummary
	BestRank      RankExtreme
	WorstRank     RankExtreme
	LuckyWin      MatchExtreme
	UnluckyLoss   MatchExtreme
	Ownership     []OwnershipLine
}

// ComparisonSeries is one manager's season trajectory: net points and
// overall rank per gameweek. NoData marks a manager whose history could
// not be fetched.
type ComparisonSeries struct {
	EntryID  int
	Name     string
	TeamName string
	NoData   bool
	Points   map[int]int
	Ranks    map[int]int
}

// Comparison charts every manager's season so far for trend views.
type Comparison struct {
	Gameweek  int
	Gameweeks []int
	Managers  []ComparisonSeries
}

// StatsService renders the statistics views of the individual league: a
// gameweek digest of captaincy, chips, score spread and effective
// ownership, and a season-long comparison of every manager. Both views
// read the official numbers the upstream reports, with no substitution
// or bonus simulation.
type StatsService struct {
	feed   statsFeed
	league league.Individual
	logger *logging.Logger
}

func NewStatsService(feed statsFeed, individual league.Individual, logger *logging.Logger) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsService{
		feed:   feed,
		league: individual,
		logger: logger,
	}
}

// Get builds the gameweek statistics digest.
func (s *StatsService) Get(ctx context.Context) (LeagueStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Get")
	defer span.End()

	if s.feed == nil {
		return LeagueStats{}, fmt.Errorf("%w: upstream feed not configured", ErrDependencyUnavailable)
	}

	event, err := s.feed.CurrentGameweek(ctx)
	if err != nil {
		return LeagueStats{}, fmt.Errorf("resolve current gameweek: %w", err)
	}
	bootstrap, err := s.feed.Bootstrap(ctx)
	if err != nil {
		return LeagueStats{}, fmt.Errorf("load player catalog: %w", err)
	}
	table, err := s.feed.H2HStandings(ctx, s.league.ID)
	if err != nil {
		return LeagueStats{}, fmt.Errorf("load league standings: %w", err)
	}

	bundle, err := s.feed.LoadGameweek(ctx, s.league.ID, event.ID, false)
	if err != nil {
		return LeagueStats{}, fmt.Errorf("load gameweek feeds: %w", err)
	}

	// Before kickoff the round has no numbers worth summarizing, so the
	// digest keeps describing the previous one.
	gw := event.ID
	if !bundle.Tracker.AnyStarted() && event.ID > 1 {
		gw = event.ID - 1
		bundle, err = s.feed.LoadGameweek(ctx, s.league.ID, gw, false)
		if err != nil {
			return LeagueStats{}, fmt.Errorf("load previous gameweek feeds: %w", err)
		}
	}

	included := make([]league.Standing, 0, len(table.Rows))
	infoOf := make(map[int]league.Standing, len(table.Rows))
	entries := make([]int, 0, len(table.Rows))
	for _, row := range table.Rows {
		if s.league.Excludes(row.PlayerName) {
			continue
		}
		included = append(included, row)
		infoOf[row.EntryID] = row
		entries = append(entries, row.EntryID)
	}

	picks, failed, err := s.feed.PicksByEntry(ctx, gw, entries)
	if err != nil {
		return LeagueStats{}, fmt.Errorf("load gameweek picks: %w", err)
	}
	if len(failed) > 0 {
		s.logger.WarnContext(ctx, "managers without picks left out of the digest",
			"gameweek", gw,
			"entries", failed,
		)
	}

	out := LeagueStats{
		Gameweek:      gw,
		LeagueName:    table.Name,
		TotalManagers: len(included),
	}

	captains := make(map[int]int)
	owned := make(map[int]int)
	counted := make([]countedManager, 0, len(included))
	for _, row := range included {
		p, ok := picks[row.EntryID]
		if !ok {
			continue
		}

		if captain, ok := p.Captain(); ok {
			captains[captain.Element]++
		} else {
			captains[0]++
		}
		if p.ActiveChip != entry.ChipNone {
			out.Chips = append(out.Chips, ChipPlay{
				EntryID: row.EntryID,
				Manager: row.PlayerName,
				Chip:    p.ActiveChip,
				Label:   p.ActiveChip.Label(),
			})
		}
		for element, weight := range ownershipWeights(p) {
			owned[element] += weight
		}
		counted = append(counted, countedManager{
			name:   row.PlayerName,
			points: p.OfficialPoints,
			rank:   p.OverallRank,
		})
	}

	out.Captains = captainRows(captains, bootstrap.Players)
	out.Points = summarizePoints(counted)
	out.BestRank, out.WorstRank = summarizeRanks(counted)
	out.LuckyWin, out.UnluckyLoss = matchExtremes(bundle.Matches, infoOf)
	out.Ownership = ownershipRows(owned, len(counted), bootstrap.Players, bootstrap.Clubs)

	return out, nil
}

// Comparison builds the manager-by-manager season series up to the
// current gameweek.
func (s *StatsService) Comparison(ctx context.Context) (Comparison, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Comparison")
	defer span.End()

	if s.feed == nil {
		return Comparison{}, fmt.Errorf("%w: upstream feed not configured", ErrDependencyUnavailable)
	}

	event, err := s.feed.CurrentGameweek(ctx)
	if err != nil {
		return Comparison{}, fmt.Errorf("resolve current gameweek: %w", err)
	}
	table, err := s.feed.H2HStandings(ctx, s.league.ID)
	if err != nil {
		return Comparison{}, fmt.Errorf("load league standings: %w", err)
	}

	included := make([]league.Standing, 0, len(table.Rows))
	entries := make([]int, 0, len(table.Rows))
	for _, row := range table.Rows {
		if s.league.Excludes(row.PlayerName) {
			continue
		}
		included = append(included, row)
		entries = append(entries, row.EntryID)
	}

	histories, failed, err := s.feed.HistoriesByEntry(ctx, entries)
	if err != nil {
		return Comparison{}, fmt.Errorf("load manager histories: %w", err)
	}
	if len(failed) > 0 {
		s.logger.WarnContext(ctx, "manager histories degraded to no-data", "entries", failed)
	}

	gameweeks := make([]int, 0, event.ID)
	for gw := 1; gw <= event.ID; gw++ {
		gameweeks = append(gameweeks, gw)
	}

	managers := make([]ComparisonSeries, 0, len(included))
	for _, row := range included {
		series := ComparisonSeries{
			EntryID:  row.EntryID,
			Name:     row.PlayerName,
			TeamName: row.TeamName,
		}
		rows, ok := histories[row.EntryID]
		if !ok {
			series.NoData = true
			managers = append(managers, series)
			continue
		}

		series.Points = make(map[int]int, len(rows))
		series.Ranks = make(map[int]int, len(rows))
		for _, h := range rows {
			if h.Event < 1 || h.Event > event.ID {
				continue
			}
			series.Points[h.Event] = h.Points - h.TransfersCost
			series.Ranks[h.Event] = h.OverallRank
		}
		managers = append(managers, series)
	}

	return Comparison{
		Gameweek:  event.ID,
		Gameweeks: gameweeks,
		Managers:  managers,
	}, nil
}

// countedManager is one manager whose picks made it into the digest.
type countedManager struct {
	name   string
	points int
	rank   int
}

// ownershipWeights expands a manager's raw selection into effective
// ownership weights: the named lineup only, captain doubled (tripled on
// a triple captain chip) and the bench counted under a bench boost.
func ownershipWeights(p entry.Picks) map[int]int {
	picked := p.Starters()
	if p.ActiveChip == entry.ChipBenchBoost {
		picked = append(picked, p.Bench()...)
	}

	weights := make(map[int]int, len(picked))
	for _, pick := range picked {
		weight := 1
		if pick.IsCaptain {
			weight = 2
			if p.ActiveChip == entry.ChipTripleCaptain {
				weight = 3
			}
		}
		weights[pick.Element] += weight
	}
	return weights
}

// captainRows orders the captaincy distribution by popularity, ties by
// element id.
func captainRows(counts map[int]int, catalog map[int]player.Player) []CaptainCount {
	rows := make([]CaptainCount, 0, len(counts))
	for element, count := range counts {
		name := "-"
		if p, ok := catalog[element]; ok && p.WebName != "" {
			name = p.WebName
		}
		rows = append(rows, CaptainCount{Element: element, Name: name, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Element < rows[j].Element
	})
	return rows
}

// summarizePoints finds the round's floor and ceiling with everyone tied
// at them, and the average to one decimal.
func summarizePoints(counted []countedManager) PointsSummary {
	if len(counted) == 0 {
		return PointsSummary{}
	}

	out := PointsSummary{
		Min:     counted[0].points,
		Max:     counted[0].points,
		Counted: len(counted),
	}
	sum := 0
	for _, m := range counted {
		sum += m.points
		if m.points < out.Min {
			out.Min = m.points
		}
		if m.points > out.Max {
			out.Max = m.points
		}
	}
	for _, m := range counted {
		if m.points == out.Min {
			out.MinManagers = append(out.MinManagers, m.name)
		}
		if m.points == out.Max {
			out.MaxManagers = append(out.MaxManagers, m.name)
		}
	}
	out.Average = math.Round(float64(sum)/float64(len(counted))*10) / 10
	return out
}

// summarizeRanks finds the best and worst overall ranks among managers
// the upstream has ranked.
func summarizeRanks(counted []countedManager) (RankExtreme, RankExtreme) {
	bestRank, worstRank := 0, 0
	for _, m := range counted {
		if m.rank <= 0 {
			continue
		}
		if bestRank == 0 || m.rank < bestRank {
			bestRank = m.rank
		}
		if m.rank > worstRank {
			worstRank = m.rank
		}
	}

	best := RankExtreme{Rank: bestRank}
	worst := RankExtreme{Rank: worstRank}
	if bestRank == 0 {
		return best, worst
	}
	for _, m := range counted {
		if m.rank == bestRank {
			best.Managers = append(best.Managers, m.name)
		}
		if m.rank == worstRank {
			worst.Managers = append(worst.Managers, m.name)
		}
	}
	return best, worst
}

// matchExtremes scans the round's pairings for the cheapest win and the
// highest-scoring defeat. Drawn pairings and pairings with a side
// outside the table are skipped; the first holder keeps a tie.
func matchExtremes(pairings []league.Match, infoOf map[int]league.Standing) (MatchExtreme, MatchExtreme) {
	var lucky, unlucky MatchExtreme
	haveLucky := false
	for _, m := range pairings {
		info1, ok1 := infoOf[m.Entry1]
		info2, ok2 := infoOf[m.Entry2]
		if !ok1 || !ok2 {
			continue
		}

		var winner, loser league.Standing
		var winPoints, losePoints int
		switch m.Winner() {
		case 1:
			winner, winPoints = info1, m.Entry1Points
			loser, losePoints = info2, m.Entry2Points
		case 2:
			winner, winPoints = info2, m.Entry2Points
			loser, losePoints = info1, m.Entry1Points
		default:
			continue
		}

		if !haveLucky || winPoints < lucky.Points {
			lucky = MatchExtreme{Manager: winner.PlayerName, Points: winPoints}
			haveLucky = true
		}
		if losePoints > unlucky.Points {
			unlucky = MatchExtreme{Manager: loser.PlayerName, Points: losePoints}
		}
	}
	return lucky, unlucky
}

// ownershipRows builds the top of the effective-ownership leaderboard,
// ordered by weight with ties by element id.
func ownershipRows(owned map[int]int, counted int, catalog map[int]player.Player, clubs map[int]string) []OwnershipLine {
	rows := make([]OwnershipLine, 0, len(owned))
	for element, count := range owned {
		line := OwnershipLine{Element: element, Name: "-", Count: count}
		if p, ok := catalog[element]; ok {
			if p.WebName != "" {
				line.Name = p.WebName
			}
			line.Club = clubs[p.Club]
		}
		if counted > 0 {
			line.Percentage = math.Round(float64(count)/float64(counted)*1000) / 10
		}
		rows = append(rows, line)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Element < rows[j].Element
	})
	if len(rows) > ownershipTopN {
		rows = rows[:ownershipTopN]
	}
	return rows
}
