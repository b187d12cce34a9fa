package league

import (
	"fmt"
	"sort"

	"github.com/rabsht/fpl-h2h/internal/domain/fixture"
	"github.com/rabsht/fpl-h2h/internal/domain/player"
	"github.com/rabsht/fpl-h2h/internal/domain/scoring"
)

// ManagerScore is one manager's live contribution to a roster team.
// FinalXI holds the post-substitution element ids used for fielded-player
// comparisons.
type ManagerScore struct {
	EntryID int
	Name    string
	Points  int
	Captain string
	FinalXI []int
	NoData  bool
}

// TeamScore aggregates a roster team's managers for the gameweek.
type TeamScore struct {
	Team     string
	Points   int
	Captains []string
	Fielded  map[int]int
	Managers []ManagerScore
}

// SumTeams folds per-manager live scores into per-team totals, keeping
// roster order. Managers absent from byEntry contribute a no-data line.
func SumTeams(l TeamLeague, byEntry map[int]ManagerScore) map[string]TeamScore {
	teams := make(map[string]TeamScore, len(l.Teams))
	for _, team := range l.Teams {
		score := TeamScore{
			Team:     team.Name,
			Captains: make([]string, 0, len(team.Entries)),
			Fielded:  make(map[int]int),
			Managers: make([]ManagerScore, 0, len(team.Entries)),
		}
		for _, entryID := range team.Entries {
			manager, ok := byEntry[entryID]
			if !ok {
				manager = ManagerScore{EntryID: entryID, Captain: "-", NoData: true}
			}
			score.Points += manager.Points
			score.Captains = append(score.Captains, manager.Captain)
			for _, element := range manager.FinalXI {
				score.Fielded[element]++
			}
			score.Managers = append(score.Managers, manager)
		}
		teams[team.Name] = score
	}
	return teams
}

// CollapseCaptains merges duplicate captain names into one entry with a
// multiplier suffix, keeping first-appearance order.
func CollapseCaptains(names []string) []string {
	counts := make(map[string]int, len(names))
	order := make([]string, 0, len(names))
	for _, name := range names {
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	collapsed := make([]string, 0, len(order))
	for _, name := range order {
		if n := counts[name]; n > 1 {
			collapsed = append(collapsed, fmt.Sprintf("%s x%d", name, n))
		} else {
			collapsed = append(collapsed, name)
		}
	}
	return collapsed
}

// TeamPairing is one team-level head-to-head derived from the managers'
// individual pairings.
type TeamPairing struct {
	Team1 string
	Team2 string
}

// MapPairings collapses manager-level matches onto roster teams. The
// three managers of a team all face the same opposing roster, so the
// first pairing seen wins and the rest are duplicates. Matches with an
// unmapped side, or both sides on one roster, are dropped.
func MapPairings(matches []Match, l TeamLeague) []TeamPairing {
	paired := make(map[string]struct{}, len(l.Teams))
	pairings := make([]TeamPairing, 0, len(l.Teams)/2)
	for _, m := range matches {
		team1, ok1 := l.TeamOf(m.Entry1)
		team2, ok2 := l.TeamOf(m.Entry2)
		if !ok1 || !ok2 || team1 == team2 {
			continue
		}
		if _, done := paired[team1]; done {
			continue
		}
		if _, done := paired[team2]; done {
			continue
		}
		paired[team1] = struct{}{}
		paired[team2] = struct{}{}
		pairings = append(pairings, TeamPairing{Team1: team1, Team2: team2})
	}
	return pairings
}

// UniquePlayer is a differential pick between two opposing rosters: a
// player more of one side's managers fielded than the other's.
type UniquePlayer struct {
	Element int
	Name    string
	Count   int
	Points  int
	Minutes int
	State   scoring.PlayerState
}

// UniquePlayers compares two fielded-count multisets and returns each
// side's surplus picks, highest points first.
func UniquePlayers(fielded1, fielded2 map[int]int, catalog map[int]player.Player, stats scoring.Stats, tracker *fixture.Tracker) ([]UniquePlayer, []UniquePlayer) {
	elements := make(map[int]struct{}, len(fielded1)+len(fielded2))
	for element := range fielded1 {
		elements[element] = struct{}{}
	}
	for element := range fielded2 {
		elements[element] = struct{}{}
	}

	var side1, side2 []UniquePlayer
	for element := range elements {
		diff := fielded1[element] - fielded2[element]
		if diff == 0 {
			continue
		}
		count := diff
		if count < 0 {
			count = -count
		}
		line := stats.Line(element)
		unique := UniquePlayer{
			Element: element,
			Count:   count,
			Points:  line.TotalPoints * count,
			Minutes: line.Minutes,
			State:   scoring.StateOf(element, catalog, stats, tracker),
		}
		if p, ok := catalog[element]; ok {
			unique.Name = p.WebName
		}
		if diff > 0 {
			side1 = append(side1, unique)
		} else {
			side2 = append(side2, unique)
		}
	}

	sortUnique(side1)
	sortUnique(side2)
	return side1, side2
}

func sortUnique(players []UniquePlayer) {
	sort.Slice(players, func(i, j int) bool {
		if players[i].Points != players[j].Points {
			return players[i].Points > players[j].Points
		}
		return players[i].Element < players[j].Element
	})
}

// TeamMatch is a scored team-level head-to-head.
type TeamMatch struct {
	Team1         string
	Team1Points   int
	Team1Captains []string
	Team1Unique   []UniquePlayer
	Team2         string
	Team2Points   int
	Team2Captains []string
	Team2Unique   []UniquePlayer
	Winner        int
	PointsDiff    int
}

// BuildTeamMatches scores each pairing from the summed team outputs and
// attaches collapsed captains and unique-player breakdowns.
func BuildTeamMatches(pairings []TeamPairing, scores map[string]TeamScore, catalog map[int]player.Player, stats scoring.Stats, tracker *fixture.Tracker) []TeamMatch {
	matches := make([]TeamMatch, 0, len(pairings))
	for _, pairing := range pairings {
		score1 := scores[pairing.Team1]
		score2 := scores[pairing.Team2]

		match := TeamMatch{
			Team1:         pairing.Team1,
			Team1Points:   score1.Points,
			Team1Captains: CollapseCaptains(score1.Captains),
			Team2:         pairing.Team2,
			Team2Points:   score2.Points,
			Team2Captains: CollapseCaptains(score2.Captains),
		}
		switch {
		case score1.Points > score2.Points:
			match.Winner = 1
			match.PointsDiff = score1.Points - score2.Points
		case score2.Points > score1.Points:
			match.Winner = 2
			match.PointsDiff = score2.Points - score1.Points
		}
		match.Team1Unique, match.Team2Unique = UniquePlayers(score1.Fielded, score2.Fielded, catalog, stats, tracker)

		matches = append(matches, match)
	}
	return matches
}

// TeamResults derives each roster team's W/D/L from the scored matches.
func TeamResults(matches []TeamMatch) map[string]Result {
	results := make(map[string]Result, len(matches)*2)
	for _, m := range matches {
		switch m.Winner {
		case 1:
			results[m.Team1] = ResultWin
			results[m.Team2] = ResultLoss
		case 2:
			results[m.Team1] = ResultLoss
			results[m.Team2] = ResultWin
		default:
			results[m.Team1] = ResultDraw
			results[m.Team2] = ResultDraw
		}
	}
	return results
}

// TeamStanding is one row of a team league table.
type TeamStanding struct {
	Team           string
	BasePoints     int
	LeaguePoints   int
	GameweekPoints int
	Captains       []string
	Result         Result
	Rank           int
	PreviousRank   int
	RankDelta      int
}

// ProjectTeamStandings builds the live table for leagues that add 3/1/0
// match outcomes to a carried-over base table. Rows are ordered by
// league points then live gameweek points, and the rank delta compares
// against each team's position in the base table.
func ProjectTeamStandings(l TeamLeague, base Table, results map[string]Result, scores map[string]TeamScore) []TeamStanding {
	rows := make([]TeamStanding, 0, len(l.Teams))
	for _, team := range l.Teams {
		result, ok := results[team.Name]
		if !ok {
			result = ResultNone
		}
		score := scores[team.Name]
		rows = append(rows, TeamStanding{
			Team:           team.Name,
			BasePoints:     base[team.Name],
			LeaguePoints:   base[team.Name] + result.LeaguePoints(),
			GameweekPoints: score.Points,
			Captains:       CollapseCaptains(score.Captains),
			Result:         result,
			PreviousRank:   base.Rank(team.Name),
		})
	}

	rankTeamStandings(rows)
	for i := range rows {
		rows[i].RankDelta = rows[i].PreviousRank - rows[i].Rank
	}
	return rows
}

// OfficialTeamStandings builds the table for leagues ranked by the sum
// of their managers' official head-to-head totals, with no projection
// and no rank movement.
func OfficialTeamStandings(l TeamLeague, totals map[int]int, scores map[string]TeamScore) []TeamStanding {
	rows := make([]TeamStanding, 0, len(l.Teams))
	for _, team := range l.Teams {
		leaguePoints := 0
		for _, entryID := range team.Entries {
			leaguePoints += totals[entryID]
		}
		score := scores[team.Name]
		rows = append(rows, TeamStanding{
			Team:           team.Name,
			LeaguePoints:   leaguePoints,
			GameweekPoints: score.Points,
			Captains:       CollapseCaptains(score.Captains),
			Result:         ResultNone,
		})
	}

	rankTeamStandings(rows)
	return rows
}

func rankTeamStandings(rows []TeamStanding) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].LeaguePoints != rows[j].LeaguePoints {
			return rows[i].LeaguePoints > rows[j].LeaguePoints
		}
		return rows[i].GameweekPoints > rows[j].GameweekPoints
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

// Honors names the best team and best manager of the gameweek. Ties are
// kept as multiple holders.
type Honors struct {
	Teams          []string
	TeamPoints     int
	Managers       []string
	ManagerTeams   []string
	ManagerEntries []int
	ManagerPoints  int
}

// WeeklyHonors scans the summed team outputs for the top team total and
// the top single-manager score. Managers with no data are skipped.
func WeeklyHonors(scores map[string]TeamScore) Honors {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	var honors Honors
	first := true
	for _, name := range names {
		score := scores[name]
		switch {
		case first || score.Points > honors.TeamPoints:
			honors.Teams = []string{name}
			honors.TeamPoints = score.Points
		case score.Points == honors.TeamPoints:
			honors.Teams = append(honors.Teams, name)
		}
		first = false
	}

	bestSet := false
	for _, name := range names {
		for _, manager := range scores[name].Managers {
			if manager.NoData {
				continue
			}
			switch {
			case !bestSet || manager.Points > honors.ManagerPoints:
				honors.Managers = []string{manager.Name}
				honors.ManagerTeams = []string{name}
				honors.ManagerEntries = []int{manager.EntryID}
				honors.ManagerPoints = manager.Points
				bestSet = true
			case manager.Points == honors.ManagerPoints:
				honors.Managers = append(honors.Managers, manager.Name)
				honors.ManagerTeams = append(honors.ManagerTeams, name)
				honors.ManagerEntries = append(honors.ManagerEntries, manager.EntryID)
			}
		}
	}

	return honors
}
