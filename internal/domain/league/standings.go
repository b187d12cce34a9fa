package league

import "sort"

// Result is the head-to-head outcome for one side of a match.
type Result string

const (
	ResultWin  Result = "W"
	ResultDraw Result = "D"
	ResultLoss Result = "L"
	ResultNone Result = "-"
)

// LeaguePoints returns the standings points a result is worth.
func (r Result) LeaguePoints() int {
	switch r {
	case ResultWin:
		return 3
	case ResultDraw:
		return 1
	default:
		return 0
	}
}

// Match is one head-to-head pairing with both sides' gameweek points.
type Match struct {
	Entry1       int
	Entry1Points int
	Entry2       int
	Entry2Points int
}

// Winner reports the leading side: 1, 2, or 0 for a level match.
func (m Match) Winner() int {
	switch {
	case m.Entry1Points > m.Entry2Points:
		return 1
	case m.Entry2Points > m.Entry1Points:
		return 2
	default:
		return 0
	}
}

// PointsDiff returns the absolute gap between the two sides.
func (m Match) PointsDiff() int {
	diff := m.Entry1Points - m.Entry2Points
	if diff < 0 {
		return -diff
	}
	return diff
}

// ResultFor returns the entry's result, or ResultNone for outsiders.
func (m Match) ResultFor(entryID int) Result {
	if entryID != m.Entry1 && entryID != m.Entry2 {
		return ResultNone
	}
	switch m.Winner() {
	case 0:
		return ResultDraw
	case 1:
		if entryID == m.Entry1 {
			return ResultWin
		}
		return ResultLoss
	default:
		if entryID == m.Entry2 {
			return ResultWin
		}
		return ResultLoss
	}
}

// Opponent returns the other side of the match for an entry.
func (m Match) Opponent(entryID int) (int, bool) {
	switch entryID {
	case m.Entry1:
		return m.Entry2, true
	case m.Entry2:
		return m.Entry1, true
	default:
		return 0, false
	}
}

// Standing is one row of an H2H league table as reported upstream,
// before the in-progress gameweek is counted.
type Standing struct {
	EntryID    int
	PlayerName string
	TeamName   string
	Rank       int
	LastRank   int
	Total      int
	PointsFor  int
}

// EntryScore is one manager's computed live output for the gameweek.
type EntryScore struct {
	Points      int
	OverallRank int
	NoData      bool
}

// LiveStanding is a standings row with the live gameweek folded in.
// ProjectedTotal adds the 3/1/0 outcome of the manager's running match
// to the carried-over total. RankDelta is filled by the caller once a
// previous-gameweek baseline is known.
type LiveStanding struct {
	Standing
	GameweekPoints int
	ProjectedTotal int
	Result         Result
	Opponent       int
	OverallRank    int
	NoData         bool
	LiveRank       int
	RankDelta      int
}

// ProjectStandings folds live match outcomes into the base standings.
// Rows are ordered by projected total, then season points scored, then
// overall rank (unranked last), and LiveRank is assigned from 1.
func ProjectStandings(base []Standing, matches []Match, scores map[int]EntryScore) []LiveStanding {
	matchOf := make(map[int]Match, len(matches)*2)
	for _, m := range matches {
		matchOf[m.Entry1] = m
		matchOf[m.Entry2] = m
	}

	rows := make([]LiveStanding, 0, len(base))
	for _, s := range base {
		row := LiveStanding{
			Standing:       s,
			ProjectedTotal: s.Total,
			Result:         ResultNone,
		}
		if score, ok := scores[s.EntryID]; ok {
			row.GameweekPoints = score.Points
			row.OverallRank = score.OverallRank
			row.NoData = score.NoData
		} else {
			row.NoData = true
		}
		if m, ok := matchOf[s.EntryID]; ok {
			row.Result = m.ResultFor(s.EntryID)
			row.ProjectedTotal += row.Result.LeaguePoints()
			if opp, ok := m.Opponent(s.EntryID); ok {
				row.Opponent = opp
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ProjectedTotal != rows[j].ProjectedTotal {
			return rows[i].ProjectedTotal > rows[j].ProjectedTotal
		}
		if rows[i].PointsFor != rows[j].PointsFor {
			return rows[i].PointsFor > rows[j].PointsFor
		}
		return rankedBefore(rows[i].OverallRank, rows[j].OverallRank)
	})
	for i := range rows {
		rows[i].LiveRank = i + 1
	}

	return rows
}

// rankedBefore orders overall ranks ascending with zero (unranked) last.
func rankedBefore(a, b int) bool {
	if a == 0 {
		return false
	}
	if b == 0 {
		return true
	}
	return a < b
}

// ScoreMatches attaches live points to upstream pairings. Pairings whose
// sides are not all in scores still appear, with zero for missing sides.
func ScoreMatches(pairings []Match, scores map[int]EntryScore) []Match {
	scored := make([]Match, 0, len(pairings))
	for _, m := range pairings {
		m.Entry1Points = scores[m.Entry1].Points
		m.Entry2Points = scores[m.Entry2].Points
		scored = append(scored, m)
	}
	return scored
}
