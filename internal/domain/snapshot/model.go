package snapshot

import (
	"github.com/rabsht/fpl-h2h/internal/domain/league"
)

// Standing is one persisted head-to-head table row for a gameweek.
// Rows are written whenever a gameweek is live or finished and read back
// the following gameweek to compute rank movement.
type Standing struct {
	Gameweek       int
	EntryID        int
	PlayerName     string
	TeamName       string
	Rank           int
	LeaguePoints   int
	GameweekPoints int
	TotalPoints    int
	OverallRank    int
	Result         league.Result
	Opponent       string
	Captain        string
	Chip           string
}

// FixtureResult is a settled head-to-head pairing for a gameweek.
// Winner is 1 or 2 for the corresponding entry, 0 for a draw.
type FixtureResult struct {
	Gameweek     int
	Entry1       int
	Entry1Name   string
	Entry1Points int
	Entry2       int
	Entry2Name   string
	Entry2Points int
	Winner       int
}

// TeamTable is a persisted team-league table for one gameweek. It becomes
// the base the next gameweek's projection builds on.
type TeamTable struct {
	LeagueKey string
	Gameweek  int
	Points    league.Table
}

// Ranks indexes persisted standings by entry ID. Rows without a rank are
// skipped so they read as no-history downstream.
func Ranks(rows []Standing) map[int]int {
	ranks := make(map[int]int, len(rows))
	for _, row := range rows {
		if row.Rank > 0 {
			ranks[row.EntryID] = row.Rank
		}
	}
	return ranks
}

// RankDelta compares a current rank against the previous gameweek's
// persisted rank. Positive means the entry moved up. Entries with no
// history report zero movement.
func RankDelta(previous map[int]int, entryID, currentRank int) int {
	prev, ok := previous[entryID]
	if !ok || currentRank <= 0 {
		return 0
	}
	return prev - currentRank
}
