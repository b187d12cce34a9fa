package league

// ClassicRow is one row of an official classic league table, taken from
// upstream as-is with no live recomputation.
type ClassicRow struct {
	EntryID    int
	PlayerName string
	TeamName   string
	Rank       int
	LastRank   int
	Total      int
	EventTotal int
}

// RankChange is positive when the row moved up since the last gameweek.
// Rows upstream has never ranked before report no movement.
func (r ClassicRow) RankChange() int {
	if r.LastRank == 0 {
		return 0
	}
	return r.LastRank - r.Rank
}

// WithinCutoff reports whether the row sits inside the qualification
// places. A zero cutoff disables the marker.
func (r ClassicRow) WithinCutoff(cutoff int) bool {
	return cutoff > 0 && r.Rank > 0 && r.Rank <= cutoff
}
