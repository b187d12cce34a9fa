package scoring

// PlayerStat is one player's live line for a gameweek. TotalPoints always
// includes whatever Bonus currently says; a projection refresh backs the
// old bonus out before injecting the new one, so the pair stays
// consistent no matter how often it runs. FixtureID is the first fixture
// from the player's explain data, the one their gameweek BPS is credited
// to.
type PlayerStat struct {
	Minutes     int
	TotalPoints int
	BPS         int
	Bonus       int
	FixtureID   int
}

// Stats indexes live player lines by element id. Missing players read as
// a zero line; absent upstream data means zero, never a crash.
type Stats map[int]*PlayerStat

// Line returns the player's stat line, or a zero line when unknown.
func (s Stats) Line(element int) PlayerStat {
	if st, ok := s[element]; ok {
		return *st
	}
	return PlayerStat{}
}

// Points returns the player's current total points.
func (s Stats) Points(element int) int {
	return s.Line(element).TotalPoints
}

// Played reports whether the player has registered minutes.
func (s Stats) Played(element int) bool {
	return s.Line(element).Minutes > 0
}

// Clone returns an independent copy. Callers that project bonus must
// clone first so shared stat sets stay untouched.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for element, st := range s {
		if st == nil {
			continue
		}
		line := *st
		out[element] = &line
	}
	return out
}
