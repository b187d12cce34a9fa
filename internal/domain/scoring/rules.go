package scoring

import "fmt"

// PointSystem selects how a league turns gameweek scores into a table.
type PointSystem string

const (
	// PointSystemH2HProjected plays head-to-head matches on live computed
	// scores and awards 3/1/0 league points on top of a carried base.
	PointSystemH2HProjected PointSystem = "h2h-projected"
	// PointSystemH2HOfficial sums the upstream's own head-to-head match
	// points without recomputing live scores.
	PointSystemH2HOfficial PointSystem = "official-h2h-total"
	// PointSystemClassic ranks entries by cumulative official score.
	PointSystemClassic PointSystem = "classic-official"
)

// Rules parameterizes one league's scoring variant. The same engine runs
// every league; only this record differs between them.
type Rules struct {
	TeamSize               int
	TripleCaptainCap       int
	PointSystem            PointSystem
	BenchBoostEnabled      bool
	BonusProjectionEnabled bool
}

// DefaultRules is the standard individual head-to-head ruleset.
func DefaultRules() Rules {
	return Rules{
		TeamSize:               1,
		TripleCaptainCap:       3,
		PointSystem:            PointSystemH2HProjected,
		BenchBoostEnabled:      true,
		BonusProjectionEnabled: true,
	}
}

func (r Rules) Validate() error {
	if r.TeamSize < 1 {
		return fmt.Errorf("team size must be at least 1")
	}
	if r.TripleCaptainCap != 2 && r.TripleCaptainCap != 3 {
		return fmt.Errorf("triple captain cap must be 2 or 3, got %d", r.TripleCaptainCap)
	}
	switch r.PointSystem {
	case PointSystemH2HProjected, PointSystemH2HOfficial, PointSystemClassic:
	default:
		return fmt.Errorf("unknown point system: %s", r.PointSystem)
	}
	return nil
}
