package scoring

import (
	"github.com/rabsht/fpl-h2h/internal/domain/entry"
	"github.com/rabsht/fpl-h2h/internal/domain/fixture"
	"github.com/rabsht/fpl-h2h/internal/domain/player"
)

// Captaincy carries the multipliers resolved for the captain and vice
// slots. Exactly one of three shapes comes back: the captain holds the
// full multiplier, the vice inherits it after a definite captain
// no-show, or both stay at 1x while the captain's match is pending.
type Captaincy struct {
	CaptainMultiplier int
	ViceMultiplier    int
	UsedVice          bool
	Pending           bool
}

// ResolveCaptaincy decides the effective captain multiplier for one
// manager. The full multiplier is 2, or 3 under a triple captain chip in
// leagues that honor it. A captain with zero minutes whose club is all
// resolved scores nothing and promotes the vice at the full multiplier;
// an unresolved captain is provisionally held at 1x until their match
// settles the question. There is no tertiary promotion.
func ResolveCaptaincy(picks entry.Picks, catalog map[int]player.Player, stats Stats, tracker *fixture.Tracker, rules Rules) Captaincy {
	full := fullMultiplier(picks, rules)

	captain, ok := picks.Captain()
	if !ok {
		return Captaincy{CaptainMultiplier: 1, ViceMultiplier: 1}
	}

	if stats.Played(captain.Element) {
		return Captaincy{CaptainMultiplier: full, ViceMultiplier: 1}
	}
	if tracker.AllResolved(catalog[captain.Element].Club) {
		return Captaincy{CaptainMultiplier: 0, ViceMultiplier: full, UsedVice: true}
	}
	return Captaincy{CaptainMultiplier: 1, ViceMultiplier: 1, Pending: true}
}

// fullMultiplier is the captain multiplier the chip and league allow.
func fullMultiplier(picks entry.Picks, rules Rules) int {
	if picks.ActiveChip == entry.ChipTripleCaptain && rules.TripleCaptainCap >= 3 {
		return 3
	}
	return 2
}
