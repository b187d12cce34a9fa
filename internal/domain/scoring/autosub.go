package scoring

import (
	"github.com/rabsht/fpl-h2h/internal/domain/entry"
	"github.com/rabsht/fpl-h2h/internal/domain/fixture"
	"github.com/rabsht/fpl-h2h/internal/domain/player"
)

// Substitution pairs a starter who made way with the bench player who
// replaced them.
type Substitution struct {
	Out int
	In  int
}

// SubResult is the outcome of simulating auto-substitutions for one
// manager ahead of the upstream's own finalization. Every consumer works
// from this one result: the score calculator takes Points, the unique
// player comparison takes FinalXI, dashboards take the rest.
type SubResult struct {
	// FinalXI holds the element ids on the pitch after substitutions.
	// Under an active bench boost it holds all fielded picks.
	FinalXI []int
	// Points is the total contributed by bench players subbed on.
	Points int
	// Substitutions lists accepted swaps in the order they were made.
	Substitutions []Substitution
	// Reserved lists bench ids held back for a starter whose replacement
	// depends on a match that has not kicked off yet. A reserved player
	// contributes nothing now and cannot cover a different starter.
	Reserved []int
}

// SimulateSubs runs the bench-substitution algorithm for one manager.
// Starters with zero minutes whose club fixtures are all resolved are
// covered from the bench in priority order, goalkeepers only by
// goalkeepers, and only when the resulting formation stays legal. The
// simulation must be re-run on every refresh: reservations resolve as
// matches kick off and finish.
func SimulateSubs(picks entry.Picks, catalog map[int]player.Player, stats Stats, tracker *fixture.Tracker, rules Rules) SubResult {
	if picks.ActiveChip == entry.ChipBenchBoost && rules.BenchBoostEnabled {
		// The whole squad is fielded; there is no bench to draw from.
		all := append(picks.Starters(), picks.Bench()...)
		xi := make([]int, 0, len(all))
		for _, p := range all {
			xi = append(xi, p.Element)
		}
		return SubResult{FinalXI: xi}
	}

	starters := picks.Starters()
	bench := picks.Bench()

	positionOf := func(element int) (player.Position, bool) {
		p, ok := catalog[element]
		if !ok {
			return "", false
		}
		return p.Position, true
	}
	clubResolved := func(element int) bool {
		return tracker.AllResolved(catalog[element].Club)
	}

	counts := make(map[player.Position]int, 4)
	for _, s := range starters {
		if pos, ok := positionOf(s.Element); ok {
			counts[pos]++
		}
	}

	result := SubResult{FinalXI: make([]int, 0, len(starters))}
	replaced := make(map[int]bool)
	consumed := make(map[int]bool)

	for _, s := range starters {
		if stats.Line(s.Element).Minutes > 0 || !clubResolved(s.Element) {
			continue
		}
		sPos, ok := positionOf(s.Element)
		if !ok {
			continue
		}

		for _, b := range bench {
			if consumed[b.Element] {
				continue
			}
			bPos, ok := positionOf(b.Element)
			if !ok {
				continue
			}
			if (sPos == player.PositionGoalkeeper) != (bPos == player.PositionGoalkeeper) {
				continue
			}

			line := stats.Line(b.Element)
			if line.Minutes == 0 {
				if !clubResolved(b.Element) {
					// On hold pending their own kickoff: the slot is
					// spent for this scan and no other starter may
					// claim this bench player.
					consumed[b.Element] = true
					result.Reserved = append(result.Reserved, b.Element)
					break
				}
				// Did not play and never will this gameweek.
				continue
			}

			counts[sPos]--
			counts[bPos]++
			if !formationLegal(counts) {
				counts[sPos]++
				counts[bPos]--
				continue
			}

			consumed[b.Element] = true
			replaced[s.Element] = true
			result.Points += line.TotalPoints
			result.Substitutions = append(result.Substitutions, Substitution{Out: s.Element, In: b.Element})
			break
		}
	}

	for _, s := range starters {
		if !replaced[s.Element] {
			result.FinalXI = append(result.FinalXI, s.Element)
		}
	}
	for _, sub := range result.Substitutions {
		result.FinalXI = append(result.FinalXI, sub.In)
	}

	return result
}

// formationLegal checks the only lineups the game accepts: exactly one
// goalkeeper, 3-5 defenders, 2-5 midfielders, 1-3 forwards.
func formationLegal(counts map[player.Position]int) bool {
	g := counts[player.PositionGoalkeeper]
	d := counts[player.PositionDefender]
	m := counts[player.PositionMidfielder]
	f := counts[player.PositionForward]
	return g == 1 && d >= 3 && d <= 5 && m >= 2 && m <= 5 && f >= 1 && f <= 3
}
