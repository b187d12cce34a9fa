package scoring

import (
	"github.com/rabsht/fpl-h2h/internal/domain/entry"
	"github.com/rabsht/fpl-h2h/internal/domain/fixture"
	"github.com/rabsht/fpl-h2h/internal/domain/player"
)

// Score is one manager's computed live line for a gameweek.
type Score struct {
	FieldPoints  int
	SubPoints    int
	TransferCost int
	Total        int
	Captaincy    Captaincy
	Subs         SubResult
}

// LiveScore composes the fielded squad's points, the captaincy
// multiplier, simulated substitutions, and the transfer deduction into
// one live total. Deterministic for a fixed upstream snapshot. Under an
// active bench boost all fifteen picks score at 1x, captaincy still
// applies, and there are no substitutions to simulate.
func LiveScore(picks entry.Picks, catalog map[int]player.Player, stats Stats, tracker *fixture.Tracker, rules Rules) Score {
	captaincy := ResolveCaptaincy(picks, catalog, stats, tracker, rules)
	subs := SimulateSubs(picks, catalog, stats, tracker, rules)

	fielded := picks.Starters()
	if picks.ActiveChip == entry.ChipBenchBoost && rules.BenchBoostEnabled {
		fielded = append(fielded, picks.Bench()...)
	}
	if assistant, ok := picks.AssistantPick(); ok {
		fielded = append(fielded, assistant)
	}

	field := 0
	for _, p := range fielded {
		mult := 1
		switch {
		case p.IsCaptain:
			mult = captaincy.CaptainMultiplier
		case p.IsViceCaptain:
			mult = captaincy.ViceMultiplier
		}
		field += mult * stats.Points(p.Element)
	}

	return Score{
		FieldPoints:  field,
		SubPoints:    subs.Points,
		TransferCost: picks.TransferCost,
		Total:        field + subs.Points - picks.TransferCost,
		Captaincy:    captaincy,
		Subs:         subs,
	}
}

// OfficialPicksTotal scores a settled gameweek from the picks as
// selected: each fielded pick at its official multiplier, with the
// triple captain capped at the league's limit, minus the transfer
// deduction. No substitutions and no projection; the stat lines are
// expected to be final.
func OfficialPicksTotal(picks entry.Picks, stats Stats, rules Rules) int {
	fielded := picks.Starters()
	if picks.ActiveChip == entry.ChipBenchBoost && rules.BenchBoostEnabled {
		fielded = append(fielded, picks.Bench()...)
	}

	total := 0
	for _, p := range fielded {
		mult := p.Multiplier
		if mult > rules.TripleCaptainCap {
			mult = rules.TripleCaptainCap
		}
		total += mult * stats.Points(p.Element)
	}
	return total - picks.TransferCost
}

// FieldedWeights builds the multiset of fielded players used for
// unique-player comparisons in one-on-one matches: every member of the
// final XI counts once and the multiplier holder counts extra, so a
// shared player captained by only one side still shows as a
// differential. While the captain's match is pending the weight
// anticipates the full multiplier. The holder earns no weight after
// being substituted out.
func FieldedWeights(picks entry.Picks, subs SubResult, captaincy Captaincy, rules Rules) map[int]int {
	weights := make(map[int]int, len(subs.FinalXI))
	for _, element := range subs.FinalXI {
		weights[element]++
	}

	holder, ok := picks.Captain()
	if captaincy.UsedVice {
		holder, ok = picks.ViceCaptain()
	}
	if ok && weights[holder.Element] > 0 {
		weights[holder.Element] += fullMultiplier(picks, rules) - 1
	}
	return weights
}

// PlayerState classifies a fielded player for match detail displays.
type PlayerState string

const (
	// StatePlaying marks a player with minutes in a match still running.
	StatePlaying PlayerState = "playing"
	// StatePlayed marks a player with minutes whose match is over.
	StatePlayed PlayerState = "played"
	// StatePending marks a player yet to register any minutes.
	StatePending PlayerState = "pending"
)

// StateOf reports the display state for one player.
func StateOf(element int, catalog map[int]player.Player, stats Stats, tracker *fixture.Tracker) PlayerState {
	if stats.Line(element).Minutes == 0 {
		return StatePending
	}
	if tracker.AnyInPlay(catalog[element].Club) {
		return StatePlaying
	}
	return StatePlayed
}
