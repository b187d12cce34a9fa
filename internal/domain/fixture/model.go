package fixture

import "time"

// Fixture pairs two clubs for one gameweek. A nil kickoff time is the
// postponement signal; the feed carries no explicit postponed flag.
type Fixture struct {
	ID                  int
	Event               int
	HomeClub            int
	AwayClub            int
	Started             bool
	Finished            bool
	FinishedProvisional bool
	KickoffAt           *time.Time
}

// Postponed reports whether the fixture has been pulled from the schedule.
func (f Fixture) Postponed() bool {
	return f.KickoffAt == nil
}

// Resolved reports whether the fixture no longer blocks scoring decisions:
// it has kicked off, or it will not be played this gameweek.
func (f Fixture) Resolved() bool {
	return f.Started || f.Postponed()
}

// InPlay reports whether the fixture is currently being played. The
// provisional flag flips at the final whistle, before official data lands,
// and already takes the fixture out of play.
func (f Fixture) InPlay() bool {
	return f.Started && !f.Finished && !f.FinishedProvisional
}

// AllFinished reports whether every fixture of the round has at least a
// provisional final whistle. An empty round is not finished.
func AllFinished(fixtures []Fixture) bool {
	if len(fixtures) == 0 {
		return false
	}
	for _, f := range fixtures {
		if !f.Finished && !f.FinishedProvisional {
			return false
		}
	}
	return true
}

// AnyInPlay reports whether at least one fixture of the round is being
// played right now.
func AnyInPlay(fixtures []Fixture) bool {
	for _, f := range fixtures {
		if f.InPlay() {
			return true
		}
	}
	return false
}
