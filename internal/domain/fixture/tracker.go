package fixture

// Tracker answers per-club status questions for one gameweek's fixtures.
// Clubs forced postponed via configuration count as resolved even when
// the feed still lists their fixture as scheduled.
type Tracker struct {
	byClub     map[int][]Fixture
	postponed  map[int]struct{}
	anyStarted bool
}

func NewTracker(fixtures []Fixture, postponedClubs []int) *Tracker {
	t := &Tracker{
		byClub:    make(map[int][]Fixture),
		postponed: make(map[int]struct{}, len(postponedClubs)),
	}
	for _, club := range postponedClubs {
		t.postponed[club] = struct{}{}
	}
	for _, f := range fixtures {
		t.byClub[f.HomeClub] = append(t.byClub[f.HomeClub], f)
		t.byClub[f.AwayClub] = append(t.byClub[f.AwayClub], f)
		if f.Started {
			t.anyStarted = true
		}
	}
	return t
}

// HasAnyStarted reports whether at least one of the club's fixtures has
// kicked off or been postponed. A club with no fixtures at all has not
// started anything.
func (t *Tracker) HasAnyStarted(club int) bool {
	if _, ok := t.postponed[club]; ok {
		return true
	}
	for _, f := range t.byClub[club] {
		if f.Resolved() {
			return true
		}
	}
	return false
}

// AllResolved reports whether every fixture for the club has either
// kicked off or been postponed, i.e. the club's players have had every
// chance to play they will get. A club with zero fixtures this gameweek
// is resolved by definition (blank gameweek).
func (t *Tracker) AllResolved(club int) bool {
	if _, ok := t.postponed[club]; ok {
		return true
	}
	for _, f := range t.byClub[club] {
		if !f.Resolved() {
			return false
		}
	}
	return true
}

// AnyStarted reports whether any fixture in the gameweek has kicked off.
func (t *Tracker) AnyStarted() bool {
	return t.anyStarted
}

// AnyInPlay reports whether the club has a fixture currently being played.
func (t *Tracker) AnyInPlay(club int) bool {
	for _, f := range t.byClub[club] {
		if f.InPlay() {
			return true
		}
	}
	return false
}
