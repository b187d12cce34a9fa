package gameweek

import "errors"

// ErrNoCurrent means the bootstrap events carry no usable gameweek marker.
var ErrNoCurrent = errors.New("no current gameweek")

// Event is one gameweek row from the upstream bootstrap feed.
type Event struct {
	ID          int
	IsCurrent   bool
	IsNext      bool
	Finished    bool
	DataChecked bool
}

// Complete reports whether the gameweek's official data is final. The
// upstream flips Finished before bonus and league tables settle, so both
// flags must agree.
func (e Event) Complete() bool {
	return e.Finished && e.DataChecked
}

// Current resolves the active gameweek: the event flagged current, else
// the next scheduled one (pre-season), else the highest completed one
// (season already wrapped up).
func Current(events []Event) (int, error) {
	for _, e := range events {
		if e.IsCurrent {
			return e.ID, nil
		}
	}
	for _, e := range events {
		if e.IsNext {
			return e.ID, nil
		}
	}

	best := 0
	for _, e := range events {
		if e.Complete() && e.ID > best {
			best = e.ID
		}
	}
	if best == 0 {
		return 0, ErrNoCurrent
	}
	return best, nil
}

// Find returns the event with the given id.
func Find(events []Event, id int) (Event, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}
