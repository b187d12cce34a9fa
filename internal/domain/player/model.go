package player

import "fmt"

// Position is the on-pitch role used by substitution and formation rules.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
	PositionManager    Position = "MGR"
)

// FromElementType maps the upstream element_type code to a Position.
// Code 5 is the club manager slot introduced for the assistant chip.
func FromElementType(code int) (Position, error) {
	switch code {
	case 1:
		return PositionGoalkeeper, nil
	case 2:
		return PositionDefender, nil
	case 3:
		return PositionMidfielder, nil
	case 4:
		return PositionForward, nil
	case 5:
		return PositionManager, nil
	default:
		return "", fmt.Errorf("unknown element type: %d", code)
	}
}

// Player is one catalog row from the bootstrap feed, fixed for a gameweek.
type Player struct {
	ID       int
	WebName  string
	Club     int
	Position Position
	Status   string
}

// Doubtful reports whether the upstream has flagged the player as less
// than fully available (injured, suspended, or otherwise marked).
func (p Player) Doubtful() bool {
	return p.Status != "" && p.Status != "a"
}
