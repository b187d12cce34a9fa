package entry

// Chip is a limited-use modifier a manager can activate for one gameweek.
type Chip string

const (
	ChipNone          Chip = ""
	ChipWildcard      Chip = "wildcard"
	ChipFreeHit       Chip = "freehit"
	ChipBenchBoost    Chip = "bboost"
	ChipTripleCaptain Chip = "3xc"
	ChipManager       Chip = "manager"
)

// Label returns the display name used on dashboards. Unknown chip codes
// pass through unchanged so a new upstream chip degrades gracefully.
func (c Chip) Label() string {
	switch c {
	case ChipNone:
		return ""
	case ChipWildcard:
		return "Wildcard"
	case ChipFreeHit:
		return "Free Hit"
	case ChipBenchBoost:
		return "Bench Boost"
	case ChipTripleCaptain:
		return "Triple Captain"
	case ChipManager:
		return "Assistant Manager"
	default:
		return string(c)
	}
}

// Entry is one manager's registration in the game.
type Entry struct {
	ID         int
	PlayerName string
	TeamName   string
}

// Pick is one slot of a manager's gameweek selection. Positions 1-11 are
// the starting lineup in formation order, 12-15 the bench in priority
// order. Position 16 appears only when the assistant chip is active.
type Pick struct {
	Element       int
	Position      int
	Multiplier    int
	IsCaptain     bool
	IsViceCaptain bool
}

// Picks is a manager's complete selection for one gameweek.
type Picks struct {
	ActiveChip     Chip
	TransferCost   int
	OfficialPoints int
	OverallRank    int
	List           []Pick
}

// Starters returns the picks forming the starting lineup, in squad order.
func (p Picks) Starters() []Pick {
	return p.slice(1, 11)
}

// Bench returns the bench picks in priority order.
func (p Picks) Bench() []Pick {
	return p.slice(12, 15)
}

// AssistantPick returns the assistant manager pick when the chip is active.
func (p Picks) AssistantPick() (Pick, bool) {
	for _, pick := range p.List {
		if pick.Position == 16 {
			return pick, true
		}
	}
	return Pick{}, false
}

// Captain returns the pick flagged captain.
func (p Picks) Captain() (Pick, bool) {
	for _, pick := range p.List {
		if pick.IsCaptain {
			return pick, true
		}
	}
	return Pick{}, false
}

// ViceCaptain returns the pick flagged vice-captain.
func (p Picks) ViceCaptain() (Pick, bool) {
	for _, pick := range p.List {
		if pick.IsViceCaptain {
			return pick, true
		}
	}
	return Pick{}, false
}

func (p Picks) slice(from, to int) []Pick {
	out := make([]Pick, 0, to-from+1)
	for _, pick := range p.List {
		if pick.Position >= from && pick.Position <= to {
			out = append(out, pick)
		}
	}
	return out
}

// HistoryRow is one gameweek line of a manager's season history.
type HistoryRow struct {
	Event         int
	Points        int
	TransfersCost int
	OverallRank   int
}
