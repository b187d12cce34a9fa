package league

import (
	"fmt"
	"sort"

	"github.com/rabsht/fpl-h2h/internal/domain/scoring"
)

// Table maps roster team names to accumulated league points.
type Table map[string]int

// Rank returns the 1-based position of a team in the table, ordered by
// points descending with ties broken by name. Unknown teams rank last.
func (t Table) Rank(name string) int {
	type row struct {
		name   string
		points int
	}
	rows := make([]row, 0, len(t))
	for n, p := range t {
		rows = append(rows, row{name: n, points: p})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].points != rows[j].points {
			return rows[i].points > rows[j].points
		}
		return rows[i].name < rows[j].name
	})
	for i, r := range rows {
		if r.name == name {
			return i + 1
		}
	}
	return len(rows)
}

// Individual is the head-to-head league tracked manager by manager.
type Individual struct {
	ID       int
	Name     string
	Excluded []string
}

// Excludes reports whether a manager name is hidden from every view.
func (l Individual) Excludes(playerName string) bool {
	for _, name := range l.Excluded {
		if name == playerName {
			return true
		}
	}
	return false
}

// RosterTeam groups the managers that score as one team.
type RosterTeam struct {
	Name    string
	Entries []int
}

// TeamLeague is a head-to-head league where fixed rosters of managers
// compete as teams under their own scoring rules.
type TeamLeague struct {
	Key        string
	ID         int
	Name       string
	Rules      scoring.Rules
	Teams      []RosterTeam
	BaseTables map[int]Table
}

func (l TeamLeague) Validate() error {
	if l.Key == "" {
		return fmt.Errorf("team league key is required")
	}
	if l.ID <= 0 {
		return fmt.Errorf("league %s: upstream league id is required", l.Key)
	}
	if err := l.Rules.Validate(); err != nil {
		return fmt.Errorf("league %s: %w", l.Key, err)
	}

	seenTeams := make(map[string]struct{}, len(l.Teams))
	seenEntries := make(map[int]string)
	for _, team := range l.Teams {
		if _, ok := seenTeams[team.Name]; ok {
			return fmt.Errorf("league %s: duplicate team %q", l.Key, team.Name)
		}
		seenTeams[team.Name] = struct{}{}

		if len(team.Entries) != l.Rules.TeamSize {
			return fmt.Errorf("league %s: team %q has %d entries, want %d", l.Key, team.Name, len(team.Entries), l.Rules.TeamSize)
		}
		for _, entryID := range team.Entries {
			if owner, ok := seenEntries[entryID]; ok {
				return fmt.Errorf("league %s: entry %d listed for both %q and %q", l.Key, entryID, owner, team.Name)
			}
			seenEntries[entryID] = team.Name
		}
	}

	return nil
}

// TeamOf resolves the roster team a manager entry belongs to.
func (l TeamLeague) TeamOf(entryID int) (string, bool) {
	for _, team := range l.Teams {
		for _, id := range team.Entries {
			if id == entryID {
				return team.Name, true
			}
		}
	}
	return "", false
}

// EntryIDs returns every manager entry in the league, in roster order.
func (l TeamLeague) EntryIDs() []int {
	ids := make([]int, 0, len(l.Teams)*l.Rules.TeamSize)
	for _, team := range l.Teams {
		ids = append(ids, team.Entries...)
	}
	return ids
}

// BaseTable picks the standings to build on when the live gameweek is
// projected: the configured table for the highest gameweek not after the
// requested one, falling back to the earliest configured table.
func (l TeamLeague) BaseTable(gameweek int) (Table, int, bool) {
	bestGW, earliestGW := 0, 0
	for gw := range l.BaseTables {
		if gw <= gameweek && gw > bestGW {
			bestGW = gw
		}
		if earliestGW == 0 || gw < earliestGW {
			earliestGW = gw
		}
	}
	if bestGW > 0 {
		return l.BaseTables[bestGW], bestGW, true
	}
	if earliestGW > 0 {
		return l.BaseTables[earliestGW], earliestGW, true
	}
	return nil, 0, false
}

// Classic is an official classic league shown without live projection.
type Classic struct {
	ID     int
	Name   string
	Cutoff int
}

// Definitions is the full set of leagues this deployment serves.
type Definitions struct {
	Individual  Individual
	TeamLeagues []TeamLeague
	Classics    []Classic
}

func (d Definitions) Validate() error {
	if d.Individual.ID <= 0 {
		return fmt.Errorf("individual league id is required")
	}

	seen := make(map[string]struct{}, len(d.TeamLeagues))
	for _, l := range d.TeamLeagues {
		if _, ok := seen[l.Key]; ok {
			return fmt.Errorf("duplicate team league key %q", l.Key)
		}
		seen[l.Key] = struct{}{}
		if err := l.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// TeamLeagueByKey looks up a team league by its configuration key.
func (d Definitions) TeamLeagueByKey(key string) (TeamLeague, bool) {
	for _, l := range d.TeamLeagues {
		if l.Key == key {
			return l, true
		}
	}
	return TeamLeague{}, false
}

// ClassicByID looks up a classic league by its upstream identifier.
func (d Definitions) ClassicByID(id int) (Classic, bool) {
	for _, l := range d.Classics {
		if l.ID == id {
			return l, true
		}
	}
	return Classic{}, false
}
