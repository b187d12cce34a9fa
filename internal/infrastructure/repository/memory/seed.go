package memory

import (
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
)

// SeedTeamTables flattens the base tables configured for each team league
// into storable rows, used to prime the in-memory store when the service
// runs without a database.
func SeedTeamTables(defs league.Definitions) []snapshot.TeamTable {
	var tables []snapshot.TeamTable
	for _, l := range defs.TeamLeagues {
		for gw, points := range l.BaseTables {
			tables = append(tables, snapshot.TeamTable{
				LeagueKey: l.Key,
				Gameweek:  gw,
				Points:    points,
			})
		}
	}
	return tables
}
