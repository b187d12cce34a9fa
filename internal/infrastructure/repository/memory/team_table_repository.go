package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
)

type TeamTableRepository struct {
	mu    sync.RWMutex
	items map[string]snapshot.TeamTable
}

// NewTeamTableRepository seeds the store with the configured base tables so
// deployments without a database still have something to project from.
func NewTeamTableRepository(seed []snapshot.TeamTable) *TeamTableRepository {
	items := make(map[string]snapshot.TeamTable, len(seed))
	for _, table := range seed {
		items[teamTableKey(table.LeagueKey, table.Gameweek)] = cloneTeamTable(table)
	}

	return &TeamTableRepository{items: items}
}

func (r *TeamTableRepository) Upsert(_ context.Context, table snapshot.TeamTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[teamTableKey(table.LeagueKey, table.Gameweek)] = cloneTeamTable(table)
	return nil
}

func (r *TeamTableRepository) Get(_ context.Context, leagueKey string, gameweek int) (snapshot.TeamTable, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.items[teamTableKey(leagueKey, gameweek)]
	if !ok {
		return snapshot.TeamTable{}, false, nil
	}

	return cloneTeamTable(table), true, nil
}

func teamTableKey(leagueKey string, gameweek int) string {
	return leagueKey + "::" + strconv.Itoa(gameweek)
}

func cloneTeamTable(t snapshot.TeamTable) snapshot.TeamTable {
	copied := t
	copied.Points = make(league.Table, len(t.Points))
	for name, points := range t.Points {
		copied.Points[name] = points
	}
	return copied
}
