package memory

import (
	"context"
	"sync"

	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
)

type FixtureResultRepository struct {
	mu             sync.RWMutex
	rowsByGameweek map[int][]snapshot.FixtureResult
}

func NewFixtureResultRepository() *FixtureResultRepository {
	return &FixtureResultRepository{rowsByGameweek: make(map[int][]snapshot.FixtureResult)}
}

func (r *FixtureResultRepository) Upsert(_ context.Context, rows []snapshot.FixtureResult) error {
	if len(rows) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		stored := r.rowsByGameweek[row.Gameweek]
		replaced := false
		for i := range stored {
			if stored[i].Entry1 == row.Entry1 && stored[i].Entry2 == row.Entry2 {
				stored[i] = row
				replaced = true
				break
			}
		}
		if !replaced {
			stored = append(stored, row)
		}
		r.rowsByGameweek[row.Gameweek] = stored
	}
	return nil
}

func (r *FixtureResultRepository) ListByGameweek(_ context.Context, gameweek int) ([]snapshot.FixtureResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.rowsByGameweek[gameweek]
	out := make([]snapshot.FixtureResult, 0, len(items))
	out = append(out, items...)
	return out, nil
}
