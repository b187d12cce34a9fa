package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
)

type StandingRepository struct {
	mu             sync.RWMutex
	rowsByGameweek map[int][]snapshot.Standing
}

func NewStandingRepository() *StandingRepository {
	return &StandingRepository{rowsByGameweek: make(map[int][]snapshot.Standing)}
}

func (r *StandingRepository) Upsert(_ context.Context, rows []snapshot.Standing) error {
	if len(rows) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		stored := r.rowsByGameweek[row.Gameweek]
		replaced := false
		for i := range stored {
			if stored[i].EntryID == row.EntryID {
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

func (r *StandingRepository) ListByGameweek(_ context.Context, gameweek int) ([]snapshot.Standing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.rowsByGameweek[gameweek]
	out := make([]snapshot.Standing, 0, len(items))
	out = append(out, items...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].EntryID < out[j].EntryID
	})
	return out, nil
}
