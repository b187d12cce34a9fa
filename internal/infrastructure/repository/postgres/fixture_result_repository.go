package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
	qb "github.com/rabsht/fpl-h2h/internal/platform/querybuilder"
)

// FixtureResultRepository persists settled head-to-head pairings per
// gameweek.
type FixtureResultRepository struct {
	db *sqlx.DB
}

func NewFixtureResultRepository(db *sqlx.DB) *FixtureResultRepository {
	return &FixtureResultRepository{db: db}
}

func (r *FixtureResultRepository) Upsert(ctx context.Context, rows []snapshot.FixtureResult) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert fixture results: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, row := range rows {
		insertModel := fixtureResultInsertModel{
			Gameweek:     row.Gameweek,
			Entry1:       row.Entry1,
			Entry1Name:   row.Entry1Name,
			Entry1Points: row.Entry1Points,
			Entry2:       row.Entry2,
			Entry2Name:   row.Entry2Name,
			Entry2Points: row.Entry2Points,
			Winner:       row.Winner,
		}
		query, args, err := qb.InsertModel("fixture_results", insertModel, `ON CONFLICT (gameweek, entry_1, entry_2)
DO UPDATE SET
    entry_1_name = EXCLUDED.entry_1_name,
    entry_1_points = EXCLUDED.entry_1_points,
    entry_2_name = EXCLUDED.entry_2_name,
    entry_2_points = EXCLUDED.entry_2_points,
    winner = EXCLUDED.winner,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert fixture result query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert fixture result gameweek=%d pair=%d/%d: %w", row.Gameweek, row.Entry1, row.Entry2, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert fixture results tx: %w", err)
	}
	return nil
}

func (r *FixtureResultRepository) ListByGameweek(ctx context.Context, gameweek int) ([]snapshot.FixtureResult, error) {
	query, args, err := qb.Select("*").From("fixture_results").
		Where(qb.Eq("gameweek", gameweek)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixture results query: %w", err)
	}

	var rows []fixtureResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fixture results gameweek=%d: %w", gameweek, err)
	}

	out := make([]snapshot.FixtureResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, snapshot.FixtureResult{
			Gameweek:     row.Gameweek,
			Entry1:       row.Entry1,
			Entry1Name:   row.Entry1Name,
			Entry1Points: row.Entry1Points,
			Entry2:       row.Entry2,
			Entry2Name:   row.Entry2Name,
			Entry2Points: row.Entry2Points,
			Winner:       row.Winner,
		})
	}
	return out, nil
}
