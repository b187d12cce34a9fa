package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
	qb "github.com/rabsht/fpl-h2h/internal/platform/querybuilder"
)

// StandingRepository persists the per-gameweek head-to-head table rows
// the dashboard writes on live and finished renders.
type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) Upsert(ctx context.Context, rows []snapshot.Standing) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, row := range rows {
		insertModel := standingInsertModel{
			Gameweek:       row.Gameweek,
			EntryID:        row.EntryID,
			PlayerName:     row.PlayerName,
			TeamName:       row.TeamName,
			Rank:           row.Rank,
			LeaguePoints:   row.LeaguePoints,
			GameweekPoints: row.GameweekPoints,
			TotalPoints:    row.TotalPoints,
			OverallRank:    row.OverallRank,
			Result:         string(row.Result),
			Opponent:       row.Opponent,
			Captain:        row.Captain,
			Chip:           row.Chip,
		}
		query, args, err := qb.InsertModel("standings_history", insertModel, `ON CONFLICT (gameweek, entry_id)
DO UPDATE SET
    player_name = EXCLUDED.player_name,
    team_name = EXCLUDED.team_name,
    rank = EXCLUDED.rank,
    league_points = EXCLUDED.league_points,
    gameweek_points = EXCLUDED.gameweek_points,
    total_points = EXCLUDED.total_points,
    overall_rank = EXCLUDED.overall_rank,
    result = EXCLUDED.result,
    opponent = EXCLUDED.opponent,
    captain = EXCLUDED.captain,
    chip = EXCLUDED.chip,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert standing gameweek=%d entry=%d: %w", row.Gameweek, row.EntryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert standings tx: %w", err)
	}
	return nil
}

func (r *StandingRepository) ListByGameweek(ctx context.Context, gameweek int) ([]snapshot.Standing, error) {
	query, args, err := qb.Select("*").From("standings_history").
		Where(qb.Eq("gameweek", gameweek)).
		OrderBy("rank", "entry_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list standings query: %w", err)
	}

	var rows []standingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list standings gameweek=%d: %w", gameweek, err)
	}

	out := make([]snapshot.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, snapshot.Standing{
			Gameweek:       row.Gameweek,
			EntryID:        row.EntryID,
			PlayerName:     row.PlayerName,
			TeamName:       row.TeamName,
			Rank:           row.Rank,
			LeaguePoints:   row.LeaguePoints,
			GameweekPoints: row.GameweekPoints,
			TotalPoints:    row.TotalPoints,
			OverallRank:    row.OverallRank,
			Result:         league.Result(row.Result),
			Opponent:       row.Opponent,
			Captain:        row.Captain,
			Chip:           row.Chip,
		})
	}
	return out, nil
}
