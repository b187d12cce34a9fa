package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/snapshot"
	qb "github.com/rabsht/fpl-h2h/internal/platform/querybuilder"
)

// TeamTableRepository persists accumulated team-league tables. The points
// column holds the team name to points map as JSONB.
type TeamTableRepository struct {
	db *sqlx.DB
}

func NewTeamTableRepository(db *sqlx.DB) *TeamTableRepository {
	return &TeamTableRepository{db: db}
}

func (r *TeamTableRepository) Upsert(ctx context.Context, table snapshot.TeamTable) error {
	payload, err := sonic.MarshalString(table.Points)
	if err != nil {
		return fmt.Errorf("marshal team table points: %w", err)
	}

	insertModel := teamTableInsertModel{
		LeagueKey: table.LeagueKey,
		Gameweek:  table.Gameweek,
		Points:    payload,
	}
	query, args, err := qb.InsertModel("team_league_tables", insertModel, `ON CONFLICT (league_key, gameweek)
DO UPDATE SET
    points = EXCLUDED.points,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert team table query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert team table league=%s gameweek=%d: %w", table.LeagueKey, table.Gameweek, err)
	}
	return nil
}

func (r *TeamTableRepository) Get(ctx context.Context, leagueKey string, gameweek int) (snapshot.TeamTable, bool, error) {
	query, args, err := qb.Select("*").From("team_league_tables").
		Where(qb.Eq("league_key", leagueKey), qb.Eq("gameweek", gameweek)).
		ToSQL()
	if err != nil {
		return snapshot.TeamTable{}, false, fmt.Errorf("build get team table query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return snapshot.TeamTable{}, false, nil
		}
		return snapshot.TeamTable{}, false, fmt.Errorf("get team table league=%s gameweek=%d: %w", leagueKey, gameweek, err)
	}

	var points league.Table
	if err := sonic.UnmarshalString(row.Points, &points); err != nil {
		return snapshot.TeamTable{}, false, fmt.Errorf("unmarshal team table points league=%s gameweek=%d: %w", leagueKey, gameweek, err)
	}

	return snapshot.TeamTable{
		LeagueKey: row.LeagueKey,
		Gameweek:  row.Gameweek,
		Points:    points,
	}, true, nil
}
