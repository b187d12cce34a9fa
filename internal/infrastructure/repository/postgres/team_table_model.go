package postgres

import "time"

type teamTableModel struct {
	ID        int64     `db:"id"`
	LeagueKey string    `db:"league_key"`
	Gameweek  int       `db:"gameweek"`
	Points    string    `db:"points"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type teamTableInsertModel struct {
	LeagueKey string `db:"league_key"`
	Gameweek  int    `db:"gameweek"`
	Points    string `db:"points"`
}
