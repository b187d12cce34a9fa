package postgres

import "time"

type fixtureResultTableModel struct {
	ID           int64     `db:"id"`
	Gameweek     int       `db:"gameweek"`
	Entry1       int       `db:"entry_1"`
	Entry1Name   string    `db:"entry_1_name"`
	Entry1Points int       `db:"entry_1_points"`
	Entry2       int       `db:"entry_2"`
	Entry2Name   string    `db:"entry_2_name"`
	Entry2Points int       `db:"entry_2_points"`
	Winner       int       `db:"winner"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type fixtureResultInsertModel struct {
	Gameweek     int    `db:"gameweek"`
	Entry1       int    `db:"entry_1"`
	Entry1Name   string `db:"entry_1_name"`
	Entry1Points int    `db:"entry_1_points"`
	Entry2       int    `db:"entry_2"`
	Entry2Name   string `db:"entry_2_name"`
	Entry2Points int    `db:"entry_2_points"`
	Winner       int    `db:"winner"`
}
