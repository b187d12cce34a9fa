package postgres

import "time"

type standingTableModel struct {
	ID             int64     `db:"id"`
	Gameweek       int       `db:"gameweek"`
	EntryID        int       `db:"entry_id"`
	PlayerName     string    `db:"player_name"`
	TeamName       string    `db:"team_name"`
	Rank           int       `db:"rank"`
	LeaguePoints   int       `db:"league_points"`
	GameweekPoints int       `db:"gameweek_points"`
	TotalPoints    int       `db:"total_points"`
	OverallRank    int       `db:"overall_rank"`
	Result         string    `db:"result"`
	Opponent       string    `db:"opponent"`
	Captain        string    `db:"captain"`
	Chip           string    `db:"chip"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type standingInsertModel struct {
	Gameweek       int    `db:"gameweek"`
	EntryID        int    `db:"entry_id"`
	PlayerName     string `db:"player_name"`
	TeamName       string `db:"team_name"`
	Rank           int    `db:"rank"`
	LeaguePoints   int    `db:"league_points"`
	GameweekPoints int    `db:"gameweek_points"`
	TotalPoints    int    `db:"total_points"`
	OverallRank    int    `db:"overall_rank"`
	Result         string `db:"result"`
	Opponent       string `db:"opponent"`
	Captain        string `db:"captain"`
	Chip           string `db:"chip"`
}
