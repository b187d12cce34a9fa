package fpl

// Wire types for the Fantasy Premier League API. Field sets are trimmed to
// what the aggregation layer consumes; unknown upstream fields are ignored
// on decode.

type bootstrapEnvelope struct {
	Events   []eventItem   `json:"events"`
	Elements []elementItem `json:"elements"`
	Teams    []clubItem    `json:"teams"`
}

type clubItem struct {
	ID        int    `json:"id"`
	ShortName string `json:"short_name"`
}

type eventItem struct {
	ID          int  `json:"id"`
	IsCurrent   bool `json:"is_current"`
	IsNext      bool `json:"is_next"`
	Finished    bool `json:"finished"`
	DataChecked bool `json:"data_checked"`
}

type elementItem struct {
	ID          int    `json:"id"`
	WebName     string `json:"web_name"`
	Status      string `json:"status"`
	ElementType int    `json:"element_type"`
	Team        int    `json:"team"`
}

type liveEnvelope struct {
	Elements []liveElementItem `json:"elements"`
}

type liveElementItem struct {
	ID      int           `json:"id"`
	Stats   liveStatsItem `json:"stats"`
	Explain []explainItem `json:"explain"`
}

type liveStatsItem struct {
	Minutes     int `json:"minutes"`
	TotalPoints int `json:"total_points"`
	Bonus       int `json:"bonus"`
	BPS         int `json:"bps"`
}

type explainItem struct {
	Fixture int `json:"fixture"`
}

type fixtureItem struct {
	ID                  int     `json:"id"`
	Event               int     `json:"event"`
	TeamH               int     `json:"team_h"`
	TeamA               int     `json:"team_a"`
	Started             bool    `json:"started"`
	Finished            bool    `json:"finished"`
	FinishedProvisional bool    `json:"finished_provisional"`
	KickoffTime         *string `json:"kickoff_time"`
}

type leagueInfoItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type h2hStandingsEnvelope struct {
	League    leagueInfoItem   `json:"league"`
	Standings h2hStandingsPage `json:"standings"`
}

type h2hStandingsPage struct {
	HasNext bool              `json:"has_next"`
	Results []h2hStandingItem `json:"results"`
}

type h2hStandingItem struct {
	Entry      int    `json:"entry"`
	PlayerName string `json:"player_name"`
	EntryName  string `json:"entry_name"`
	Rank       int    `json:"rank"`
	LastRank   int    `json:"last_rank"`
	Total      int    `json:"total"`
	PointsFor  int    `json:"points_for"`
}

type h2hMatchesEnvelope struct {
	Results []h2hMatchItem `json:"results"`
}

type h2hMatchItem struct {
	Entry1       int `json:"entry_1_entry"`
	Entry1Points int `json:"entry_1_points"`
	Entry2       int `json:"entry_2_entry"`
	Entry2Points int `json:"entry_2_points"`
}

type classicStandingsEnvelope struct {
	League    leagueInfoItem       `json:"league"`
	Standings classicStandingsPage `json:"standings"`
}

type classicStandingsPage struct {
	HasNext bool                  `json:"has_next"`
	Results []classicStandingItem `json:"results"`
}

type classicStandingItem struct {
	Entry      int    `json:"entry"`
	PlayerName string `json:"player_name"`
	EntryName  string `json:"entry_name"`
	Rank       int    `json:"rank"`
	LastRank   int    `json:"last_rank"`
	Total      int    `json:"total"`
	EventTotal int    `json:"event_total"`
}

type entryEnvelope struct {
	PlayerFirstName string `json:"player_first_name"`
	PlayerLastName  string `json:"player_last_name"`
	Name            string `json:"name"`
}

type picksEnvelope struct {
	ActiveChip   *string          `json:"active_chip"`
	EntryHistory picksHistoryItem `json:"entry_history"`
	Picks        []pickItem       `json:"picks"`
}

type picksHistoryItem struct {
	Points             int `json:"points"`
	EventTransfersCost int `json:"event_transfers_cost"`
	OverallRank        int `json:"overall_rank"`
}

type pickItem struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

type historyEnvelope struct {
	Current []historyRowItem `json:"current"`
}

type historyRowItem struct {
	Event              int `json:"event"`
	Points             int `json:"points"`
	EventTransfersCost int `json:"event_transfers_cost"`
	OverallRank        int `json:"overall_rank"`
}
