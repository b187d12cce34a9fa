package httpapi

import (
	"net/http"

	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/usecase"
)

type dashboardDTO struct {
	Gameweek         int                 `json:"gameweek"`
	FixturesGameweek int                 `json:"fixturesGameweek"`
	State            string              `json:"state"`
	LeagueName       string              `json:"leagueName"`
	Stale            bool                `json:"stale"`
	Standings        []dashboardRowDTO   `json:"standings"`
	Matches          []dashboardMatchDTO `json:"matches"`
}

type dashboardRowDTO struct {
	EntryID        int    `json:"entryId"`
	PlayerName     string `json:"playerName"`
	TeamName       string `json:"teamName"`
	Rank           int    `json:"rank"`
	RankDelta      int    `json:"rankDelta"`
	LeaguePoints   int    `json:"leaguePoints"`
	GameweekPoints int    `json:"gameweekPoints"`
	TotalPoints    int    `json:"totalPoints"`
	OverallRank    int    `json:"overallRank"`
	Captain        string `json:"captain"`
	Chip           string `json:"chip,omitempty"`
	Result         string `json:"result"`
	Opponent       string `json:"opponent"`
	NoData         bool   `json:"noData,omitempty"`
}

type dashboardMatchDTO struct {
	Entry1        int               `json:"entry1"`
	Entry1Name    string            `json:"entry1Name"`
	Entry1Points  int               `json:"entry1Points"`
	Entry1Captain string            `json:"entry1Captain"`
	Entry1Chip    string            `json:"entry1Chip,omitempty"`
	Entry1Unique  []uniquePlayerDTO `json:"entry1Unique"`
	Entry2        int               `json:"entry2"`
	Entry2Name    string            `json:"entry2Name"`
	Entry2Points  int               `json:"entry2Points"`
	Entry2Captain string            `json:"entry2Captain"`
	Entry2Chip    string            `json:"entry2Chip,omitempty"`
	Entry2Unique  []uniquePlayerDTO `json:"entry2Unique"`
	Winner        int               `json:"winner"`
	PointsDiff    int               `json:"pointsDiff"`
}

type uniquePlayerDTO struct {
	Element int    `json:"element"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Points  int    `json:"points"`
	Minutes int    `json:"minutes"`
	State   string `json:"state"`
}

// GetDashboard serves the individual head-to-head league dashboard for
// the current gameweek.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDashboard")
	defer span.End()

	dashboard, err := h.dashboardService.Get(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard render failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toDashboardDTO(dashboard))
}

func toDashboardDTO(d usecase.Dashboard) dashboardDTO {
	out := dashboardDTO{
		Gameweek:         d.Gameweek,
		FixturesGameweek: d.FixturesGameweek,
		State:            string(d.State),
		LeagueName:       d.LeagueName,
		Stale:            d.Stale,
		Standings:        make([]dashboardRowDTO, 0, len(d.Standings)),
		Matches:          make([]dashboardMatchDTO, 0, len(d.Matches)),
	}

	for _, row := range d.Standings {
		out.Standings = append(out.Standings, dashboardRowDTO{
			EntryID:        row.EntryID,
			PlayerName:     row.PlayerName,
			TeamName:       row.TeamName,
			Rank:           row.Rank,
			RankDelta:      row.RankDelta,
			LeaguePoints:   row.LeaguePoints,
			GameweekPoints: row.GameweekPoints,
			TotalPoints:    row.TotalPoints,
			OverallRank:    row.OverallRank,
			Captain:        row.Captain,
			Chip:           row.Chip,
			Result:         string(row.Result),
			Opponent:       row.Opponent,
			NoData:         row.NoData,
		})
	}

	for _, match := range d.Matches {
		out.Matches = append(out.Matches, toDashboardMatchDTO(match))
	}

	return out
}

func toDashboardMatchDTO(m usecase.DashboardMatch) dashboardMatchDTO {
	return dashboardMatchDTO{
		Entry1:        m.Entry1,
		Entry1Name:    m.Entry1Name,
		Entry1Points:  m.Entry1Points,
		Entry1Captain: m.Entry1Captain,
		Entry1Chip:    m.Entry1Chip,
		Entry1Unique:  toUniquePlayerDTOs(m.Entry1Unique),
		Entry2:        m.Entry2,
		Entry2Name:    m.Entry2Name,
		Entry2Points:  m.Entry2Points,
		Entry2Captain: m.Entry2Captain,
		Entry2Chip:    m.Entry2Chip,
		Entry2Unique:  toUniquePlayerDTOs(m.Entry2Unique),
		Winner:        m.Winner,
		PointsDiff:    m.PointsDiff,
	}
}

func toUniquePlayerDTOs(players []league.UniquePlayer) []uniquePlayerDTO {
	out := make([]uniquePlayerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, uniquePlayerDTO{
			Element: p.Element,
			Name:    p.Name,
			Count:   p.Count,
			Points:  p.Points,
			Minutes: p.Minutes,
			State:   string(p.State),
		})
	}
	return out
}
