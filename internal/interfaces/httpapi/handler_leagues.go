package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/usecase"
)

type getTeamLeagueRequest struct {
	League string `validate:"required,max=64"`
}

type getClassicLeagueRequest struct {
	LeagueID int `validate:"required,gt=0"`
	Limit    int `validate:"gte=0,lte=1000"`
}

type teamLeagueDTO struct {
	Key          string            `json:"key"`
	Name         string            `json:"name"`
	Gameweek     int               `json:"gameweek"`
	BaseGameweek int               `json:"baseGameweek,omitempty"`
	TotalTeams   int               `json:"totalTeams"`
	Live         bool              `json:"live"`
	Stale        bool              `json:"stale"`
	Standings    []teamStandingDTO `json:"standings"`
	Matches      []teamMatchDTO    `json:"matches"`
	Rosters      []teamRosterDTO   `json:"rosters"`
	Honors       honorsDTO         `json:"honors"`
}

type teamStandingDTO struct {
	Team           string   `json:"team"`
	Rank           int      `json:"rank"`
	RankDelta      int      `json:"rankDelta"`
	LeaguePoints   int      `json:"leaguePoints"`
	GameweekPoints int      `json:"gameweekPoints"`
	Captains       []string `json:"captains"`
	Result         string   `json:"result"`
}

type teamMatchDTO struct {
	Team1         string            `json:"team1"`
	Team1Points   int               `json:"team1Points"`
	Team1Captains []string          `json:"team1Captains"`
	Team1Unique   []uniquePlayerDTO `json:"team1Unique"`
	Team2         string            `json:"team2"`
	Team2Points   int               `json:"team2Points"`
	Team2Captains []string          `json:"team2Captains"`
	Team2Unique   []uniquePlayerDTO `json:"team2Unique"`
	Winner        int               `json:"winner"`
	PointsDiff    int               `json:"pointsDiff"`
}

type teamRosterDTO struct {
	Team     string            `json:"team"`
	Points   int               `json:"points"`
	Managers []managerScoreDTO `json:"managers"`
}

type managerScoreDTO struct {
	EntryID int    `json:"entryId"`
	Name    string `json:"name"`
	Points  int    `json:"points"`
	Captain string `json:"captain"`
	NoData  bool   `json:"noData,omitempty"`
}

type honorsDTO struct {
	Teams         []string `json:"teams"`
	TeamPoints    int      `json:"teamPoints"`
	Managers      []string `json:"managers"`
	ManagerTeams  []string `json:"managerTeams"`
	ManagerPoints int      `json:"managerPoints"`
}

type classicBoardDTO struct {
	ID       int                  `json:"id"`
	Name     string               `json:"name"`
	Gameweek int                  `json:"gameweek"`
	Cutoff   int                  `json:"cutoff,omitempty"`
	Rows     []classicStandingDTO `json:"rows"`
}

type classicStandingDTO struct {
	EntryID        int    `json:"entryId"`
	PlayerName     string `json:"playerName"`
	TeamName       string `json:"teamName"`
	Rank           int    `json:"rank"`
	RankDelta      int    `json:"rankDelta"`
	Total          int    `json:"total"`
	GameweekPoints int    `json:"gameweekPoints"`
	Qualifying     bool   `json:"qualifying"`
}

// GetTeamLeague serves one roster-team league keyed by its configured
// slug.
func (h *Handler) GetTeamLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamLeague")
	defer span.End()

	req := getTeamLeagueRequest{League: r.PathValue("league")}
	if err := h.validateRequest(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "team league request rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	dashboard, err := h.teamLeagueService.Get(ctx, req.League)
	if err != nil {
		h.logger.ErrorContext(ctx, "team league render failed", "league", req.League, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toTeamLeagueDTO(dashboard))
}

// GetClassicLeague serves one configured classic league. The optional
// limit query parameter caps the rows returned.
func (h *Handler) GetClassicLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetClassicLeague")
	defer span.End()

	leagueID, err := strconv.Atoi(r.PathValue("leagueID"))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: leagueID must be numeric", usecase.ErrInvalidInput))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: limit must be numeric", usecase.ErrInvalidInput))
			return
		}
	}

	req := getClassicLeagueRequest{LeagueID: leagueID, Limit: limit}
	if err := h.validateRequest(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "classic league request rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	board, err := h.classicService.Get(ctx, req.LeagueID, req.Limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "classic league render failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toClassicBoardDTO(board))
}

func toTeamLeagueDTO(d usecase.TeamLeagueDashboard) teamLeagueDTO {
	out := teamLeagueDTO{
		Key:          d.Key,
		Name:         d.Name,
		Gameweek:     d.Gameweek,
		BaseGameweek: d.BaseGameweek,
		TotalTeams:   d.TotalTeams,
		Live:         d.Live,
		Stale:        d.Stale,
		Standings:    make([]teamStandingDTO, 0, len(d.Standings)),
		Matches:      make([]teamMatchDTO, 0, len(d.Matches)),
		Rosters:      make([]teamRosterDTO, 0, len(d.Rosters)),
		Honors: honorsDTO{
			Teams:         d.Honors.Teams,
			TeamPoints:    d.Honors.TeamPoints,
			Managers:      d.Honors.Managers,
			ManagerTeams:  d.Honors.ManagerTeams,
			ManagerPoints: d.Honors.ManagerPoints,
		},
	}

	for _, standing := range d.Standings {
		out.Standings = append(out.Standings, teamStandingDTO{
			Team:           standing.Team,
			Rank:           standing.Rank,
			RankDelta:      standing.RankDelta,
			LeaguePoints:   standing.LeaguePoints,
			GameweekPoints: standing.GameweekPoints,
			Captains:       standing.Captains,
			Result:         string(standing.Result),
		})
	}

	for _, match := range d.Matches {
		out.Matches = append(out.Matches, teamMatchDTO{
			Team1:         match.Team1,
			Team1Points:   match.Team1Points,
			Team1Captains: match.Team1Captains,
			Team1Unique:   toUniquePlayerDTOs(match.Team1Unique),
			Team2:         match.Team2,
			Team2Points:   match.Team2Points,
			Team2Captains: match.Team2Captains,
			Team2Unique:   toUniquePlayerDTOs(match.Team2Unique),
			Winner:        match.Winner,
			PointsDiff:    match.PointsDiff,
		})
	}

	for _, roster := range d.Rosters {
		out.Rosters = append(out.Rosters, toTeamRosterDTO(roster))
	}

	return out
}

func toTeamRosterDTO(score league.TeamScore) teamRosterDTO {
	out := teamRosterDTO{
		Team:     score.Team,
		Points:   score.Points,
		Managers: make([]managerScoreDTO, 0, len(score.Managers)),
	}
	for _, manager := range score.Managers {
		out.Managers = append(out.Managers, managerScoreDTO{
			EntryID: manager.EntryID,
			Name:    manager.Name,
			Points:  manager.Points,
			Captain: manager.Captain,
			NoData:  manager.NoData,
		})
	}
	return out
}

func toClassicBoardDTO(board usecase.ClassicBoard) classicBoardDTO {
	out := classicBoardDTO{
		ID:       board.ID,
		Name:     board.Name,
		Gameweek: board.Gameweek,
		Cutoff:   board.Cutoff,
		Rows:     make([]classicStandingDTO, 0, len(board.Rows)),
	}
	for _, row := range board.Rows {
		out.Rows = append(out.Rows, classicStandingDTO{
			EntryID:        row.EntryID,
			PlayerName:     row.PlayerName,
			TeamName:       row.TeamName,
			Rank:           row.Rank,
			RankDelta:      row.RankDelta,
			Total:          row.Total,
			GameweekPoints: row.GameweekPoints,
			Qualifying:     row.Qualifying,
		})
	}
	return out
}
