package httpapi

import (
	"net/http"

	"github.com/rabsht/fpl-h2h/internal/usecase"
)

type leagueStatsDTO struct {
	Gameweek      int                `json:"gameweek"`
	LeagueName    string             `json:"leagueName"`
	TotalManagers int                `json:"totalManagers"`
	Captains      []captainCountDTO  `json:"captains"`
	Chips         []chipPlayDTO      `json:"chips"`
	Points        pointsSummaryDTO   `json:"points"`
	BestRank      rankExtremeDTO     `json:"bestRank"`
	WorstRank     rankExtremeDTO     `json:"worstRank"`
	LuckyWin      matchExtremeDTO    `json:"luckyWin"`
	UnluckyLoss   matchExtremeDTO    `json:"unluckyLoss"`
	Ownership     []ownershipLineDTO `json:"ownership"`
}

type captainCountDTO struct {
	Element int    `json:"element"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
}

type chipPlayDTO struct {
	EntryID int    `json:"entryId"`
	Manager string `json:"manager"`
	Chip    string `json:"chip"`
	Label   string `json:"label"`
}

type pointsSummaryDTO struct {
	Min         int      `json:"min"`
	MinManagers []string `json:"minManagers"`
	Max         int      `json:"max"`
	MaxManagers []string `json:"maxManagers"`
	Average     float64  `json:"average"`
	Counted     int      `json:"counted"`
}

type rankExtremeDTO struct {
	Rank     int      `json:"rank"`
	Managers []string `json:"managers"`
}

type matchExtremeDTO struct {
	Manager string `json:"manager"`
	Points  int    `json:"points"`
}

type ownershipLineDTO struct {
	Element    int     `json:"element"`
	Name       string  `json:"name"`
	Club       string  `json:"club"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type comparisonDTO struct {
	Gameweek  int                   `json:"gameweek"`
	Gameweeks []int                 `json:"gameweeks"`
	Managers  []comparisonSeriesDTO `json:"managers"`
}

type comparisonSeriesDTO struct {
	EntryID  int         `json:"entryId"`
	Name     string      `json:"name"`
	TeamName string      `json:"teamName"`
	NoData   bool        `json:"noData,omitempty"`
	Points   map[int]int `json:"points"`
	Ranks    map[int]int `json:"ranks"`
}

// GetStats serves the gameweek statistics digest of the individual
// league.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStats")
	defer span.End()

	stats, err := h.statsService.Get(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "stats render failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toLeagueStatsDTO(stats))
}

// GetComparison serves every manager's season trajectory for trend
// charts.
func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetComparison")
	defer span.End()

	comparison, err := h.statsService.Comparison(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "comparison render failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toComparisonDTO(comparison))
}

func toLeagueStatsDTO(stats usecase.LeagueStats) leagueStatsDTO {
	out := leagueStatsDTO{
		Gameweek:      stats.Gameweek,
		LeagueName:    stats.LeagueName,
		TotalManagers: stats.TotalManagers,
		Captains:      make([]captainCountDTO, 0, len(stats.Captains)),
		Chips:         make([]chipPlayDTO, 0, len(stats.Chips)),
		Points: pointsSummaryDTO{
			Min:         stats.Points.Min,
			MinManagers: stats.Points.MinManagers,
			Max:         stats.Points.Max,
			MaxManagers: stats.Points.MaxManagers,
			Average:     stats.Points.Average,
			Counted:     stats.Points.Counted,
		},
		BestRank:    rankExtremeDTO{Rank: stats.BestRank.Rank, Managers: stats.BestRank.Managers},
		WorstRank:   rankExtremeDTO{Rank: stats.WorstRank.Rank, Managers: stats.WorstRank.Managers},
		LuckyWin:    matchExtremeDTO{Manager: stats.LuckyWin.Manager, Points: stats.LuckyWin.Points},
		UnluckyLoss: matchExtremeDTO{Manager: stats.UnluckyLoss.Manager, Points: stats.UnluckyLoss.Points},
		Ownership:   make([]ownershipLineDTO, 0, len(stats.Ownership)),
	}

	for _, captain := range stats.Captains {
		out.Captains = append(out.Captains, captainCountDTO{
			Element: captain.Element,
			Name:    captain.Name,
			Count:   captain.Count,
		})
	}

	for _, chip := range stats.Chips {
		out.Chips = append(out.Chips, chipPlayDTO{
			EntryID: chip.EntryID,
			Manager: chip.Manager,
			Chip:    string(chip.Chip),
			Label:   chip.Label,
		})
	}

	for _, line := range stats.Ownership {
		out.Ownership = append(out.Ownership, ownershipLineDTO{
			Element:    line.Element,
			Name:       line.Name,
			Club:       line.Club,
			Count:      line.Count,
			Percentage: line.Percentage,
		})
	}

	return out
}

func toComparisonDTO(comparison usecase.Comparison) comparisonDTO {
	out := comparisonDTO{
		Gameweek:  comparison.Gameweek,
		Gameweeks: comparison.Gameweeks,
		Managers:  make([]comparisonSeriesDTO, 0, len(comparison.Managers)),
	}
	for _, series := range comparison.Managers {
		out.Managers = append(out.Managers, comparisonSeriesDTO{
			EntryID:  series.EntryID,
			Name:     series.Name,
			TeamName: series.TeamName,
			NoData:   series.NoData,
			Points:   series.Points,
			Ranks:    series.Ranks,
		})
	}
	return out
}
