package httpapi

import (
	"fmt"
	"net/http"

	"github.com/rabsht/fpl-h2h/internal/usecase"
)

type snapshotReportDTO struct {
	Gameweek  int    `json:"gameweek"`
	State     string `json:"state"`
	Persisted bool   `json:"persisted"`
	Standings int    `json:"standings"`
	Matches   int    `json:"matches"`
}

// TriggerSnapshot forces a standings snapshot for the current gameweek.
// Schedulers call this right after the final whistle of a round instead
// of waiting for the next page load to persist the baseline.
func (h *Handler) TriggerSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerSnapshot")
	defer span.End()

	if h.snapshotService == nil {
		writeError(ctx, w, fmt.Errorf("%w: snapshot service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	report, err := h.snapshotService.Trigger(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "snapshot trigger failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "snapshot triggered",
		"gameweek", report.Gameweek,
		"state", string(report.State),
		"persisted", report.Persisted,
	)

	writeSuccess(ctx, w, http.StatusOK, snapshotReportDTO{
		Gameweek:  report.Gameweek,
		State:     string(report.State),
		Persisted: report.Persisted,
		Standings: report.Standings,
		Matches:   report.Matches,
	})
}
