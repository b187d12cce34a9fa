package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
	"github.com/rabsht/fpl-h2h/internal/platform/resilience"
	"github.com/rabsht/fpl-h2h/internal/usecase"
)

// UpstreamHealth reports the upstream circuit state for the liveness
// endpoint.
type UpstreamHealth interface {
	BreakerSnapshot() resilience.CircuitSnapshot
}

type Handler struct {
	dashboardService  *usecase.DashboardService
	teamLeagueService *usecase.TeamLeagueService
	classicService    *usecase.ClassicService
	statsService      *usecase.StatsService
	snapshotService   *usecase.SnapshotService
	upstream          UpstreamHealth
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	dashboardService *usecase.DashboardService,
	teamLeagueService *usecase.TeamLeagueService,
	classicService *usecase.ClassicService,
	statsService *usecase.StatsService,
	snapshotService *usecase.SnapshotService,
	upstream UpstreamHealth,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		dashboardService:  dashboardService,
		teamLeagueService: teamLeagueService,
		classicService:    classicService,
		statsService:      statsService,
		snapshotService:   snapshotService,
		upstream:          upstream,
		logger:            logger,
		validator:         validator.New(),
	}
}

type healthDTO struct {
	Status   string                      `json:"status"`
	Upstream *resilience.CircuitSnapshot `json:"upstream,omitempty"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	payload := healthDTO{Status: "ok"}
	if h.upstream != nil {
		snapshot := h.upstream.BreakerSnapshot()
		payload.Upstream = &snapshot
	}

	writeSuccess(ctx, w, http.StatusOK, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
