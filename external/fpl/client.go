package fpl

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/rabsht/fpl-h2h/internal/domain/entry"
	"github.com/rabsht/fpl-h2h/internal/domain/fixture"
	"github.com/rabsht/fpl-h2h/internal/domain/gameweek"
	"github.com/rabsht/fpl-h2h/internal/domain/league"
	"github.com/rabsht/fpl-h2h/internal/domain/player"
	"github.com/rabsht/fpl-h2h/internal/domain/scoring"
	"github.com/rabsht/fpl-h2h/internal/platform/logging"
	"github.com/rabsht/fpl-h2h/internal/platform/resilience"
	"github.com/rabsht/fpl-h2h/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL    = "https://fantasy.premierleague.com/api"
	defaultTimeout    = 8 * time.Second
	maxResponseBytes  = 8 << 20
	errorPreviewBytes = 512
)

var errFPLTransient = crerr.New("fpl transient failure")

// APIError is a non-2xx answer from the game API for one endpoint.
type APIError struct {
	Endpoint string
	Status   int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fpl endpoint=%s status=%d", e.Endpoint, e.Status)
}

type ClientConfig struct {
	BaseURL        string
	SessionID      string
	CSRFToken      string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the Fantasy Premier League API and maps its payloads
// into domain types. Concurrent calls for the same endpoint collapse into
// one upstream request, and a circuit breaker sheds load while the API is
// failing.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	sessionID      string
	csrfToken      string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient: &fasthttp.Client{
			Name:                "fpl-h2h",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBytes,
		},
		baseURL:        baseURL,
		sessionID:      strings.TrimSpace(cfg.SessionID),
		csrfToken:      strings.TrimSpace(cfg.CSRFToken),
		timeout:        timeout,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// BreakerSnapshot exposes upstream circuit state for health reporting.
func (c *Client) BreakerSnapshot() resilience.CircuitSnapshot {
	return c.breaker.Snapshot()
}

func (c *Client) FetchBootstrap(ctx context.Context) (usecase.UpstreamBootstrap, error) {
	var envelope bootstrapEnvelope
	if err := c.doJSON(ctx, "/bootstrap-static/", &envelope); err != nil {
		return usecase.UpstreamBootstrap{}, fmt.Errorf("fetch bootstrap: %w", err)
	}

	bootstrap, skipped := mapBootstrap(envelope)
	if skipped > 0 {
		c.logger.WarnContext(ctx, "bootstrap elements with unknown position skipped", "count", skipped)
	}
	return bootstrap, nil
}

func (c *Client) FetchLiveStats(ctx context.Context, gw int) (scoring.Stats, error) {
	var envelope liveEnvelope
	if err := c.doJSON(ctx, fmt.Sprintf("/event/%d/live/", gw), &envelope); err != nil {
		return nil, fmt.Errorf("fetch live stats gameweek=%d: %w", gw, err)
	}
	return mapLiveStats(envelope), nil
}

func (c *Client) FetchFixtures(ctx context.Context, gw int) ([]fixture.Fixture, error) {
	var items []fixtureItem
	if err := c.doJSON(ctx, fmt.Sprintf("/fixtures/?event=%d", gw), &items); err != nil {
		return nil, fmt.Errorf("fetch fixtures gameweek=%d: %w", gw, err)
	}
	return mapFixtures(items), nil
}

func (c *Client) FetchH2HStandings(ctx context.Context, leagueID, page int) (usecase.UpstreamH2HPage, error) {
	path := fmt.Sprintf("/leagues-h2h/%d/standings/?page_standings=%d", leagueID, page)
	var envelope h2hStandingsEnvelope
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return usecase.UpstreamH2HPage{}, fmt.Errorf("fetch h2h standings league=%d page=%d: %w", leagueID, page, err)
	}
	return mapH2HPage(envelope), nil
}

func (c *Client) FetchH2HMatches(ctx context.Context, leagueID, gw int) ([]league.Match, error) {
	path := fmt.Sprintf("/leagues-h2h-matches/league/%d/?event=%d", leagueID, gw)
	var envelope h2hMatchesEnvelope
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch h2h matches league=%d gameweek=%d: %w", leagueID, gw, err)
	}
	return mapMatches(envelope), nil
}

func (c *Client) FetchClassicStandings(ctx context.Context, leagueID, page int) (usecase.UpstreamClassicPage, error) {
	path := fmt.Sprintf("/leagues-classic/%d/standings/?page_standings=%d", leagueID, page)
	var envelope classicStandingsEnvelope
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return usecase.UpstreamClassicPage{}, fmt.Errorf("fetch classic standings league=%d page=%d: %w", leagueID, page, err)
	}
	return mapClassicPage(envelope), nil
}

func (c *Client) FetchEntry(ctx context.Context, entryID int) (entry.Entry, error) {
	var envelope entryEnvelope
	if err := c.doJSON(ctx, fmt.Sprintf("/entry/%d/", entryID), &envelope); err != nil {
		return entry.Entry{}, fmt.Errorf("fetch entry entry_id=%d: %w", entryID, err)
	}

	return entry.Entry{
		ID:         entryID,
		PlayerName: strings.TrimSpace(envelope.PlayerFirstName + " " + envelope.PlayerLastName),
		TeamName:   envelope.Name,
	}, nil
}

func (c *Client) FetchEntryPicks(ctx context.Context, entryID, gw int) (entry.Picks, error) {
	path := fmt.Sprintf("/entry/%d/event/%d/picks/", entryID, gw)
	var envelope picksEnvelope
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return entry.Picks{}, fmt.Errorf("fetch picks entry_id=%d gameweek=%d: %w", entryID, gw, err)
	}
	return mapPicks(envelope), nil
}

func (c *Client) FetchEntryHistory(ctx context.Context, entryID int) ([]entry.HistoryRow, error) {
	var envelope historyEnvelope
	if err := c.doJSON(ctx, fmt.Sprintf("/entry/%d/history/", entryID), &envelope); err != nil {
		return nil, fmt.Errorf("fetch history entry_id=%d: %w", entryID, err)
	}

	out := make([]entry.HistoryRow, 0, len(envelope.Current))
	for _, item := range envelope.Current {
		out = append(out, entry.HistoryRow{
			Event:         item.Event,
			Points:        item.Points,
			TransfersCost: item.EventTransfersCost,
			OverallRank:   item.OverallRank,
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, endpoint string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fpl circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: game api is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(endpoint, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, endpoint)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errFPLTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode fpl payload endpoint=%s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, endpoint string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.sessionID != "" {
		req.Header.SetCookie("sessionid", c.sessionID)
	}
	if c.csrfToken != "" {
		req.Header.SetCookie("csrftoken", c.csrfToken)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		deadline := time.Now().Add(c.timeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}

		resp.Reset()
		err := c.httpClient.DoDeadline(req, resp, deadline)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request endpoint=%s: %s", errFPLTransient, endpoint, c.sanitize(err.Error()))
		} else {
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				return append([]byte(nil), resp.Body()...), nil
			}

			apiErr := &APIError{Endpoint: endpoint, Status: status}
			if !isRetryableStatus(status) {
				if preview := responsePreview(resp.Body(), errorPreviewBytes); preview != "" {
					c.logger.WarnContext(ctx, "fpl error response",
						"endpoint", endpoint,
						"status", status,
						"body", c.sanitize(preview),
					)
				}
				return nil, apiErr
			}
			lastErr = crerr.Mark(apiErr, errFPLTransient)
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("fpl request failed endpoint=%s", endpoint)
	}
	c.logger.WarnContext(ctx, "fpl request failed", "endpoint", endpoint, "error", lastErr)
	return nil, lastErr
}

// sanitize strips credential material from transport error text before it
// reaches logs or wrapped errors.
func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if c.sessionID != "" {
		value = strings.ReplaceAll(value, c.sessionID, "REDACTED")
	}
	if c.csrfToken != "" {
		value = strings.ReplaceAll(value, c.csrfToken, "REDACTED")
	}
	return value
}

// responsePreview flattens an upstream error body into a single short line
// so HTML error pages stay readable in logs. Whitespace runs collapse to one
// space and anything past max bytes is cut.
func responsePreview(body []byte, max int) string {
	if len(body) == 0 {
		return ""
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	pendingSpace := false
	for _, b := range body {
		if buf.Len() >= max {
			_, _ = buf.WriteString("...(truncated)")
			break
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			pendingSpace = buf.Len() > 0
		default:
			if pendingSpace {
				_ = buf.WriteByte(' ')
				pendingSpace = false
			}
			_ = buf.WriteByte(b)
		}
	}
	return buf.String()
}

func mapBootstrap(envelope bootstrapEnvelope) (usecase.UpstreamBootstrap, int) {
	events := make([]gameweek.Event, 0, len(envelope.Events))
	for _, item := range envelope.Events {
		events = append(events, gameweek.Event{
			ID:          item.ID,
			IsCurrent:   item.IsCurrent,
			IsNext:      item.IsNext,
			Finished:    item.Finished,
			DataChecked: item.DataChecked,
		})
	}

	players := make(map[int]player.Player, len(envelope.Elements))
	skipped := 0
	for _, item := range envelope.Elements {
		position, err := player.FromElementType(item.ElementType)
		if err != nil {
			skipped++
			continue
		}
		players[item.ID] = player.Player{
			ID:       item.ID,
			WebName:  item.WebName,
			Club:     item.Team,
			Position: position,
			Status:   item.Status,
		}
	}

	clubs := make(map[int]string, len(envelope.Teams))
	for _, item := range envelope.Teams {
		clubs[item.ID] = item.ShortName
	}

	return usecase.UpstreamBootstrap{Events: events, Players: players, Clubs: clubs}, skipped
}

func mapLiveStats(envelope liveEnvelope) scoring.Stats {
	stats := make(scoring.Stats, len(envelope.Elements))
	for _, item := range envelope.Elements {
		line := &scoring.PlayerStat{
			Minutes:     item.Stats.Minutes,
			TotalPoints: item.Stats.TotalPoints,
			Bonus:       item.Stats.Bonus,
			BPS:         item.Stats.BPS,
		}
		if len(item.Explain) > 0 {
			line.FixtureID = item.Explain[0].Fixture
		}
		stats[item.ID] = line
	}
	return stats
}

func mapFixtures(items []fixtureItem) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(items))
	for _, item := range items {
		out = append(out, fixture.Fixture{
			ID:                  item.ID,
			Event:               item.Event,
			HomeClub:            item.TeamH,
			AwayClub:            item.TeamA,
			Started:             item.Started,
			Finished:            item.Finished,
			FinishedProvisional: item.FinishedProvisional,
			KickoffAt:           parseKickoff(item.KickoffTime),
		})
	}
	return out
}

func mapH2HPage(envelope h2hStandingsEnvelope) usecase.UpstreamH2HPage {
	rows := make([]league.Standing, 0, len(envelope.Standings.Results))
	for _, item := range envelope.Standings.Results {
		rows = append(rows, league.Standing{
			EntryID:    item.Entry,
			PlayerName: item.PlayerName,
			TeamName:   item.EntryName,
			Rank:       item.Rank,
			LastRank:   item.LastRank,
			Total:      item.Total,
			PointsFor:  item.PointsFor,
		})
	}
	return usecase.UpstreamH2HPage{
		LeagueName: envelope.League.Name,
		HasNext:    envelope.Standings.HasNext,
		Standings:  rows,
	}
}

func mapMatches(envelope h2hMatchesEnvelope) []league.Match {
	out := make([]league.Match, 0, len(envelope.Results))
	for _, item := range envelope.Results {
		// Bye rows in odd-sized leagues carry a null entry on one side.
		if item.Entry1 <= 0 || item.Entry2 <= 0 {
			continue
		}
		out = append(out, league.Match{
			Entry1:       item.Entry1,
			Entry1Points: item.Entry1Points,
			Entry2:       item.Entry2,
			Entry2Points: item.Entry2Points,
		})
	}
	return out
}

func mapClassicPage(envelope classicStandingsEnvelope) usecase.UpstreamClassicPage {
	rows := make([]league.ClassicRow, 0, len(envelope.Standings.Results))
	for _, item := range envelope.Standings.Results {
		rows = append(rows, league.ClassicRow{
			EntryID:    item.Entry,
			PlayerName: item.PlayerName,
			TeamName:   item.EntryName,
			Rank:       item.Rank,
			LastRank:   item.LastRank,
			Total:      item.Total,
			EventTotal: item.EventTotal,
		})
	}
	return usecase.UpstreamClassicPage{
		LeagueName: envelope.League.Name,
		HasNext:    envelope.Standings.HasNext,
		Rows:       rows,
	}
}

func mapPicks(envelope picksEnvelope) entry.Picks {
	chip := entry.ChipNone
	if envelope.ActiveChip != nil {
		chip = entry.Chip(strings.TrimSpace(*envelope.ActiveChip))
	}

	picks := entry.Picks{
		ActiveChip:     chip,
		TransferCost:   envelope.EntryHistory.EventTransfersCost,
		OfficialPoints: envelope.EntryHistory.Points,
		OverallRank:    envelope.EntryHistory.OverallRank,
		List:           make([]entry.Pick, 0, len(envelope.Picks)),
	}
	for _, item := range envelope.Picks {
		picks.List = append(picks.List, entry.Pick{
			Element:       item.Element,
			Position:      item.Position,
			Multiplier:    item.Multiplier,
			IsCaptain:     item.IsCaptain,
			IsViceCaptain: item.IsViceCaptain,
		})
	}
	return picks
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func parseKickoff(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
