package fpl

import (
	"errors"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/rabsht/fpl-h2h/internal/domain/entry"
	"github.com/rabsht/fpl-h2h/internal/domain/player"
)

func TestMapBootstrapSkipsUnknownPositions(t *testing.T) {
	t.Parallel()

	envelope := bootstrapEnvelope{
		Events: []eventItem{
			{ID: 12, IsCurrent: true, Finished: false},
			{ID: 13, IsNext: true},
		},
		Elements: []elementItem{
			{ID: 100, WebName: "Salah", Status: "a", ElementType: 3, Team: 11},
			{ID: 101, WebName: "Mystery", Status: "a", ElementType: 9, Team: 4},
		},
		Teams: []clubItem{
			{ID: 11, ShortName: "LIV"},
		},
	}

	bootstrap, skipped := mapBootstrap(envelope)

	if skipped != 1 {
		t.Fatalf("expected one skipped element, got=%d", skipped)
	}
	if len(bootstrap.Events) != 2 {
		t.Fatalf("expected two events, got=%d", len(bootstrap.Events))
	}
	if len(bootstrap.Players) != 1 {
		t.Fatalf("expected one player, got=%d", len(bootstrap.Players))
	}

	salah, ok := bootstrap.Players[100]
	if !ok {
		t.Fatalf("expected player 100 to survive mapping")
	}
	if salah.Position != player.PositionMidfielder {
		t.Fatalf("unexpected position: got=%v want=%v", salah.Position, player.PositionMidfielder)
	}
	if salah.Club != 11 {
		t.Fatalf("unexpected club: got=%d want=%d", salah.Club, 11)
	}
	if bootstrap.Clubs[11] != "LIV" {
		t.Fatalf("unexpected club short name: got=%q want=%q", bootstrap.Clubs[11], "LIV")
	}
}

func TestMapLiveStatsUsesFirstExplainFixture(t *testing.T) {
	t.Parallel()

	envelope := liveEnvelope{
		Elements: []liveElementItem{
			{
				ID:      7,
				Stats:   liveStatsItem{Minutes: 67, TotalPoints: 8, Bonus: 0, BPS: 31},
				Explain: []explainItem{{Fixture: 220}, {Fixture: 221}},
			},
			{
				ID:    8,
				Stats: liveStatsItem{Minutes: 0, TotalPoints: 0},
			},
		},
	}

	stats := mapLiveStats(envelope)

	line, ok := stats[7]
	if !ok {
		t.Fatalf("expected stat line for element 7")
	}
	if line.FixtureID != 220 {
		t.Fatalf("unexpected fixture id: got=%d want=%d", line.FixtureID, 220)
	}
	if line.BPS != 31 {
		t.Fatalf("unexpected bps: got=%d want=%d", line.BPS, 31)
	}
	if stats[8].FixtureID != 0 {
		t.Fatalf("expected zero fixture id when explain is empty, got=%d", stats[8].FixtureID)
	}
}

func TestMapMatchesDropsByeRows(t *testing.T) {
	t.Parallel()

	envelope := h2hMatchesEnvelope{
		Results: []h2hMatchItem{
			{Entry1: 1001, Entry1Points: 55, Entry2: 1002, Entry2Points: 48},
			{Entry1: 1003, Entry1Points: 40, Entry2: 0, Entry2Points: 0},
		},
	}

	matches := mapMatches(envelope)

	if len(matches) != 1 {
		t.Fatalf("expected one playable match, got=%d", len(matches))
	}
	if matches[0].Entry1 != 1001 || matches[0].Entry2 != 1002 {
		t.Fatalf("unexpected pairing: got=%d vs %d", matches[0].Entry1, matches[0].Entry2)
	}
}

func TestMapPicksChipHandling(t *testing.T) {
	t.Parallel()

	bboost := "bboost"
	tests := []struct {
		name string
		chip *string
		want entry.Chip
	}{
		{name: "no chip played", chip: nil, want: entry.ChipNone},
		{name: "bench boost active", chip: &bboost, want: entry.ChipBenchBoost},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			picks := mapPicks(picksEnvelope{
				ActiveChip:   tc.chip,
				EntryHistory: picksHistoryItem{Points: 61, EventTransfersCost: 4, OverallRank: 120409},
				Picks: []pickItem{
					{Element: 100, Position: 1, Multiplier: 1},
					{Element: 200, Position: 2, Multiplier: 2, IsCaptain: true},
				},
			})

			if picks.ActiveChip != tc.want {
				t.Fatalf("unexpected chip: got=%q want=%q", picks.ActiveChip, tc.want)
			}
			if picks.TransferCost != 4 {
				t.Fatalf("unexpected transfer cost: got=%d want=%d", picks.TransferCost, 4)
			}
			if len(picks.List) != 2 {
				t.Fatalf("expected two picks, got=%d", len(picks.List))
			}
			if !picks.List[1].IsCaptain {
				t.Fatalf("expected second pick to keep the captain flag")
			}
		})
	}
}

func TestDecodeH2HStandingsEnvelope(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"league": {"id": 820322, "name": "Arab League"},
		"standings": {
			"has_next": true,
			"results": [
				{
					"entry": 5180311,
					"player_name": "Ahmed K",
					"entry_name": "Desert Foxes",
					"rank": 1,
					"last_rank": 2,
					"total": 40,
					"points_for": 712
				}
			]
		}
	}`)

	var envelope h2hStandingsEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	page := mapH2HPage(envelope)

	if page.LeagueName != "Arab League" {
		t.Fatalf("unexpected league name: got=%q want=%q", page.LeagueName, "Arab League")
	}
	if !page.HasNext {
		t.Fatalf("expected has_next to survive mapping")
	}
	if len(page.Standings) != 1 {
		t.Fatalf("expected one standing row, got=%d", len(page.Standings))
	}

	row := page.Standings[0]
	if row.EntryID != 5180311 {
		t.Fatalf("unexpected entry id: got=%d want=%d", row.EntryID, 5180311)
	}
	if row.LastRank != 2 {
		t.Fatalf("unexpected last rank: got=%d want=%d", row.LastRank, 2)
	}
	if row.PointsFor != 712 {
		t.Fatalf("unexpected points for: got=%d want=%d", row.PointsFor, 712)
	}
}

func TestDecodeClassicStandingsEnvelope(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"league": {"id": 412, "name": "Overall"},
		"standings": {
			"has_next": false,
			"results": [
				{
					"entry": 900,
					"player_name": "Sara M",
					"entry_name": "Red Machines",
					"rank": 3,
					"last_rank": 7,
					"total": 901,
					"event_total": 77
				}
			]
		}
	}`)

	var envelope classicStandingsEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	page := mapClassicPage(envelope)

	if page.HasNext {
		t.Fatalf("expected final page")
	}
	if len(page.Rows) != 1 {
		t.Fatalf("expected one classic row, got=%d", len(page.Rows))
	}
	if page.Rows[0].EventTotal != 77 {
		t.Fatalf("unexpected event total: got=%d want=%d", page.Rows[0].EventTotal, 77)
	}
	if change := page.Rows[0].RankChange(); change != 4 {
		t.Fatalf("unexpected rank change: got=%d want=%d", change, 4)
	}
}

func TestParseKickoff(t *testing.T) {
	t.Parallel()

	empty := ""
	garbage := "next tuesday"
	valid := "2026-01-17T15:00:00Z"

	tests := []struct {
		name string
		raw  *string
		want *time.Time
	}{
		{name: "missing kickoff", raw: nil, want: nil},
		{name: "blank kickoff", raw: &empty, want: nil},
		{name: "unparseable kickoff", raw: &garbage, want: nil},
		{name: "valid kickoff", raw: &valid, want: timePtr(time.Date(2026, 1, 17, 15, 0, 0, 0, time.UTC))},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := parseKickoff(tc.raw)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("unexpected kickoff: got=%v want=%v", got, tc.want)
			}
			if got != nil && !got.Equal(*tc.want) {
				t.Fatalf("unexpected kickoff time: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestIsRetryableStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   bool
	}{
		{status: 200, want: false},
		{status: 404, want: false},
		{status: 408, want: true},
		{status: 429, want: true},
		{status: 499, want: false},
		{status: 500, want: true},
		{status: 503, want: true},
	}

	for _, tc := range tests {
		if got := isRetryableStatus(tc.status); got != tc.want {
			t.Fatalf("unexpected retry decision for status=%d: got=%v want=%v", tc.status, got, tc.want)
		}
	}
}

func TestSanitizeRedactsCredentials(t *testing.T) {
	t.Parallel()

	c := &Client{sessionID: "sess-secret-123", csrfToken: "csrf-secret-456"}

	got := c.sanitize("dial failed: cookie sessionid=sess-secret-123; csrftoken=csrf-secret-456")

	if want := "dial failed: cookie sessionid=REDACTED; csrftoken=REDACTED"; got != want {
		t.Fatalf("unexpected sanitized text: got=%q want=%q", got, want)
	}
}

func TestResponsePreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		body string
		max  int
		want string
	}{
		{body: "", max: 64, want: ""},
		{body: "\n\t  <html>\n  <body>Not   Found</body>\n</html>\n", max: 64, want: "<html> <body>Not Found</body> </html>"},
		{body: "0123456789", max: 10, want: "0123456789"},
		{body: "0123456789ABCDEF", max: 10, want: "0123456789...(truncated)"},
	}

	for _, tc := range tests {
		if got := responsePreview([]byte(tc.body), tc.max); got != tc.want {
			t.Fatalf("unexpected preview for %q: got=%q want=%q", tc.body, got, tc.want)
		}
	}
}

func TestAPIErrorRetainsTypeThroughTransientMark(t *testing.T) {
	t.Parallel()

	marked := crerr.Mark(&APIError{Endpoint: "/bootstrap-static/", Status: 503}, errFPLTransient)

	if !crerr.Is(marked, errFPLTransient) {
		t.Fatalf("expected marked error to match the transient sentinel")
	}

	var apiErr *APIError
	if !errors.As(marked, &apiErr) {
		t.Fatalf("expected marked error to expose the api error")
	}
	if apiErr.Status != 503 {
		t.Fatalf("unexpected status: got=%d want=%d", apiErr.Status, 503)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
