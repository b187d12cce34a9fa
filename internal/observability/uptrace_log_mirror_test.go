package observability

import (
	"testing"

	otellog "go.opentelemetry.io/otel/log"
)

func TestIsHealthProbeRecord(t *testing.T) {
	if !isHealthProbeRecord("http request", []any{"method", "GET", "path", "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if !isHealthProbeRecord("http request", []any{"path", " /Readyz "}) {
		t.Fatalf("expected readiness probe log to be skipped")
	}
	if isHealthProbeRecord("http request", []any{"path", "/v1/dashboard"}) {
		t.Fatalf("did not expect dashboard request log to be skipped")
	}
	if isHealthProbeRecord("snapshot triggered", []any{"path", "/healthz"}) {
		t.Fatalf("did not expect non-request event to be skipped")
	}
}

func TestToOTelLogAttributes(t *testing.T) {
	attrs := toOTelLogAttributes([]any{"league_id", 654321, "gameweek", 13, "entries"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "league_id" || attrs[0].Value.AsInt64() != 654321 {
		t.Fatalf("unexpected league_id attribute")
	}
	if attrs[1].Key != "gameweek" || attrs[1].Value.AsInt64() != 13 {
		t.Fatalf("unexpected gameweek attribute")
	}
	if attrs[2].Key != "entries" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected entries attribute")
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"points": 61,
		"stale":  true,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	items := v.AsMap()
	if len(items) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(items))
	}
}

func TestToOTelLogValue_PointerAndSlice(t *testing.T) {
	points := 48
	v := toOTelLogValue(&points, 0)
	if v.AsInt64() != 48 {
		t.Fatalf("expected pointer to unwrap to 48, got %v", v)
	}

	s := toOTelLogValue([]int{1, 2, 3}, 0)
	if s.Kind() != otellog.KindSlice {
		t.Fatalf("expected slice value, got %s", s.Kind())
	}
	if items := s.AsSlice(); len(items) != 3 || items[2].AsInt64() != 3 {
		t.Fatalf("unexpected slice contents: %v", items)
	}
}
