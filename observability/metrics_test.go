package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"safepump/core/events"
)

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 201: "2xx", 429: "4xx", 502: "5xx", 0: "unknown", 700: "unknown"}
	for status, want := range cases {
		if got := statusClass(status); got != want {
			t.Fatalf("status %d: expected %s, got %s", status, want, got)
		}
	}
}

func TestModuleMetricsCounts(t *testing.T) {
	m := ModuleMetrics()
	done := m.Begin("test")
	if got := testutil.ToFloat64(m.inflight.WithLabelValues("test")); got != 1 {
		t.Fatalf("expected one in-flight request, got %v", got)
	}
	done()
	m.Observe("test", "GET /x", 404, time.Millisecond)
	m.Observe("test", "GET /x", 410, time.Millisecond)
	if got := testutil.ToFloat64(m.requests.WithLabelValues("test", "GET /x", "4xx")); got != 2 {
		t.Fatalf("expected two 4xx requests, got %v", got)
	}
	m.RecordThrottle("test", "")
	if got := testutil.ToFloat64(m.throttles.WithLabelValues("test", "unspecified")); got != 1 {
		t.Fatalf("expected one throttle, got %v", got)
	}
}

func TestEventMetricsCountsByType(t *testing.T) {
	m := Events()
	m.Emit(events.TokenSupply{Total: 1})
	m.Emit(nil)
	if got := testutil.ToFloat64(m.emitted.WithLabelValues(events.TypeTokenSupply)); got < 1 {
		t.Fatalf("expected supply event counted, got %v", got)
	}
}
