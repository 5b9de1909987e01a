package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveQuestion(t *testing.T) {
	before := testutil.ToFloat64(questionsTotal.WithLabelValues("meta"))
	ObserveQuestion("meta")
	if got := testutil.ToFloat64(questionsTotal.WithLabelValues("meta")); got != before+1 {
		t.Fatalf("questions_total{route=meta} = %v, want %v", got, before+1)
	}
}

func TestObserveGate(t *testing.T) {
	accepted := testutil.ToFloat64(sqlGateTotal.WithLabelValues("accepted"))
	capped := testutil.ToFloat64(safetyCapAppliedTotal)
	qualified := testutil.ToFloat64(schemaQualifiedTotal)

	ObserveGate("accepted", true, false)

	if got := testutil.ToFloat64(sqlGateTotal.WithLabelValues("accepted")); got != accepted+1 {
		t.Fatalf("sql_gate_total{outcome=accepted} = %v", got)
	}
	if got := testutil.ToFloat64(safetyCapAppliedTotal); got != capped+1 {
		t.Fatalf("safety_cap_applied_total = %v", got)
	}
	if got := testutil.ToFloat64(schemaQualifiedTotal); got != qualified {
		t.Fatalf("schema_qualified_total changed to %v", got)
	}
}

func TestObserveCompletionAndHTTP(t *testing.T) {
	ObserveCompletion("ok", 1500*time.Millisecond)
	if n := testutil.CollectAndCount(completionDurationSeconds); n == 0 {
		t.Fatal("expected completion histogram series")
	}

	ObserveHTTPRequest("POST", "/api/ask", "200", 20*time.Millisecond)
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/ask", "200")); got < 1 {
		t.Fatalf("http_requests_total = %v", got)
	}
}
