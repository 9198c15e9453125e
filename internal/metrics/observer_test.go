package metrics

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEMFObserver(t *testing.T) {
	var buf bytes.Buffer
	o := &EMFObserver{namespace: "GenAIGateway", functionName: "gateway", out: &buf}

	o.ObserveRequest(RequestStats{
		RequestID: "req-1",
		Step:      "generateImage",
		Status:    500,
		ErrorType: "provider_response",
		Duration:  250 * time.Millisecond,
	})

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid EMF output: %v\n%s", err, buf.String())
	}
	want := map[string]any{
		"FunctionName":     "gateway",
		"Step":             "generateImage",
		"Status":           "500",
		"ErrorType":        "provider_response",
		"RequestLatencyMs": float64(250),
		"RequestCount":     float64(1),
		"requestId":        "req-1",
	}
	for k, v := range want {
		if doc[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, doc[k])
		}
	}
}

func TestEMFObserver_SuccessErrorType(t *testing.T) {
	var buf bytes.Buffer
	o := &EMFObserver{namespace: "GenAIGateway", out: &buf}
	o.ObserveRequest(RequestStats{Step: "generateText", Status: 200})

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid EMF output: %v", err)
	}
	if doc["ErrorType"] != "none" {
		t.Errorf("expected ErrorType none, got %v", doc["ErrorType"])
	}
}

func TestPromObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewPromObserver(reg)

	o.ObserveRequest(RequestStats{Step: "generateText", Status: 200, Duration: time.Second})
	o.ObserveRequest(RequestStats{Step: "generateText", Status: 200, Duration: time.Second})
	o.ObserveRequest(RequestStats{Step: "bogus", Status: 400, ErrorType: "invalid_step"})

	if got := testutil.ToFloat64(o.requests.WithLabelValues("generateText", "200", "")); got != 2 {
		t.Errorf("expected 2 successful generateText requests, got %v", got)
	}
	if got := testutil.ToFloat64(o.requests.WithLabelValues("bogus", "400", "invalid_step")); got != 1 {
		t.Errorf("expected 1 invalid step request, got %v", got)
	}
	if n := testutil.CollectAndCount(o.duration); n != 2 {
		t.Errorf("expected 2 histogram series, got %d", n)
	}
}
