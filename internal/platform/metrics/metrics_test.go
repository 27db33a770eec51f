package metrics

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCollectorCounts(t *testing.T) {
	c := New()
	c.RecordTick(2 * time.Millisecond)
	c.RecordTick(5 * time.Millisecond)
	c.RecordTrade(true)
	c.RecordTrade(false)
	c.RecordTrade(false)
	c.RecordSave(time.Millisecond, nil)
	c.RecordSave(time.Millisecond, errors.New("read-only"))

	if c.TickCount != 2 || c.TickLatencyMax != int64(5*time.Millisecond) {
		t.Errorf("Unexpected tick metrics: count %d max %d", c.TickCount, c.TickLatencyMax)
	}
	if c.TradesApplied != 1 || c.TradesRejected != 2 {
		t.Errorf("Unexpected trade metrics: %d applied, %d rejected", c.TradesApplied, c.TradesRejected)
	}
	if c.SavesWritten != 1 || c.SaveErrors != 1 {
		t.Errorf("Unexpected save metrics: %d written, %d failed", c.SavesWritten, c.SaveErrors)
	}
}

func TestHandlersRender(t *testing.T) {
	c := New()
	c.RecordDeath()
	c.RecordWSConnection(1)

	rec := httptest.NewRecorder()
	c.Handler()(rec, httptest.NewRequest("GET", "/metrics", nil))
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON, got %q", rec.Body.String())
	}
	run, _ := body["run"].(map[string]interface{})
	if run["deaths"] != float64(1) {
		t.Errorf("Expected 1 death, got %v", run["deaths"])
	}

	rec = httptest.NewRecorder()
	c.PrometheusHandler()(rec, httptest.NewRequest("GET", "/metrics/prometheus", nil))
	if !strings.Contains(rec.Body.String(), "colony_deaths 1\n") || !strings.Contains(rec.Body.String(), "colony_ws_connections 1\n") {
		t.Errorf("Unexpected prometheus output:\n%s", rec.Body.String())
	}
}
