// Package metrics provides observability for the colony server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers simulation and persistence metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Trade metrics
	TradesApplied  int64
	TradesRejected int64

	// Run metrics
	Deaths     int64
	Milestones int64

	// Persistence metrics
	SavesWritten int64
	SaveLatSum   int64
	SaveErrors   int64
	EventErrors  int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = New()

// New returns an empty collector.
func New() *Collector {
	return &Collector{StartTime: time.Now()}
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records an update cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordTrade records an interaction result.
func (c *Collector) RecordTrade(applied bool) {
	if applied {
		atomic.AddInt64(&c.TradesApplied, 1)
	} else {
		atomic.AddInt64(&c.TradesRejected, 1)
	}
}

// RecordDeath records the end of a life.
func (c *Collector) RecordDeath() {
	atomic.AddInt64(&c.Deaths, 1)
}

// RecordMilestone records a completed objective.
func (c *Collector) RecordMilestone() {
	atomic.AddInt64(&c.Milestones, 1)
}

// RecordSave records a slot write.
func (c *Collector) RecordSave(latency time.Duration, err error) {
	if err != nil {
		atomic.AddInt64(&c.SaveErrors, 1)
		return
	}
	atomic.AddInt64(&c.SavesWritten, 1)
	atomic.AddInt64(&c.SaveLatSum, int64(latency))
}

// RecordEventError records a ledger write that failed.
func (c *Collector) RecordEventError() {
	atomic.AddInt64(&c.EventErrors, 1)
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	saves := atomic.LoadInt64(&c.SavesWritten)

	var tickAvg, saveAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if saves > 0 {
		saveAvg = float64(atomic.LoadInt64(&c.SaveLatSum)) / float64(saves) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"trades": map[string]interface{}{
			"applied":  atomic.LoadInt64(&c.TradesApplied),
			"rejected": atomic.LoadInt64(&c.TradesRejected),
		},

		"run": map[string]interface{}{
			"deaths":     atomic.LoadInt64(&c.Deaths),
			"milestones": atomic.LoadInt64(&c.Milestones),
		},

		"storage": map[string]interface{}{
			"saves":           saves,
			"avg_save_lat_ms": saveAvg,
			"save_errors":     atomic.LoadInt64(&c.SaveErrors),
			"event_errors":    atomic.LoadInt64(&c.EventErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler returns metrics in Prometheus text format.
func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		counter := func(name, help string, v int64) {
			fmt.Fprintf(w, "# HELP colony_%s %s\n", name, help)
			fmt.Fprintf(w, "# TYPE colony_%s counter\n", name)
			fmt.Fprintf(w, "colony_%s %d\n\n", name, v)
		}

		counter("tick_count", "Total update cycles", atomic.LoadInt64(&c.TickCount))
		counter("trades_applied", "Trades applied", atomic.LoadInt64(&c.TradesApplied))
		counter("trades_rejected", "Trades rejected for missing items", atomic.LoadInt64(&c.TradesRejected))
		counter("deaths", "Colonist deaths", atomic.LoadInt64(&c.Deaths))
		counter("milestones", "Objectives completed", atomic.LoadInt64(&c.Milestones))
		counter("saves", "Save slots written", atomic.LoadInt64(&c.SavesWritten))
		counter("save_errors", "Failed save slot writes", atomic.LoadInt64(&c.SaveErrors))

		fmt.Fprintf(w, "# HELP colony_tick_latency_max_ms Maximum update latency\n")
		fmt.Fprintf(w, "# TYPE colony_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "colony_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP colony_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE colony_ws_connections gauge\n")
		fmt.Fprintf(w, "colony_ws_connections %d\n", atomic.LoadInt64(&c.WSConnectionsActive))
	}
}
