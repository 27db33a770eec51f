// Package network - ledger.go
// Ledger endpoints: JSON export of the run's event history and the recap
// rebuilt from the persisted ledger.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redhaven/colony/internal/events"
	"github.com/redhaven/colony/internal/infra/storage"
	"github.com/redhaven/colony/internal/platform/logger"
)

// LedgerHandler provides the ledger API.
type LedgerHandler struct {
	eventLog      *events.EventLog
	reconstructor *storage.Reconstructor // nil when no ledger database is open
	runID         func() string
	logger        *logger.Logger
}

// NewLedgerHandler creates a new ledger handler. runID reports the run in
// progress; reconstructor may be nil.
func NewLedgerHandler(el *events.EventLog, recon *storage.Reconstructor, runID func() string, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		eventLog:      el,
		reconstructor: recon,
		runID:         runID,
		logger:        log,
	}
}

// LedgerEvent is an event in public format.
type LedgerEvent struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"`
	Tick      int64       `json:"tick"`
	Type      string      `json:"type"`
	Actor     string      `json:"actor"`
	Target    string      `json:"target,omitempty"`
	Summary   string      `json:"summary"`
	Details   interface{} `json:"details,omitempty"`
}

// LedgerResponse is the API response for the event history.
type LedgerResponse struct {
	RunID       string        `json:"run_id"`
	TotalEvents int           `json:"total_events"`
	FilteredBy  string        `json:"filtered_by,omitempty"`
	GeneratedAt string        `json:"generated_at"`
	Events      []LedgerEvent `json:"events"`
}

// HandleEvents returns the in-memory history of a run.
// GET /api/events?run_id=XXX&type=TRADE_APPLIED&since_tick=N
func (lh *LedgerHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		lh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	runID := q.Get("run_id")
	if runID == "" {
		runID = lh.runID()
	}
	eventType := strings.ToUpper(q.Get("type"))
	var sinceTick int64
	if s := q.Get("since_tick"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			lh.jsonError(w, "Invalid since_tick", http.StatusBadRequest)
			return
		}
		sinceTick = n
	}

	var filters []string
	if eventType != "" {
		filters = append(filters, "type "+eventType)
	}
	if sinceTick > 0 {
		filters = append(filters, "since tick "+strconv.FormatInt(sinceTick, 10))
	}

	out := make([]LedgerEvent, 0)
	for _, e := range lh.eventLog.Replay() {
		if e.RunID != runID {
			continue
		}
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		if e.Tick < sinceTick {
			continue
		}
		out = append(out, lh.convert(e))
	}

	response := LedgerResponse{
		RunID:       runID,
		TotalEvents: len(out),
		FilteredBy:  strings.Join(filters, ", "),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      out,
	}
	lh.logger.Debug("[LEDGER] run " + runID + " events: " + strconv.Itoa(len(out)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleStats returns per-type event counts for the run in progress.
// GET /api/events/stats
func (lh *LedgerHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		lh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runID := lh.runID()
	stats := map[string]int{"total_events": 0}
	for _, e := range lh.eventLog.Replay() {
		if e.RunID != runID {
			continue
		}
		stats["total_events"]++
		stats[strings.ToLower(string(e.Type))]++
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":       runID,
		"generated_at": time.Now().Format(time.RFC3339),
		"stats":        stats,
	})
}

// HandleRecap returns the summary rebuilt from the persisted ledger.
// GET /api/recap?run_id=XXX
func (lh *LedgerHandler) HandleRecap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		lh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if lh.reconstructor == nil {
		lh.jsonError(w, "Ledger database disabled", http.StatusServiceUnavailable)
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		runID = lh.runID()
	}
	sum, err := lh.reconstructor.Summarize(r.Context(), runID)
	if err != nil {
		lh.logger.Error("[LEDGER] recap failed: " + err.Error())
		lh.jsonError(w, "Recap failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sum)
}

// RegisterRoutes sets up the ledger API routes.
func (lh *LedgerHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/events", lh.HandleEvents)
	mux.HandleFunc("/api/events/stats", lh.HandleStats)
	mux.HandleFunc("/api/recap", lh.HandleRecap)
}

func (lh *LedgerHandler) convert(e events.GameEvent) LedgerEvent {
	return LedgerEvent{
		ID:        e.ID,
		Timestamp: e.Timestamp.Format("15:04:05"),
		Tick:      e.Tick,
		Type:      string(e.Type),
		Actor:     e.ActorID,
		Target:    e.TargetID,
		Summary:   summarize(e),
		Details:   e.Payload,
	}
}

// summarize creates a human-readable summary.
func summarize(e events.GameEvent) string {
	switch e.Type {
	case events.EventTypeTradeApplied:
		return "Trade completed at " + e.TargetID + "."
	case events.EventTypeTradeRejected:
		return "Trade refused at " + e.TargetID + ": items missing."
	case events.EventTypeMachineExpired:
		return e.TargetID + " ran out of time."
	case events.EventTypeResourceDepleted:
		return "A vital resource ran out."
	case events.EventTypePlayerDied:
		return "The colonist died."
	case events.EventTypeMilestone:
		return "Milestone reached: " + e.TargetID + "."
	case events.EventTypeGameSaved:
		return "Saved to " + e.TargetID + "."
	case events.EventTypeGameLoaded:
		return "Loaded from " + e.TargetID + "."
	default:
		return "Something happened..."
	}
}

// jsonError sends an error response.
func (lh *LedgerHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
