// Package storage - reconstructor.go
// Run Recap: rebuilds a summary of a colony run from the event ledger.
package storage

import (
	"context"
	"fmt"
)

// Reconstructor rebuilds run summaries from the event log.
// This is used for:
// 1. The recap logged when the server shuts down
// 2. The /api/recap endpoint
type Reconstructor struct {
	eventRepo EventRepository
}

// NewReconstructor creates a new run reconstructor.
func NewReconstructor(eventRepo EventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// RunSummary holds the reconstructed totals of one run.
type RunSummary struct {
	RunID          string         `json:"run_id"`
	TradesApplied  int            `json:"trades_applied"`
	TradesRejected int            `json:"trades_rejected"`
	TradesByAction map[string]int `json:"trades_by_action"`
	Expirations    int            `json:"expirations"`
	Milestone      int            `json:"milestone"`
	Deaths         int            `json:"deaths"`
	LastDeath      string         `json:"last_death,omitempty"`
	LastTick       int64          `json:"last_tick"`
}

// Summarize folds every event of runID into a RunSummary.
func (r *Reconstructor) Summarize(ctx context.Context, runID string) (*RunSummary, error) {
	events, err := r.eventRepo.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for run: %w", err)
	}

	sum := &RunSummary{RunID: runID, TradesByAction: make(map[string]int)}
	for _, e := range events {
		r.applyEvent(sum, e)
	}
	return sum, nil
}

// applyEvent modifies the summary based on event type.
func (r *Reconstructor) applyEvent(sum *RunSummary, event GameEvent) {
	if event.Tick > sum.LastTick {
		sum.LastTick = event.Tick
	}
	switch event.EventType {
	case "TRADE_APPLIED":
		sum.TradesApplied++
		if action, ok := event.Payload["action"].(string); ok {
			sum.TradesByAction[action]++
		}
	case "TRADE_REJECTED":
		sum.TradesRejected++
	case "MACHINE_EXPIRED":
		sum.Expirations++
	case "MILESTONE_REACHED":
		if m, ok := event.Payload["milestone"].(float64); ok && int(m) > sum.Milestone {
			sum.Milestone = int(m)
		}
	case "PLAYER_DIED":
		sum.Deaths++
		if reason, ok := event.Payload["reason"].(string); ok {
			sum.LastDeath = reason
		}
	}
}
