package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/redhaven/colony/internal/domain/area"
	"github.com/redhaven/colony/internal/domain/machine"
	"github.com/redhaven/colony/internal/events"
	"github.com/redhaven/colony/internal/platform/logger"
	"github.com/redhaven/colony/internal/platform/metrics"
	"github.com/redhaven/colony/internal/screen"
)

// Popup colours.
const (
	ColorWarning = "#E8A33D"
	ColorSuccess = "#6DBE6D"
	ColorInfo    = "#9AB8D6"
)

// TradePayload is recorded for every interaction with an area.
type TradePayload struct {
	Machine string              `json:"machine"`
	Action  string              `json:"action"`
	From    string              `json:"from,omitempty"`
	To      string              `json:"to,omitempty"`
	Missing []machine.Shortfall `json:"missing,omitempty"`
}

// TradeSystem routes an interaction to the area the colonist stands in.
type TradeSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	metrics  *metrics.Collector

	forceDrain    bool
	deathDrain    int16
	popupDuration time.Duration
}

// NewTradeSystem creates a trade router. When forceDrain is set every
// interaction attempt first forces the life rate to deathDrain.
func NewTradeSystem(eventLog *events.EventLog, log *logger.Logger, m *metrics.Collector, forceDrain bool, deathDrain int16, popupDuration time.Duration) *TradeSystem {
	return &TradeSystem{
		eventLog:      eventLog,
		logger:        log,
		metrics:       m,
		forceDrain:    forceDrain,
		deathDrain:    deathDrain,
		popupDuration: popupDuration,
	}
}

// Target returns the first area whose interaction area contains the
// colonist's position, in map order.
func (ts *TradeSystem) Target(gs *GameState) (area.Area, bool) {
	for _, a := range gs.Areas {
		if a.InteractionArea().Contains(gs.Player.Position) {
			return a, true
		}
	}
	return nil, false
}

// Interact performs the interaction for the area in reach, if any. A missing
// cost becomes a warning popup; only a failed command send is returned.
func (ts *TradeSystem) Interact(gs *GameState, tick int64, out chan<- screen.Command) error {
	target, ok := ts.Target(gs)
	if !ok {
		return nil
	}
	if ts.forceDrain {
		gs.Player.ResourcesChange.Life = ts.deathDrain
	}

	outcome, err := target.Interact(gs.Player)
	if err != nil {
		var insufficient *machine.InsufficientItemsError
		if !errors.As(err, &insufficient) {
			ts.logger.Error(fmt.Sprintf("[TRADE] %s interaction failed: %v", target.Name(), err))
			return nil
		}
		ts.metrics.RecordTrade(false)
		ts.logger.Info("[TRADE] " + insufficient.Error())
		appendEvent(ts.eventLog, ts.logger, events.GameEvent{
			RunID:    gs.RunID,
			Type:     events.EventTypeTradeRejected,
			ActorID:  actorPlayer,
			TargetID: target.Name(),
			Payload:  TradePayload{Machine: target.Name(), Action: insufficient.Trade, Missing: insufficient.Missing},
			Tick:     tick,
		})
		return screen.Send(out, screen.ShowPopup(ColorWarning, missingText(insufficient.Missing), ts.popupDuration))
	}

	if outcome.Action == machine.NoOpName {
		return nil
	}
	if target.Kind() != area.KindMachine {
		return screen.Send(out, screen.ShowPopup(ColorInfo, strings.ReplaceAll(target.Name(), "_", " "), ts.popupDuration))
	}

	ts.metrics.RecordTrade(true)
	ts.logger.Info(fmt.Sprintf("[TRADE] %s: %s (%s -> %s)", target.Name(), outcome.Action, outcome.From, outcome.To))
	appendEvent(ts.eventLog, ts.logger, events.GameEvent{
		RunID:    gs.RunID,
		Type:     events.EventTypeTradeApplied,
		ActorID:  actorPlayer,
		TargetID: target.Name(),
		Payload:  TradePayload{Machine: target.Name(), Action: outcome.Action, From: outcome.From, To: outcome.To},
		Tick:     tick,
	})
	return nil
}

// missingText renders shortfalls as "Missing 2 scrap, 1 battery".
func missingText(missing []machine.Shortfall) string {
	parts := make([]string, 0, len(missing))
	for _, s := range missing {
		parts = append(parts, humanize.Comma(int64(s.Missing))+" "+strings.ReplaceAll(s.Item.Name, "_", " "))
	}
	return "Missing " + strings.Join(parts, ", ")
}
