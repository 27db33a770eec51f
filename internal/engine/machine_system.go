package engine

import (
	"fmt"

	"github.com/redhaven/colony/internal/domain/machine"
	"github.com/redhaven/colony/internal/events"
	"github.com/redhaven/colony/internal/platform/logger"
)

// ExpiryPayload is recorded when a machine timer runs out.
type ExpiryPayload struct {
	Machine string        `json:"machine"`
	From    machine.State `json:"from"`
}

// MachineSystem runs machine timers.
type MachineSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewMachineSystem creates a timer manager.
func NewMachineSystem(eventLog *events.EventLog, log *logger.Logger) *MachineSystem {
	return &MachineSystem{
		eventLog: eventLog,
		logger:   log,
	}
}

// OnTick advances every machine timer by one tick. A machine forced out of
// Running stops contributing its running resources to the colonist's rates.
func (ms *MachineSystem) OnTick(gs *GameState, tick int64) int {
	expired := 0
	for _, m := range gs.Machines() {
		exp := m.Advance(1)
		if !exp.Expired {
			continue
		}
		expired++
		if exp.From == machine.StateRunning {
			gs.Player.ResourcesChange = gs.Player.ResourcesChange.Sub(m.RunningResources)
		}
		ms.logger.Info(fmt.Sprintf("[MACHINE] %s timer expired (%s -> %s)", m.Name(), exp.From, m.State))
		appendEvent(ms.eventLog, ms.logger, events.GameEvent{
			RunID:    gs.RunID,
			Type:     events.EventTypeMachineExpired,
			ActorID:  actorSystem,
			TargetID: m.Name(),
			Payload:  ExpiryPayload{Machine: m.Name(), From: exp.From},
			Tick:     tick,
		})
	}
	return expired
}
