package engine

import (
	"fmt"

	"github.com/redhaven/colony/internal/domain/resources"
	"github.com/redhaven/colony/internal/events"
	"github.com/redhaven/colony/internal/platform/logger"
)

// DepletionPayload is recorded when oxygen or energy runs out.
type DepletionPayload struct {
	Reason   resources.DeathReason `json:"reason"`
	Levels   resources.Levels      `json:"levels"`
	LifeRate int16                 `json:"life_rate"`
}

// DeathPayload is recorded when life reaches zero.
type DeathPayload struct {
	Reason    resources.DeathReason `json:"reason"`
	Milestone int                   `json:"milestone"`
}

// MetabolismSystem applies the colonist's resource rates once per tick and
// decides when the colonist dies.
type MetabolismSystem struct {
	eventLog   *events.EventLog
	logger     *logger.Logger
	deathDrain int16
}

// NewMetabolismSystem creates a metabolism manager. deathDrain is the life
// rate forced once oxygen or energy is gone.
func NewMetabolismSystem(eventLog *events.EventLog, log *logger.Logger, deathDrain int16) *MetabolismSystem {
	return &MetabolismSystem{
		eventLog:   eventLog,
		logger:     log,
		deathDrain: deathDrain,
	}
}

// OnTick runs one metabolic step:
//  1. every rate is applied to its level, saturating at 0 and MaxLevel;
//  2. if oxygen or energy sits at zero the life rate is forced to the drain;
//  3. if life is zero the colonist is dead and the reason is returned.
func (ms *MetabolismSystem) OnTick(gs *GameState, tick int64) (resources.DeathReason, bool) {
	p := gs.Player
	p.Resources = resources.Apply(p.Resources, p.ResourcesChange)

	if reason, ok := resources.ZeroCrossing(p.Resources); ok {
		gs.depleted = gs.depleted.Merge(reason)
		if p.ResourcesChange.Life != ms.deathDrain {
			p.ResourcesChange.Life = ms.deathDrain
			ms.logger.Warn(fmt.Sprintf("[METABOLISM] %s depleted, life draining at %d/tick", reason, ms.deathDrain))
			appendEvent(ms.eventLog, ms.logger, events.GameEvent{
				RunID:   gs.RunID,
				Type:    events.EventTypeResourceDepleted,
				ActorID: actorPlayer,
				Payload: DepletionPayload{Reason: reason, Levels: p.Resources, LifeRate: ms.deathDrain},
				Tick:    tick,
			})
		}
	}

	if !p.IsDead() {
		return "", false
	}
	reason := gs.depleted
	if reason == "" {
		reason = resources.ReasonLife
	}
	return reason, true
}
