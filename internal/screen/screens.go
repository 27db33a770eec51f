package screen

import (
	"context"
	"fmt"

	"github.com/redhaven/colony/internal/domain/resources"
)

// Death is shown when the colonist dies. Confirm returns to the game screen,
// which restarts the run.
type Death struct {
	Reason resources.DeathReason
}

func (d *Death) ID() ID { return IDDeath }

func (d *Death) Update(_ context.Context, in Input, out chan<- Command) error {
	if in.JustPressed(KeyConfirm) {
		return Send(out, PopScreen())
	}
	return nil
}

// Win is shown once the last objective is met.
type Win struct {
	Milestone int
}

func (w *Win) ID() ID { return IDWin }

func (w *Win) Update(_ context.Context, in Input, out chan<- Command) error {
	if in.JustPressed(KeyConfirm) {
		return Send(out, PopScreen())
	}
	return nil
}

// Pause freezes the game. Escape or Confirm resumes.
type Pause struct{}

func (p *Pause) ID() ID { return IDPause }

func (p *Pause) Update(_ context.Context, in Input, out chan<- Command) error {
	if in.JustPressed(KeyEscape) || in.JustPressed(KeyConfirm) {
		return Send(out, PopScreen())
	}
	return nil
}

// DefaultFactory builds the overlay screens. The game screen is always the
// stack root and cannot be pushed.
func DefaultFactory(target ID, payload any) (Screen, error) {
	switch target {
	case IDPause:
		return &Pause{}, nil
	case IDDeath:
		reason, _ := payload.(resources.DeathReason)
		return &Death{Reason: reason}, nil
	case IDWin:
		milestone, _ := payload.(int)
		return &Win{Milestone: milestone}, nil
	}
	return nil, fmt.Errorf("no screen for %s", target)
}
