package screen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redhaven/colony/internal/platform/logger"
)

// ErrEmptyStack is returned when the stack has no screen to update.
var ErrEmptyStack = errors.New("screen stack is empty")

// Factory builds the screen a PushScreen command names.
type Factory func(target ID, payload any) (Screen, error)

// ActivePopup is a popup with its expiry time.
type ActivePopup struct {
	Popup
	Expires time.Time `json:"expires"`
}

// Stack owns the screens and applies the commands they emit.
// It is driven from a single goroutine.
type Stack struct {
	screens  []Screen
	commands chan Command
	factory  Factory
	popups   []ActivePopup
	prev     Input
	now      func() time.Time
	logger   *logger.Logger
}

// NewStack creates a stack with root at the bottom. buffer bounds how many
// commands a single update may emit.
func NewStack(root Screen, factory Factory, buffer int, log *logger.Logger) *Stack {
	return &Stack{
		screens:  []Screen{root},
		commands: make(chan Command, buffer),
		factory:  factory,
		now:      time.Now,
		logger:   log,
	}
}

// SetClock replaces the time source used for popup expiry.
func (s *Stack) SetClock(now func() time.Time) {
	s.now = now
}

// Top returns the active screen, or nil.
func (s *Stack) Top() Screen {
	if len(s.screens) == 0 {
		return nil
	}
	return s.screens[len(s.screens)-1]
}

// Depth returns the number of stacked screens.
func (s *Stack) Depth() int {
	return len(s.screens)
}

// Update runs the active screen once, then applies every command it sent.
func (s *Stack) Update(ctx context.Context, in Input) error {
	top := s.Top()
	if top == nil {
		return ErrEmptyStack
	}
	edged := in.Since(s.prev)
	s.prev = in

	updateErr := top.Update(ctx, edged, s.commands)
	applyErr := s.drain()
	if updateErr != nil {
		return fmt.Errorf("screen %s update failed: %w", top.ID(), updateErr)
	}
	return applyErr
}

func (s *Stack) drain() error {
	for {
		select {
		case cmd := <-s.commands:
			if err := s.apply(cmd); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (s *Stack) apply(cmd Command) error {
	switch cmd.Kind {
	case CommandPush:
		next, err := s.factory(cmd.Target, cmd.Payload)
		if err != nil {
			return fmt.Errorf("failed to build screen %s: %w", cmd.Target, err)
		}
		s.screens = append(s.screens, next)
		s.logger.Debug(fmt.Sprintf("[SCREEN] push %s (depth %d)", cmd.Target, len(s.screens)))
	case CommandPop:
		if len(s.screens) <= 1 {
			s.logger.Warn("[SCREEN] ignoring pop of the root screen")
			return nil
		}
		s.screens = s.screens[:len(s.screens)-1]
		s.logger.Debug(fmt.Sprintf("[SCREEN] pop (depth %d)", len(s.screens)))
	case CommandPopup:
		s.popups = append(s.popups, ActivePopup{Popup: cmd.Popup, Expires: s.now().Add(cmd.Popup.Duration)})
	}
	return nil
}

// Popups returns the popups that have not expired yet.
func (s *Stack) Popups() []ActivePopup {
	now := s.now()
	live := s.popups[:0]
	for _, p := range s.popups {
		if now.Before(p.Expires) {
			live = append(live, p)
		}
	}
	s.popups = live
	out := make([]ActivePopup, len(live))
	copy(out, live)
	return out
}
