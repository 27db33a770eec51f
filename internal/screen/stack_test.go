package screen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redhaven/colony/internal/domain/resources"
	"github.com/redhaven/colony/internal/platform/logger"
)

// scriptedScreen sends a fixed list of commands on its next update.
type scriptedScreen struct {
	id      ID
	next    []Command
	updates int
	last    Input
	err     error
}

func (s *scriptedScreen) ID() ID { return s.id }

func (s *scriptedScreen) Update(_ context.Context, in Input, out chan<- Command) error {
	s.updates++
	s.last = in
	cmds := s.next
	s.next = nil
	for _, c := range cmds {
		if err := Send(out, c); err != nil {
			return err
		}
	}
	return s.err
}

func newTestStack(root Screen, buffer int) *Stack {
	return NewStack(root, DefaultFactory, buffer, logger.NewDiscardLogger())
}

func TestPushAppliesAfterUpdate(t *testing.T) {
	root := &scriptedScreen{id: IDGame, next: []Command{PushScreen(IDPause, nil)}}
	s := newTestStack(root, 4)

	if err := s.Update(context.Background(), Input{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if s.Top().ID() != IDPause || s.Depth() != 2 {
		t.Fatalf("Expected pause on top at depth 2, got %s at %d", s.Top().ID(), s.Depth())
	}

	// The pause screen now receives updates; the root does not.
	if err := s.Update(context.Background(), Pressed(KeyEscape)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if root.updates != 1 {
		t.Errorf("Expected the covered root to be skipped, got %d updates", root.updates)
	}
	if s.Top().ID() != IDGame {
		t.Errorf("Expected escape to pop the pause screen, got %s", s.Top().ID())
	}
}

func TestRootIsNeverPopped(t *testing.T) {
	root := &scriptedScreen{id: IDGame, next: []Command{PopScreen()}}
	s := newTestStack(root, 4)

	if err := s.Update(context.Background(), Input{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if s.Depth() != 1 || s.Top() != root {
		t.Errorf("Expected the root to stay, got depth %d", s.Depth())
	}
}

func TestFullChannelIsFatal(t *testing.T) {
	root := &scriptedScreen{id: IDGame, next: []Command{
		ShowPopup("#fff", "one", time.Second),
		ShowPopup("#fff", "two", time.Second),
	}}
	s := newTestStack(root, 1)

	err := s.Update(context.Background(), Input{})
	if !errors.Is(err, ErrChannelSend) {
		t.Fatalf("Expected ErrChannelSend, got %v", err)
	}
	// The command that did fit was still applied.
	if len(s.Popups()) != 1 {
		t.Errorf("Expected the first popup to be applied, got %d", len(s.Popups()))
	}
}

func TestPopupsExpire(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	root := &scriptedScreen{id: IDGame, next: []Command{ShowPopup("#E8A33D", "Missing 2 scrap", 3*time.Second)}}
	s := newTestStack(root, 4)
	s.SetClock(func() time.Time { return now })

	if err := s.Update(context.Background(), Input{}); err != nil {
		t.Fatal(err)
	}
	popups := s.Popups()
	if len(popups) != 1 || popups[0].Text != "Missing 2 scrap" {
		t.Fatalf("Expected the popup to be live, got %+v", popups)
	}

	now = now.Add(3 * time.Second)
	if len(s.Popups()) != 0 {
		t.Errorf("Expected the popup to expire")
	}
}

func TestInputEdgesAcrossUpdates(t *testing.T) {
	root := &scriptedScreen{id: IDGame}
	s := newTestStack(root, 4)
	ctx := context.Background()

	_ = s.Update(ctx, Pressed(KeyInteract))
	if !root.last.JustPressed(KeyInteract) {
		t.Errorf("Expected a fresh press on the first frame")
	}
	_ = s.Update(ctx, Pressed(KeyInteract))
	if root.last.JustPressed(KeyInteract) || !root.last.Has(KeyInteract) {
		t.Errorf("Expected a held key not to count as a fresh press")
	}
	_ = s.Update(ctx, Input{})
	_ = s.Update(ctx, Pressed(KeyInteract))
	if !root.last.JustPressed(KeyInteract) {
		t.Errorf("Expected a press after release to be fresh again")
	}
}

func TestUpdateErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	s := newTestStack(&scriptedScreen{id: IDGame, err: boom}, 4)

	if err := s.Update(context.Background(), Input{}); !errors.Is(err, boom) {
		t.Errorf("Expected the screen error to surface, got %v", err)
	}
}

func TestDeathScreenCarriesReason(t *testing.T) {
	root := &scriptedScreen{id: IDGame, next: []Command{PushScreen(IDDeath, resources.ReasonBoth)}}
	s := newTestStack(root, 4)
	_ = s.Update(context.Background(), Input{})

	death, ok := s.Top().(*Death)
	if !ok || death.Reason != resources.ReasonBoth {
		t.Fatalf("Expected a death screen with reason BOTH, got %#v", s.Top())
	}
	_ = s.Update(context.Background(), Pressed(KeyConfirm))
	if s.Top() != root {
		t.Errorf("Expected confirm to return to the game")
	}
}

func TestUnknownScreenFailsUpdate(t *testing.T) {
	root := &scriptedScreen{id: IDGame, next: []Command{PushScreen("CREDITS", nil)}}
	s := newTestStack(root, 4)
	if err := s.Update(context.Background(), Input{}); err == nil {
		t.Errorf("Expected pushing an unknown screen to fail")
	}
}

func TestParseKey(t *testing.T) {
	k, ok := ParseKey("Interact")
	if !ok || k != KeyInteract {
		t.Errorf("Expected interact, got %v %v", k, ok)
	}
	if _, ok := ParseKey("jump"); ok {
		t.Errorf("Expected unknown keys to be rejected")
	}
	if keys := Pressed(KeyRight, KeyUp).Keys(); len(keys) != 2 || keys[0] != KeyUp {
		t.Errorf("Expected keys in declaration order, got %v", keys)
	}
}
