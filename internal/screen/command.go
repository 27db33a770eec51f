// Package screen routes control between the active screens of the game.
// Screens never touch the stack directly: during Update they send Commands
// on a channel, and the stack applies them once the update has returned.
package screen

import (
	"context"
	"errors"
	"time"
)

// ID names a screen.
type ID string

const (
	IDGame  ID = "GAME"
	IDPause ID = "PAUSE"
	IDDeath ID = "DEATH"
	IDWin   ID = "WIN"
)

// CommandKind is the closed set of stack operations.
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandPush
	CommandPop
	CommandPopup
)

func (k CommandKind) String() string {
	switch k {
	case CommandPush:
		return "push"
	case CommandPop:
		return "pop"
	case CommandPopup:
		return "popup"
	default:
		return "none"
	}
}

// Popup is a timed notice drawn over the active screen.
type Popup struct {
	Color    string        `json:"color"`
	Text     string        `json:"text"`
	Duration time.Duration `json:"duration"`
}

// Command is one instruction for the stack.
type Command struct {
	Kind    CommandKind
	Target  ID  // for CommandPush
	Payload any // for CommandPush, handed to the Factory
	Popup   Popup
}

// PushScreen asks the stack to build and push the target screen.
func PushScreen(target ID, payload any) Command {
	return Command{Kind: CommandPush, Target: target, Payload: payload}
}

// PopScreen asks the stack to remove the active screen.
func PopScreen() Command {
	return Command{Kind: CommandPop}
}

// ShowPopup asks the stack to display a timed notice.
func ShowPopup(color, text string, d time.Duration) Command {
	return Command{Kind: CommandPopup, Popup: Popup{Color: color, Text: text, Duration: d}}
}

// ErrChannelSend means a command could not be delivered to the stack. The
// stack is structurally broken when this happens; callers abort the update.
var ErrChannelSend = errors.New("screen command channel full")

// Send delivers cmd without blocking.
func Send(out chan<- Command, cmd Command) error {
	select {
	case out <- cmd:
		return nil
	default:
		return ErrChannelSend
	}
}

// Screen is one layer of the stack. Only the top screen is updated.
type Screen interface {
	ID() ID
	Update(ctx context.Context, in Input, out chan<- Command) error
}
