// Package engine contains the game loop and simulation logic.
// This is the heartbeat of the colony.
//
// ARCHITECTURAL RULE: the Engine never touches the screen stack directly.
// It sends commands on the channel it is handed; the stack applies them
// after the update returns.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/redhaven/colony/internal/platform/logger"
	"github.com/redhaven/colony/internal/screen"
)

// StepFunc runs one frame.
type StepFunc func(ctx context.Context) error

// Ticker manages the frame loop heartbeat.
// It does NOT know about the colonist or machines - only frame pacing.
type Ticker struct {
	interval time.Duration
	step     StepFunc
	logger   *logger.Logger
	frames   int64
	skipped  int64
	stopChan chan struct{}
}

// NewTicker creates a frame loop calling step every interval.
func NewTicker(interval time.Duration, step StepFunc, log *logger.Logger) *Ticker {
	return &Ticker{
		interval: interval,
		step:     step,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// Start runs the loop until ctx is done, Stop is called, or a step fails
// with screen.ErrChannelSend. Other step errors skip the frame.
func (t *Ticker) Start(ctx context.Context) error {
	t.logger.Info("Frame loop started.")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Frame loop stopped by context.")
			return nil
		case <-t.stopChan:
			t.logger.Info("Frame loop stopped manually.")
			return nil
		case <-ticker.C:
			if err := t.frame(ctx); err != nil {
				return err
			}
		}
	}
}

func (t *Ticker) frame(ctx context.Context) error {
	t.frames++
	err := t.step(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, screen.ErrChannelSend):
		t.logger.Error("Frame loop aborted: " + err.Error())
		return err
	case errors.Is(err, context.Canceled):
		return nil
	}
	t.skipped++
	t.logger.Warn("Skipping frame: " + err.Error())
	return nil
}

// Stop gracefully stops the loop.
func (t *Ticker) Stop() {
	close(t.stopChan)
}

// Frames returns how many frames ran and how many of them were skipped.
func (t *Ticker) Frames() (int64, int64) {
	return t.frames, t.skipped
}
