package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// Trigger fires a task once immediately and then on every interval tick,
// unconditionally: a failed or still-running previous tick never gates the
// next one. It has no terminal state of its own and stops only when the
// context is cancelled.
type Trigger struct {
	name     string
	interval time.Duration
	run      func(context.Context) error
}

func New(name string, interval time.Duration, run func(context.Context) error) (*Trigger, error) {
	if interval <= 0 {
		return nil, errors.New("trigger interval must be positive")
	}
	if run == nil {
		return nil, errors.New("trigger task is required")
	}
	if name == "" {
		name = "trigger"
	}
	return &Trigger{name: name, interval: interval, run: run}, nil
}

// Run blocks until ctx is cancelled.
func (t *Trigger) Run(ctx context.Context) {
	log.Info().Str("trigger", t.name).Dur("interval", t.interval).Msg("recurring trigger started")

	t.fire(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("trigger", t.name).Msg("recurring trigger stopped")
			return
		case <-ticker.C:
			t.fire(ctx)
		}
	}
}

// Start launches Run in its own goroutine and returns a channel closed once
// the trigger has stopped.
func (t *Trigger) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.Run(ctx)
	}()
	return done
}

func (t *Trigger) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := t.run(ctx); err != nil {
		log.Error().Err(err).Str("trigger", t.name).Msg("triggered run failed")
	}
}
