package agent

import (
	"context"
	"time"

	"github.com/penwyp/go-claude-meter/internal/core/constants"
	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/util"
)

// spawner starts a detached refresh
type spawner interface {
	Spawn(ctx context.Context, trigger Trigger) <-chan error
}

// Poller is the single long-lived timer loop. It reads the poll interval at
// the top of every cycle, so a change applies from the next cycle.
type Poller struct {
	state         *State
	refresher     spawner
	unit          time.Duration
	disabledCheck time.Duration
	after         func(time.Duration) <-chan time.Time
}

// PollerOption customises a Poller
type PollerOption func(*Poller)

// WithPollUnit sets the length of one PollMinutes step
func WithPollUnit(unit time.Duration) PollerOption {
	return func(p *Poller) {
		p.unit = unit
	}
}

// WithDisabledCheck sets how often a disabled poller re-reads its interval
func WithDisabledCheck(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.disabledCheck = d
		}
	}
}

// NewPoller creates a poller driving refresher from state's settings
func NewPoller(state *State, refresher spawner, opts ...PollerOption) *Poller {
	p := &Poller{
		state:         state,
		refresher:     refresher,
		unit:          constants.PollUnit,
		disabledCheck: constants.DisabledPollCheckPeriod,
		after:         time.After,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run loops until ctx is cancelled. A zero interval soft-disables polling:
// the loop keeps waking up to notice when it is re-enabled.
func (p *Poller) Run(ctx context.Context) error {
	for {
		minutes := min(p.state.Settings().PollMinutes, model.MaxPollMinutes)

		wait := p.disabledCheck
		if minutes > 0 {
			wait = time.Duration(minutes) * p.unit
		}
		if wait <= 0 {
			wait = p.disabledCheck
		}

		select {
		case <-ctx.Done():
			util.LogDebug("Poller stopped")
			return ctx.Err()
		case <-p.after(wait):
		}

		if minutes == 0 {
			continue
		}
		p.refresher.Spawn(ctx, TriggerTimer)
	}
}
