package notify

import (
	"math"
	"sync"

	"github.com/penwyp/go-claude-meter/internal/core/model"
)

// Decision is the outcome of evaluating a window against its threshold
type Decision int

const (
	NoFire Decision = iota
	Fire
)

func (d Decision) String() string {
	if d == Fire {
		return "fire"
	}
	return "no-fire"
}

// latch remembers the threshold last notified for one window kind
type latch struct {
	mu        sync.Mutex
	lastFired *uint
}

// Debouncer keeps one independent latch per window kind so a threshold
// alert fires once until utilization drops back below it.
type Debouncer struct {
	session latch
	weekly  latch
}

// NewDebouncer creates a Debouncer with both latches cleared
func NewDebouncer() *Debouncer {
	return &Debouncer{}
}

func (d *Debouncer) latchFor(kind model.WindowKind) *latch {
	if kind == model.WindowWeekly {
		return &d.weekly
	}
	return &d.session
}

// Evaluate decides whether to notify for the given utilization. A zero
// threshold disables alerts and leaves the latch untouched.
func (d *Debouncer) Evaluate(kind model.WindowKind, utilization float64, threshold uint) Decision {
	if threshold == 0 {
		return NoFire
	}

	l := d.latchFor(kind)
	l.mu.Lock()
	defer l.mu.Unlock()

	pct := math.Round(utilization)
	if pct < float64(threshold) {
		l.lastFired = nil
		return NoFire
	}

	if l.lastFired != nil && *l.lastFired == threshold {
		return NoFire
	}

	fired := threshold
	l.lastFired = &fired
	return Fire
}

// LastFired returns the threshold currently latched for a window kind
func (d *Debouncer) LastFired(kind model.WindowKind) (uint, bool) {
	l := d.latchFor(kind)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lastFired == nil {
		return 0, false
	}
	return *l.lastFired, true
}
