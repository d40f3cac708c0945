package history

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-claude-meter/internal/util"
	"github.com/robfig/cron/v3"
)

// Pruner deletes old history on a cron schedule
type Pruner struct {
	cron      *cron.Cron
	recorder  Recorder
	retention time.Duration
	ctx       context.Context
}

// NewPruner creates a pruner keeping retentionDays of history. schedule
// uses the six-field (seconds-first) cron syntax.
func NewPruner(ctx context.Context, recorder Recorder, retentionDays int, schedule string) (*Pruner, error) {
	if retentionDays <= 0 {
		return nil, fmt.Errorf("history retention must be positive, got %d days", retentionDays)
	}

	p := &Pruner{
		cron:      cron.New(cron.WithSeconds()),
		recorder:  recorder,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		ctx:       ctx,
	}
	if _, err := p.cron.AddFunc(schedule, func() { _, _ = p.RunNow() }); err != nil {
		return nil, fmt.Errorf("register prune task %q: %w", schedule, err)
	}
	return p, nil
}

// Start starts the schedule
func (p *Pruner) Start() {
	p.cron.Start()
	util.LogDebug("History pruning scheduled")
}

// Stop stops the schedule and waits for a running prune
func (p *Pruner) Stop() {
	<-p.cron.Stop().Done()
}

// RunNow prunes immediately
func (p *Pruner) RunNow() (int64, error) {
	cutoff := time.Now().Add(-p.retention)
	n, err := p.recorder.Prune(p.ctx, cutoff)
	if err != nil {
		util.LogWarnf("History prune failed: %v", err)
		return 0, err
	}
	if n > 0 {
		util.LogInfof("Pruned %d history entries older than %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}
