package history

import (
	"context"
	"time"

	"github.com/penwyp/go-claude-meter/internal/core/model"
)

// Entry is one recorded reading. Absent windows are nil.
type Entry struct {
	ID              int64     `json:"id" yaml:"id"`
	FetchedAt       time.Time `json:"fetched_at" yaml:"fetched_at"`
	Session         *float64  `json:"session,omitempty" yaml:"session,omitempty"`
	SessionResetsAt string    `json:"session_resets_at,omitempty" yaml:"session_resets_at,omitempty"`
	Weekly          *float64  `json:"weekly,omitempty" yaml:"weekly,omitempty"`
	WeeklyResetsAt  string    `json:"weekly_resets_at,omitempty" yaml:"weekly_resets_at,omitempty"`
}

// Recorder stores successful readings for later inspection
type Recorder interface {
	Record(ctx context.Context, snapshot model.UsageSnapshot) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}

// NoopRecorder is used when history is disabled
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, model.UsageSnapshot) error { return nil }

func (NoopRecorder) Recent(context.Context, int) ([]Entry, error) { return nil, nil }

func (NoopRecorder) Prune(context.Context, time.Time) (int64, error) { return 0, nil }

func (NoopRecorder) Close() error { return nil }
