package model

import (
	"math"
	"time"
)

// WindowKind identifies a metering window
type WindowKind int

const (
	WindowSession WindowKind = iota
	WindowWeekly
)

// String returns the lowercase window name used in logs and metric labels
func (k WindowKind) String() string {
	switch k {
	case WindowSession:
		return "session"
	case WindowWeekly:
		return "weekly"
	default:
		return "unknown"
	}
}

// Title returns the capitalised window name used in menu rows
func (k WindowKind) Title() string {
	switch k {
	case WindowSession:
		return "Session"
	case WindowWeekly:
		return "Weekly"
	default:
		return "Unknown"
	}
}

// UsageWindow is one metering period as reported upstream.
// Utilization is passed through unclamped; upstream may report more than 100.
type UsageWindow struct {
	Utilization float64 `json:"utilization"`
	ResetsAt    string  `json:"resets_at"`
}

// RoundedPercent returns utilization rounded half away from zero
func (w UsageWindow) RoundedPercent() int {
	return int(math.Round(w.Utilization))
}

// UsageSnapshot is the latest reading for both windows. Either may be nil
// when the endpoint omitted it.
type UsageSnapshot struct {
	Session   *UsageWindow `json:"five_hour"`
	Weekly    *UsageWindow `json:"seven_day"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Window returns the window of the given kind, or nil
func (s UsageSnapshot) Window(kind WindowKind) *UsageWindow {
	switch kind {
	case WindowSession:
		return s.Session
	case WindowWeekly:
		return s.Weekly
	default:
		return nil
	}
}

// Clone returns a deep copy so callers never share window pointers with the store
func (s UsageSnapshot) Clone() UsageSnapshot {
	out := UsageSnapshot{FetchedAt: s.FetchedAt}
	if s.Session != nil {
		w := *s.Session
		out.Session = &w
	}
	if s.Weekly != nil {
		w := *s.Weekly
		out.Weekly = &w
	}
	return out
}
