package util

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// TimeProvider renders instants in the configured display timezone
type TimeProvider struct {
	location *time.Location
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	providerMu         sync.Mutex
)

// InitializeTimeProvider sets the global display timezone ("" and "Local" mean the system zone)
func InitializeTimeProvider(timezone string) error {
	provider := &TimeProvider{}
	if err := provider.SetTimezone(timezone); err != nil {
		return err
	}

	providerMu.Lock()
	globalTimeProvider = provider
	providerMu.Unlock()
	return nil
}

// GetTimeProvider returns the global time provider, defaulting to Local
func GetTimeProvider() *TimeProvider {
	providerMu.Lock()
	defer providerMu.Unlock()

	if globalTimeProvider == nil {
		globalTimeProvider = &TimeProvider{location: time.Local}
	}
	return globalTimeProvider
}

// SetTimezone updates the display timezone
func (tp *TimeProvider) SetTimezone(timezone string) error {
	loc := time.Local
	if timezone != "" && timezone != "Local" && timezone != "auto" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Europe/London, Asia/Tokyo", timezone, err)
		}
		loc = l
	}

	tp.mu.Lock()
	tp.location = loc
	tp.mu.Unlock()
	return nil
}

// Location returns the display timezone
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	if tp.location == nil {
		return time.Local
	}
	return tp.location
}

// Now returns the current time in the display timezone
func (tp *TimeProvider) Now() time.Time {
	return time.Now().In(tp.Location())
}

// In converts a time to the display timezone
func (tp *TimeProvider) In(t time.Time) time.Time {
	return t.In(tp.Location())
}

// Format formats a time in the display timezone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	return t.In(tp.Location()).Format(layout)
}

// timestampLayouts are tried in order; upstream sends RFC 3339 with fractional seconds
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
}

// ParseTimestamp parses an upstream reset timestamp
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q: %w", value, lastErr)
}
