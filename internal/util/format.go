package util

import (
	"fmt"
	"time"

	"github.com/penwyp/go-claude-meter/internal/core/constants"
)

// Relative reset-time strings
const (
	ResetAnyMoment = "any moment"
	ResetUnknown   = "unknown"
)

// clockLayout renders a local wall-clock time like "3:04 PM"
const clockLayout = "3:04 PM"

// FormatRelativeTime describes when resetAt occurs relative to now. All
// branches are chosen from the difference, so the result must be
// recomputed on every render.
func FormatRelativeTime(resetAt string, now time.Time) string {
	at, err := ParseTimestamp(resetAt)
	if err != nil {
		return ResetUnknown
	}

	// Sub-second remainders count as already reset
	diff := at.Sub(now)
	if diff < time.Second {
		return ResetAnyMoment
	}

	minutes := int64(diff / time.Minute)
	hours := int64(diff / time.Hour)
	local := GetTimeProvider().In(at)

	switch {
	case minutes < constants.MinutesPerHour:
		return fmt.Sprintf("in %dm", minutes)
	case hours < constants.HoursPerDay:
		mins := minutes % constants.MinutesPerHour
		if mins > 0 {
			return fmt.Sprintf("in %dh %dm", hours, mins)
		}
		return fmt.Sprintf("in %dh", hours)
	case hours < constants.HoursTomorrowThreshold:
		return "tomorrow " + local.Format(clockLayout)
	default:
		return local.Format("Mon " + clockLayout)
	}
}

// FormatPercent renders a rounded percentage right-aligned to three digits
func FormatPercent(pct int) string {
	return fmt.Sprintf("%3d%%", pct)
}
