package constants

import "time"

const (
	// Relative reset-time thresholds
	MinutesPerHour         = 60
	HoursPerDay            = 24
	HoursTomorrowThreshold = 48

	// Polling
	PollUnit                = time.Minute
	DisabledPollCheckPeriod = 60 * time.Second

	// Upstream request bound
	DefaultAPITimeout = 30 * time.Second

	// Usage history
	DefaultHistoryRetentionDays = 30
	DefaultHistoryPruneCron     = "0 0 3 * * *"
)
