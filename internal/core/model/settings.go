package model

import (
	"fmt"
	"strings"
)

// StatusMode selects which value the status label shows
type StatusMode string

const (
	StatusSession StatusMode = "session"
	StatusWeekly  StatusMode = "weekly"
	StatusBoth    StatusMode = "both"
	StatusHigher  StatusMode = "higher"
)

// BarStyle selects the glyph pair of the progress bar
type BarStyle string

const (
	BarCircles BarStyle = "circles"
	BarBlocks  BarStyle = "blocks"
	BarBar     BarStyle = "bar"
	BarDots    BarStyle = "dots"
)

// MaxBarLength bounds the progress bar so a menu row stays printable
const MaxBarLength = 100

// MaxPollMinutes bounds the poll interval to one day
const MaxPollMinutes = 24 * 60

// DisplaySettings is the user-editable display and alert configuration.
// JSON keys match the settings file written by the desktop app.
type DisplaySettings struct {
	StatusMode      StatusMode `json:"menuBarDisplay" yaml:"menuBarDisplay"`
	ShowPercentSign bool       `json:"showPercentSymbol" yaml:"showPercentSymbol"`
	BarStyle        BarStyle   `json:"progressStyle" yaml:"progressStyle"`
	BarLength       uint       `json:"progressLength" yaml:"progressLength"`
	PollMinutes     uint       `json:"refreshInterval" yaml:"refreshInterval"` // 0 = disabled
	SessionAlertPct uint       `json:"notifySession" yaml:"notifySession"`     // 0 = disabled
	WeeklyAlertPct  uint       `json:"notifyWeekly" yaml:"notifyWeekly"`       // 0 = disabled
}

// DefaultSettings returns the configuration used when nothing is persisted
func DefaultSettings() DisplaySettings {
	return DisplaySettings{
		StatusMode:      StatusSession,
		ShowPercentSign: true,
		BarStyle:        BarCircles,
		BarLength:       10,
		PollMinutes:     15,
		SessionAlertPct: 80,
		WeeklyAlertPct:  80,
	}
}

// AlertThreshold returns the configured threshold for a window kind
func (s DisplaySettings) AlertThreshold(kind WindowKind) uint {
	switch kind {
	case WindowSession:
		return s.SessionAlertPct
	case WindowWeekly:
		return s.WeeklyAlertPct
	default:
		return 0
	}
}

// Validate rejects settings that cannot be rendered as the user asked
func (s DisplaySettings) Validate() error {
	switch s.StatusMode {
	case StatusSession, StatusWeekly, StatusBoth, StatusHigher:
	default:
		return fmt.Errorf("%w: unknown status mode %q (session, weekly, both, higher)", ErrInvalidSettings, s.StatusMode)
	}
	switch s.BarStyle {
	case BarCircles, BarBlocks, BarBar, BarDots:
	default:
		return fmt.Errorf("%w: unknown progress style %q (circles, blocks, bar, dots)", ErrInvalidSettings, s.BarStyle)
	}
	if s.BarLength > MaxBarLength {
		return fmt.Errorf("%w: progress length %d exceeds %d", ErrInvalidSettings, s.BarLength, MaxBarLength)
	}
	if s.PollMinutes > MaxPollMinutes {
		return fmt.Errorf("%w: refresh interval %d exceeds %d minutes", ErrInvalidSettings, s.PollMinutes, MaxPollMinutes)
	}
	return nil
}

// ParseStatusMode parses a mode name case-insensitively
func ParseStatusMode(v string) (StatusMode, error) {
	mode := StatusMode(strings.ToLower(strings.TrimSpace(v)))
	switch mode {
	case StatusSession, StatusWeekly, StatusBoth, StatusHigher:
		return mode, nil
	}
	return "", fmt.Errorf("%w: unknown status mode %q", ErrInvalidSettings, v)
}

// ParseBarStyle parses a style name case-insensitively
func ParseBarStyle(v string) (BarStyle, error) {
	style := BarStyle(strings.ToLower(strings.TrimSpace(v)))
	switch style {
	case BarCircles, BarBlocks, BarBar, BarDots:
		return style, nil
	}
	return "", fmt.Errorf("%w: unknown progress style %q", ErrInvalidSettings, v)
}
