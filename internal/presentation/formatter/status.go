package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-claude-meter/internal/core/constants"
	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/util"
)

// DefaultLabel is shown until the first successful fetch
const DefaultLabel = constants.LabelNeverFetched

// NotConfiguredRow replaces the detail rows while no snapshot exists
const NotConfiguredRow = "Not configured"

// rowIndent aligns the reset row under the bar column
var rowIndent = strings.Repeat(" ", 9)

// StatusLabel renders the compact label for the configured status mode.
// A snapshot without a usable window renders as "--" without a percent sign.
func StatusLabel(snapshot model.UsageSnapshot, settings model.DisplaySettings) string {
	session, hasSession := roundedWindow(snapshot.Session)
	weekly, hasWeekly := roundedWindow(snapshot.Weekly)

	var value string
	switch settings.StatusMode {
	case model.StatusWeekly:
		if hasWeekly {
			value = strconv.Itoa(weekly)
		}
	case model.StatusBoth:
		switch {
		case hasSession && hasWeekly:
			value = fmt.Sprintf("%d/%d", session, weekly)
		case hasSession:
			value = strconv.Itoa(session)
		case hasWeekly:
			value = strconv.Itoa(weekly)
		}
	case model.StatusHigher:
		switch {
		case hasSession && hasWeekly:
			value = strconv.Itoa(max(session, weekly))
		case hasSession:
			value = strconv.Itoa(session)
		case hasWeekly:
			value = strconv.Itoa(weekly)
		}
	default:
		// session, and anything unrecognised
		if hasSession {
			value = strconv.Itoa(session)
		}
	}

	if value == "" {
		return constants.LabelNoData
	}
	if settings.ShowPercentSign {
		return value + "%"
	}
	return value
}

// DetailLines renders the informational rows: a bar row and a reset row per
// present window, session first. A nil snapshot yields the single
// NotConfiguredRow.
func DetailLines(snapshot *model.UsageSnapshot, settings model.DisplaySettings, now time.Time) []string {
	if snapshot == nil {
		return []string{NotConfiguredRow}
	}

	lines := make([]string, 0, 4)
	for _, kind := range []model.WindowKind{model.WindowSession, model.WindowWeekly} {
		window := snapshot.Window(kind)
		if window == nil {
			continue
		}
		lines = append(lines,
			WindowRow(kind, *window, settings),
			rowIndent+"↻ "+util.FormatRelativeTime(window.ResetsAt, now),
		)
	}
	return lines
}

// WindowRow renders "Session  ●●●○○○○○○○  30%"
func WindowRow(kind model.WindowKind, window model.UsageWindow, settings model.DisplaySettings) string {
	bar := util.RenderProgressBar(window.Utilization, settings.BarLength, settings.BarStyle)
	return fmt.Sprintf("%s %s %s", util.PadRight(kind.Title(), 8), bar, util.FormatPercent(window.RoundedPercent()))
}

func roundedWindow(w *model.UsageWindow) (int, bool) {
	if w == nil {
		return 0, false
	}
	return w.RoundedPercent(), true
}
