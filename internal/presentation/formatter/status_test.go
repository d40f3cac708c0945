package formatter

import (
	"testing"
	"time"

	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(pct float64, resetsAt string) *model.UsageWindow {
	return &model.UsageWindow{Utilization: pct, ResetsAt: resetsAt}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		name     string
		snapshot model.UsageSnapshot
		mode     model.StatusMode
		percent  bool
		expected string
	}{
		{name: "session", snapshot: model.UsageSnapshot{Session: window(44.6, ""), Weekly: window(90, "")}, mode: model.StatusSession, percent: true, expected: "45%"},
		{name: "session absent", snapshot: model.UsageSnapshot{Weekly: window(90, "")}, mode: model.StatusSession, percent: true, expected: "--"},
		{name: "weekly", snapshot: model.UsageSnapshot{Session: window(10, ""), Weekly: window(90, "")}, mode: model.StatusWeekly, percent: true, expected: "90%"},
		{name: "weekly absent", snapshot: model.UsageSnapshot{Session: window(10, "")}, mode: model.StatusWeekly, percent: false, expected: "--"},
		{name: "both", snapshot: model.UsageSnapshot{Session: window(45, ""), Weekly: window(90, "")}, mode: model.StatusBoth, percent: true, expected: "45/90%"},
		{name: "both without percent", snapshot: model.UsageSnapshot{Session: window(45, ""), Weekly: window(90, "")}, mode: model.StatusBoth, percent: false, expected: "45/90"},
		{name: "both session only", snapshot: model.UsageSnapshot{Session: window(45, "")}, mode: model.StatusBoth, percent: true, expected: "45%"},
		{name: "both weekly only", snapshot: model.UsageSnapshot{Weekly: window(90, "")}, mode: model.StatusBoth, percent: true, expected: "90%"},
		{name: "higher", snapshot: model.UsageSnapshot{Session: window(45, ""), Weekly: window(30, "")}, mode: model.StatusHigher, percent: true, expected: "45%"},
		{name: "higher session absent", snapshot: model.UsageSnapshot{Weekly: window(60, "")}, mode: model.StatusHigher, percent: true, expected: "60%"},
		{name: "higher nothing", snapshot: model.UsageSnapshot{}, mode: model.StatusHigher, percent: true, expected: "--"},
		{name: "unknown mode behaves like session", snapshot: model.UsageSnapshot{Session: window(12, ""), Weekly: window(99, "")}, mode: "sideways", percent: true, expected: "12%"},
		{name: "over hundred passes through", snapshot: model.UsageSnapshot{Session: window(104.4, "")}, mode: model.StatusSession, percent: true, expected: "104%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := model.DefaultSettings()
			settings.StatusMode = tt.mode
			settings.ShowPercentSign = tt.percent
			assert.Equal(t, tt.expected, StatusLabel(tt.snapshot, settings))
		})
	}
}

func TestDefaultLabelDiffersFromNoData(t *testing.T) {
	assert.Equal(t, "--%", DefaultLabel)
	assert.NotEqual(t, DefaultLabel, StatusLabel(model.UsageSnapshot{}, model.DefaultSettings()))
}

func TestDetailLines(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	t.Cleanup(func() { _ = util.InitializeTimeProvider("Local") })

	now := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	in := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }

	t.Run("nil snapshot", func(t *testing.T) {
		assert.Equal(t, []string{"Not configured"}, DetailLines(nil, model.DefaultSettings(), now))
	})

	t.Run("both windows session first", func(t *testing.T) {
		snapshot := &model.UsageSnapshot{
			Session: window(30, in(2*time.Hour+5*time.Minute)),
			Weekly:  window(72.5, in(72*time.Hour)),
		}
		lines := DetailLines(snapshot, model.DefaultSettings(), now)
		assert.Equal(t, []string{
			"Session  ●●●○○○○○○○  30%",
			"         ↻ in 2h 5m",
			"Weekly   ●●●●●●●○○○  73%",
			"         ↻ Sat 9:00 AM",
		}, lines)
	})

	t.Run("absent window is skipped", func(t *testing.T) {
		snapshot := &model.UsageSnapshot{Weekly: window(5, "")}
		settings := model.DefaultSettings()
		settings.BarStyle = model.BarBlocks
		settings.BarLength = 4
		assert.Equal(t, []string{
			"Weekly   ▱▱▱▱   5%",
			"         ↻ unknown",
		}, DetailLines(snapshot, settings, now))
	})

	t.Run("empty snapshot has no rows", func(t *testing.T) {
		assert.Empty(t, DetailLines(&model.UsageSnapshot{}, model.DefaultSettings(), now))
	})
}
