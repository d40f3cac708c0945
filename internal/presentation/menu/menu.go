package menu

import (
	"time"

	"github.com/penwyp/go-claude-meter/internal/core/constants"
	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/presentation/formatter"
)

// Item is one row of the detail menu. Informational rows have no ID and are
// disabled; command rows carry the command ID the renderer reports back.
type Item struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text,omitempty"`
	Enabled   bool   `json:"enabled"`
	Separator bool   `json:"separator,omitempty"`
}

// Separator returns a divider row
func Separator() Item {
	return Item{Separator: true}
}

// Commands returns the fixed command rows in display order
func Commands() []Item {
	return []Item{
		{ID: constants.MenuOpenClaude, Text: "Open Claude", Enabled: true},
		{ID: constants.MenuRefresh, Text: "Refresh", Enabled: true},
		Separator(),
		{ID: constants.MenuSettings, Text: "Settings...", Enabled: true},
		{ID: constants.MenuQuit, Text: "Quit", Enabled: true},
	}
}

// DetailItems wraps the presenter rows as disabled menu items
func DetailItems(snapshot *model.UsageSnapshot, settings model.DisplaySettings, now time.Time) []Item {
	lines := formatter.DetailLines(snapshot, settings, now)
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		items = append(items, Item{Text: line})
	}
	return items
}

// Build assembles the full menu: detail rows, a separator, then the commands
func Build(snapshot *model.UsageSnapshot, settings model.DisplaySettings, now time.Time) []Item {
	items := DetailItems(snapshot, settings, now)
	items = append(items, Separator())
	return append(items, Commands()...)
}
