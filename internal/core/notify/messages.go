package notify

import (
	"fmt"

	"github.com/penwyp/go-claude-meter/internal/core/model"
)

// Test notification text
const (
	TestTitle = "Seekers"
	TestBody  = "This is a test notification!"
)

// AlertMessage returns the title and body of a threshold alert
func AlertMessage(kind model.WindowKind, pct int) (string, string) {
	return fmt.Sprintf("Claude %s Limit", kind.Title()),
		fmt.Sprintf("%s usage at %d%%", kind.Title(), pct)
}
