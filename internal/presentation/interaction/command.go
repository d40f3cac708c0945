package interaction

import "github.com/penwyp/go-claude-meter/internal/core/constants"

// Command is a menu command the agent reacts to
type Command string

const (
	CommandOpenClaude Command = constants.MenuOpenClaude
	CommandRefresh    Command = constants.MenuRefresh
	CommandSettings   Command = constants.MenuSettings
	CommandQuit       Command = constants.MenuQuit
)

// ParseCommand maps a menu item ID to a Command
func ParseCommand(id string) (Command, bool) {
	switch Command(id) {
	case CommandOpenClaude, CommandRefresh, CommandSettings, CommandQuit:
		return Command(id), true
	}
	return "", false
}

// KeyBindings lists the single-key shortcuts shown in the footer
var KeyBindings = []struct {
	Key     rune
	Command Command
}{
	{'r', CommandRefresh},
	{'o', CommandOpenClaude},
	{'s', CommandSettings},
	{'q', CommandQuit},
}

// CommandForKey maps a key event to a Command
func CommandForKey(ev KeyEvent) (Command, bool) {
	if ev.Type == KeyEscape {
		return CommandQuit, true
	}
	// Ctrl+C
	if ev.Key == 3 {
		return CommandQuit, true
	}
	key := ev.Key
	if key >= 'A' && key <= 'Z' {
		key += 'a' - 'A'
	}
	for _, b := range KeyBindings {
		if b.Key == key {
			return b.Command, true
		}
	}
	return "", false
}
