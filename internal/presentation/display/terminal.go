package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/penwyp/go-claude-meter/internal/core/constants"
	"github.com/penwyp/go-claude-meter/internal/presentation/interaction"
	"github.com/penwyp/go-claude-meter/internal/presentation/menu"
	"github.com/penwyp/go-claude-meter/internal/util"
	"golang.org/x/term"
)

// TerminalDisplay renders the label and menu to a terminal. On a TTY it
// redraws a small dashboard in the alternate screen; otherwise it prints one
// line per distinct label.
type TerminalDisplay struct {
	out         io.Writer
	interactive bool

	mu                sync.Mutex
	inAlternateScreen bool
	lastLabel         string
	lastRows          []menu.Item
	message           string

	labelColor   *color.Color
	detailColor  *color.Color
	commandColor *color.Color
	messageColor *color.Color
}

// NewTerminalDisplay writes to stdout, redrawing in place when it is a TTY
func NewTerminalDisplay() *TerminalDisplay {
	return NewDisplay(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
}

// NewDisplay creates a display on out
func NewDisplay(out io.Writer, interactive bool) *TerminalDisplay {
	return &TerminalDisplay{
		out:          out,
		interactive:  interactive,
		labelColor:   color.New(color.Bold, color.FgCyan),
		detailColor:  color.New(color.Faint),
		commandColor: color.New(color.FgWhite),
		messageColor: color.New(color.FgYellow),
	}
}

// Interactive reports whether the display redraws in place
func (td *TerminalDisplay) Interactive() bool {
	return td.interactive
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if td.interactive && !td.inAlternateScreen {
		fmt.Fprint(td.out, "\033[?1049h")
		fmt.Fprint(td.out, util.ClearScreen)
		fmt.Fprint(td.out, util.MoveHome)
		fmt.Fprint(td.out, util.HideCursor)
		td.inAlternateScreen = true
	}
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if td.inAlternateScreen {
		fmt.Fprint(td.out, util.ClearScreen)
		fmt.Fprint(td.out, util.MoveHome)
		fmt.Fprint(td.out, util.ShowCursor)
		fmt.Fprint(td.out, "\033[?1049l")
		td.inAlternateScreen = false
	}
}

// Render draws label and rows
func (td *TerminalDisplay) Render(label string, rows []menu.Item) {
	td.mu.Lock()
	defer td.mu.Unlock()

	changed := label != td.lastLabel || !sameRows(rows, td.lastRows)
	td.lastLabel = label
	td.lastRows = append(td.lastRows[:0], rows...)

	if td.interactive {
		td.draw()
		return
	}
	if changed {
		fmt.Fprintln(td.out, td.plainLine(label, rows))
	}
}

// ShowMessage shows a transient status line under the menu
func (td *TerminalDisplay) ShowMessage(message string) {
	td.mu.Lock()
	defer td.mu.Unlock()

	td.message = message
	if td.interactive {
		td.draw()
		return
	}
	if message != "" {
		fmt.Fprintln(td.out, message)
	}
}

// draw repaints the whole dashboard; callers hold td.mu
func (td *TerminalDisplay) draw() {
	var b strings.Builder
	b.WriteString(util.MoveHome)
	b.WriteString(util.ClearScreen)

	header := fmt.Sprintf("%s  %s", constants.AppName, td.labelColor.Sprint(td.lastLabel))
	b.WriteString(header + "\r\n\r\n")

	for _, line := range td.menuLines(td.lastRows) {
		b.WriteString("  " + line + "\r\n")
	}

	if td.message != "" {
		b.WriteString("\r\n" + td.messageColor.Sprint(td.message) + "\r\n")
	}

	fmt.Fprint(td.out, b.String())
}

// menuLines renders rows with separators sized to the widest row
func (td *TerminalDisplay) menuLines(rows []menu.Item) []string {
	texts := make([]string, len(rows))
	width := 0
	for i, row := range rows {
		if row.Separator {
			continue
		}
		texts[i] = row.Text
		if row.ID != "" {
			texts[i] = fmt.Sprintf("[%c] %s", keyFor(row.ID), row.Text)
		}
		if w := util.GetDisplayWidth(texts[i]); w > width {
			width = w
		}
	}

	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		switch {
		case row.Separator:
			lines = append(lines, td.detailColor.Sprint(strings.Repeat("─", width)))
		case row.Enabled:
			lines = append(lines, td.commandColor.Sprint(texts[i]))
		default:
			lines = append(lines, td.detailColor.Sprint(util.PadRight(texts[i], width)))
		}
	}
	return lines
}

// plainLine renders "label | row | row" from the informational rows
func (td *TerminalDisplay) plainLine(label string, rows []menu.Item) string {
	parts := []string{label}
	for _, row := range rows {
		if row.Separator || row.ID != "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(row.Text))
	}
	return strings.Join(parts, " | ")
}

func keyFor(id string) rune {
	for _, b := range interaction.KeyBindings {
		if string(b.Command) == id {
			return b.Key
		}
	}
	return ' '
}

func sameRows(a, b []menu.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
