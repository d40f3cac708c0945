package notifier

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/penwyp/go-claude-meter/internal/core/constants"
	"github.com/penwyp/go-claude-meter/internal/util"
)

// Backend names accepted by New
const (
	BackendAuto    = "auto"
	BackendDesktop = "desktop"
	BackendLog     = "log"
)

// Notifier shows a user-visible notification
type Notifier interface {
	Show(title, body string) error
}

// runner executes a command; replaced in tests
type runner func(name string, args ...string) error

func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w (%s)", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// New returns the notifier for backend. "auto" prefers the desktop and
// falls back to the log when no notification tool is installed.
func New(backend string) (Notifier, error) {
	switch strings.ToLower(backend) {
	case "", BackendAuto:
		if d, err := NewDesktop(); err == nil {
			return d, nil
		}
		util.LogWarn("No desktop notification tool found; notifications go to the log")
		return &LogNotifier{}, nil
	case BackendDesktop:
		return NewDesktop()
	case BackendLog:
		return &LogNotifier{}, nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q (auto, desktop, log)", backend)
	}
}

// DesktopNotifier uses notify-send on Linux and osascript on macOS
type DesktopNotifier struct {
	tool string
	run  runner
}

// NewDesktop locates the platform notification tool
func NewDesktop() (*DesktopNotifier, error) {
	name := "notify-send"
	if runtime.GOOS == "darwin" {
		name = "osascript"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%s not found: %w", name, err)
	}
	return &DesktopNotifier{tool: path, run: runCommand}, nil
}

// Show displays the notification
func (d *DesktopNotifier) Show(title, body string) error {
	return d.run(d.tool, d.args(title, body)...)
}

func (d *DesktopNotifier) args(title, body string) []string {
	if strings.HasSuffix(d.tool, "osascript") {
		script := fmt.Sprintf("display notification %s with title %s", appleScriptQuote(body), appleScriptQuote(title))
		return []string{"-e", script}
	}
	return []string{"--app-name=" + constants.AppName, title, body}
}

func appleScriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// LogNotifier writes notifications to the agent log
type LogNotifier struct{}

// Show logs the notification at info level
func (LogNotifier) Show(title, body string) error {
	util.LogInfo("Notification", util.F("title", title), util.F("body", body))
	return nil
}
