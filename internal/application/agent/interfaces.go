package agent

import (
	"context"

	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/data/settings"
	"github.com/penwyp/go-claude-meter/internal/presentation/interaction"
	"github.com/penwyp/go-claude-meter/internal/presentation/menu"
)

// CredentialStore loads and saves the endpoint credentials
type CredentialStore interface {
	// Load returns empty credentials when none are saved
	Load() (model.Credentials, error)
	Save(creds model.Credentials) error
}

// SettingsStore loads and saves display settings
type SettingsStore interface {
	// Load returns defaults when nothing is saved
	Load() (model.DisplaySettings, error)
	Save(settings model.DisplaySettings) error
}

// UsageFetcher performs one authenticated usage request
type UsageFetcher interface {
	FetchUsage(ctx context.Context, orgID, sessionKey string) (model.UsageSnapshot, error)
}

// Notifier shows a user-visible notification
type Notifier interface {
	Show(title, body string) error
}

// Renderer draws the status label and detail menu
type Renderer interface {
	Render(label string, rows []menu.Item)
}

// MessageRenderer is implemented by renderers that can show a transient
// status line, used to surface manual refresh errors
type MessageRenderer interface {
	ShowMessage(message string)
}

// HistoryRecorder stores applied snapshots
type HistoryRecorder interface {
	Record(ctx context.Context, snapshot model.UsageSnapshot) error
}

// InputHandler delivers menu commands from the keyboard
type InputHandler interface {
	// Events returns a channel of commands
	Events() <-chan interaction.Command
	// Close restores the terminal
	Close() error
}

// SettingsMonitor reports settings edited outside the agent
type SettingsMonitor interface {
	Events() <-chan settings.Event
	Close() error
}
