package constants

const (
	AppName = "go-claude-meter"

	// Upstream endpoints
	DefaultAPIBaseURL = "https://claude.ai/api"
	DefaultClaudeURL  = "https://claude.ai"

	// Config directory layout (under ~/.config/)
	ConfigDirName   = "seekers"
	CredentialsFile = "credentials.json"
	SettingsFile    = "settings.json"
	AgentConfigFile = "agent.yaml"
	HistoryFile     = "history.db"
	LogFile         = "logs/agent.log"

	// Owner read/write only
	SecureFileMode = 0o600

	// Label shown before the first successful fetch
	LabelNeverFetched = "--%"
	// Label shown when a fetch returned no usable window
	LabelNoData = "--"

	EnvPrefix = "SEEKERS"
)

// Version is overridden at build time via -ldflags.
var Version = "0.1.0"

// UserAgent returns the User-Agent header sent to the usage endpoint.
func UserAgent() string {
	return "Seekers/" + Version
}
