package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-claude-meter/internal/config"
	"github.com/penwyp/go-claude-meter/internal/core/constants"
	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/data/credentials"
	"github.com/penwyp/go-claude-meter/internal/data/history"
	"github.com/penwyp/go-claude-meter/internal/data/settings"
	"github.com/penwyp/go-claude-meter/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Config file override
	configFile string

	// Overrides for values in the config file
	timezone string
	listen   string

	rootCmd = &cobra.Command{
		Use:   "go-claude-meter [flags]",
		Short: "Claude usage meter",
		Long: `go-claude-meter polls the Claude usage endpoint in the background and shows
session and weekly utilization as a compact status label with a detail menu.

Threshold notifications fire once per crossing and re-arm when usage drops
back below the threshold.

Examples:
  go-claude-meter login --org-id <org> --session-key <key>   # Save credentials
  go-claude-meter                                           # Start the agent
  go-claude-meter --listen 127.0.0.1:9393                   # Start with the status API
  go-claude-meter status --format waybar                    # One-shot status for a bar
  go-claude-meter settings set menuBarDisplay=both          # Change a display setting`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runAgent,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Agent config file (default ~/.config/seekers/agent.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "",
		"Timezone for reset times (e.g., Asia/Shanghai, UTC, Local)")
	rootCmd.PersistentFlags().StringVar(&listen, "listen", "",
		"Serve the status API on this address (e.g., 127.0.0.1:9393)")
}

func Execute() error {
	return rootCmd.Execute()
}

// environment is what every command needs: the agent config, an initialised
// logger and timezone, and the stores in the config directory
type environment struct {
	cfg         *config.Config
	credentials *credentials.FileStore
	settings    *settings.FileStore
	recorder    history.Recorder
}

// setup loads the config, applies flag overrides and initialises logging.
// withHistory opens the history database when it is enabled.
func setup(cmd *cobra.Command, withHistory bool) (*environment, error) {
	path := ""
	if configFile != "" {
		path = expandPath(configFile)
	}

	cfg, err := config.Load("", path)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cmd, cfg)

	logLevel := cfg.Log.Level
	if debug {
		logLevel = "debug"
	}
	if err := ensureDir(filepath.Dir(cfg.Log.File)); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(util.LoggerOptions{
		Level:          logLevel,
		Format:         util.ParseLogFormat(cfg.Log.Format),
		File:           cfg.Log.File,
		MaxSizeMB:      cfg.Log.MaxSizeMB,
		MaxBackups:     cfg.Log.MaxBackups,
		DebugToConsole: debug,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}

	env := &environment{
		cfg:         cfg,
		credentials: credentials.NewFileStore(filepath.Join(cfg.Dir, constants.CredentialsFile)),
		settings:    settings.NewFileStore(filepath.Join(cfg.Dir, constants.SettingsFile)),
		recorder:    history.NoopRecorder{},
	}

	if withHistory && cfg.History.Enabled {
		recorder, err := history.NewSQLiteRecorder(expandPath(cfg.History.Path))
		if err != nil {
			util.LogWarnf("Usage history disabled: %v", err)
		} else {
			env.recorder = recorder
		}
	}

	util.LogDebug("Environment ready",
		util.F("config_dir", cfg.Dir),
		util.F("command", cmd.Name()),
		util.F("history", cfg.History.Enabled && withHistory))
	return env, nil
}

// Close releases the history database and flushes the logger
func (e *environment) Close() {
	if err := e.recorder.Close(); err != nil {
		util.LogWarnf("Failed to close usage history: %v", err)
	}
	_ = util.CloseLogger()
}

// loadSettings returns the saved settings, falling back to defaults when the
// file cannot be read or holds values out of range
func (e *environment) loadSettings() model.DisplaySettings {
	s, err := e.settings.Load()
	if err == nil {
		err = s.Validate()
	}
	if err != nil {
		util.LogWarnf("Using default settings: %v", err)
		return model.DefaultSettings()
	}
	return s
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if f := flags.Lookup("timezone"); f != nil && f.Changed {
		cfg.Timezone = timezone
	}
	if f := flags.Lookup("listen"); f != nil && f.Changed {
		cfg.HTTP.Listen = listen
	}
	if cfg.Timezone == "auto" {
		cfg.Timezone = "Local"
	}
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}
