package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-claude-meter/internal/core/constants"
	"github.com/penwyp/go-claude-meter/internal/notifier"
	"github.com/penwyp/go-claude-meter/internal/util"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config is the agent's own configuration. Display settings and
// credentials live in separate JSON files next to it.
type Config struct {
	Dir       string        `mapstructure:"-"`
	Log       LogConfig     `mapstructure:"log"`
	Timezone  string        `mapstructure:"timezone"`
	API       APIConfig     `mapstructure:"api"`
	Poll      PollConfig    `mapstructure:"poll"`
	HTTP      HTTPConfig    `mapstructure:"http"`
	History   HistoryConfig `mapstructure:"history"`
	Notify    NotifyConfig  `mapstructure:"notify"`
	Keyboard  bool          `mapstructure:"keyboard"`
	ClaudeURL string        `mapstructure:"claude_url"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type PollConfig struct {
	// DisabledCheck is how often a disabled poller re-reads its interval
	DisabledCheck time.Duration `mapstructure:"disabled_check"`
}

type HTTPConfig struct {
	Listen string `mapstructure:"listen"` // empty disables the status API
	Token  string `mapstructure:"token"`  // optional Bearer token
}

type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
	PruneCron     string `mapstructure:"prune_cron"`
}

type NotifyConfig struct {
	Backend string `mapstructure:"backend"`
}

// Load reads the YAML config at path (or agent.yaml in dir when path is
// empty), applies SEEKERS_* environment overrides and validates the result.
// A missing file is not an error.
func Load(dir, path string) (*Config, error) {
	if dir == "" {
		var err error
		if dir, err = util.ConfigDir(); err != nil {
			return nil, err
		}
	}
	if path == "" {
		path = filepath.Join(dir, constants.AgentConfigFile)
	}

	v := viper.New()
	setDefaults(v, dir)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Dir = dir

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", filepath.Join(dir, constants.LogFile))
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)

	v.SetDefault("timezone", "Local")

	v.SetDefault("api.base_url", constants.DefaultAPIBaseURL)
	v.SetDefault("api.timeout", constants.DefaultAPITimeout)
	v.SetDefault("api.user_agent", constants.UserAgent())

	v.SetDefault("poll.disabled_check", constants.DisabledPollCheckPeriod)

	v.SetDefault("http.listen", "")
	v.SetDefault("http.token", "")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(dir, constants.HistoryFile))
	v.SetDefault("history.retention_days", constants.DefaultHistoryRetentionDays)
	v.SetDefault("history.prune_cron", constants.DefaultHistoryPruneCron)

	v.SetDefault("notify.backend", notifier.BackendAuto)

	v.SetDefault("keyboard", true)
	v.SetDefault("claude_url", constants.DefaultClaudeURL)
}

func validate(cfg *Config) error {
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", cfg.API.Timeout)
	}
	if cfg.Poll.DisabledCheck <= 0 {
		return fmt.Errorf("poll.disabled_check must be positive, got %s", cfg.Poll.DisabledCheck)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}
	switch strings.ToLower(cfg.Notify.Backend) {
	case notifier.BackendAuto, notifier.BackendDesktop, notifier.BackendLog:
	default:
		return fmt.Errorf("notify.backend must be auto, desktop or log, got %q", cfg.Notify.Backend)
	}
	if cfg.History.Enabled {
		if cfg.History.RetentionDays <= 0 {
			return fmt.Errorf("history.retention_days must be positive, got %d", cfg.History.RetentionDays)
		}
		if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(cfg.History.PruneCron); err != nil {
			return fmt.Errorf("history.prune_cron: %w", err)
		}
	}
	if _, err := time.LoadLocation(timezoneName(cfg.Timezone)); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

func timezoneName(tz string) string {
	if tz == "" || strings.EqualFold(tz, "auto") {
		return "Local"
	}
	return tz
}
