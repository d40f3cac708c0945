package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/penwyp/go-claude-meter/internal/application/agent"
	"github.com/penwyp/go-claude-meter/internal/data/api"
	"github.com/penwyp/go-claude-meter/internal/data/history"
	"github.com/penwyp/go-claude-meter/internal/data/settings"
	"github.com/penwyp/go-claude-meter/internal/notifier"
	"github.com/penwyp/go-claude-meter/internal/presentation/display"
	"github.com/penwyp/go-claude-meter/internal/presentation/interaction"
	transport "github.com/penwyp/go-claude-meter/internal/transport/chi"
	"github.com/penwyp/go-claude-meter/internal/util"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the usage meter agent",
	Long: `Starts the agent: an immediate refresh, the poll loop driven by the
refreshInterval setting, keyboard commands when attached to a terminal,
settings hot reload, usage history and, with --listen, the status API.

Keys:
  r  Refresh now
  o  Open Claude
  s  Open the settings file
  q  Quit`,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	sink, err := notifier.New(env.cfg.Notify.Backend)
	if err != nil {
		return err
	}

	screen := display.NewTerminalDisplay()
	coordinator := newCoordinator(env, screen, sink)

	// pkg/browser echoes the launcher's output, which would corrupt the screen
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	cfg := agent.OrchestratorConfig{
		Coordinator: coordinator,
		Poller: agent.NewPoller(coordinator.State(), coordinator,
			agent.WithDisabledCheck(env.cfg.Poll.DisabledCheck)),
		Screen: screen,
		OpenClaude: func() error {
			return browser.OpenURL(env.cfg.ClaudeURL)
		},
		OpenSettings: func() error {
			return openSettingsFile(env.settings)
		},
	}

	if env.cfg.Keyboard && screen.Interactive() {
		keyboard, err := interaction.NewKeyboardReader()
		switch {
		case err == nil:
			cfg.Keyboard = keyboard
		case errors.Is(err, interaction.ErrNotTerminal):
			util.LogDebug("Keyboard commands disabled, stdin is not a terminal")
		default:
			return fmt.Errorf("failed to initialize keyboard: %w", err)
		}
	}

	if watcher, err := settings.NewWatcher(env.settings); err != nil {
		util.LogWarnf("Settings hot reload disabled: %v", err)
	} else {
		cfg.Watcher = watcher
	}

	if env.cfg.HTTP.Listen != "" {
		cfg.Server = transport.NewServer(coordinator, env.cfg.HTTP.Listen, env.cfg.HTTP.Token)
	}

	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if env.cfg.History.Enabled {
		pruner, err := history.NewPruner(ctx, env.recorder, env.cfg.History.RetentionDays, env.cfg.History.PruneCron)
		if err != nil {
			return fmt.Errorf("failed to schedule history pruning: %w", err)
		}
		cfg.Pruner = pruner
	}

	orchestrator, err := agent.NewOrchestrator(cfg)
	if err != nil {
		return err
	}
	return orchestrator.Run(ctx)
}

// newCoordinator builds the refresh coordinator over env's stores
func newCoordinator(env *environment, renderer agent.Renderer, sink agent.Notifier) *agent.Coordinator {
	client := api.NewClient(env.cfg.API.BaseURL, env.cfg.API.Timeout,
		api.WithUserAgent(env.cfg.API.UserAgent))

	state := agent.NewState(env.loadSettings())
	return agent.NewCoordinator(state, agent.Deps{
		Credentials: env.credentials,
		Settings:    env.settings,
		Fetcher:     client,
		Notifier:    sink,
		Renderer:    renderer,
		Recorder:    env.recorder,
	})
}

// openSettingsFile writes the current settings out if the file is missing,
// then opens it with the system handler
func openSettingsFile(store *settings.FileStore) error {
	if _, err := os.Stat(store.Path()); errors.Is(err, os.ErrNotExist) {
		current, _ := store.Load()
		if err := store.Save(current); err != nil {
			return err
		}
	}
	return browser.OpenFile(store.Path())
}
