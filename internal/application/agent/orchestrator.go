package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penwyp/go-claude-meter/internal/data/settings"
	"github.com/penwyp/go-claude-meter/internal/presentation/interaction"
	"github.com/penwyp/go-claude-meter/internal/util"
)

// Screen is the renderer the orchestrator drives directly
type Screen interface {
	Renderer
	MessageRenderer
	EnterAlternateScreen()
	ExitAlternateScreen()
}

// Service is a background server with a start/stop lifecycle
type Service interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// Job is a scheduled background task
type Job interface {
	Start()
	Stop()
}

// OrchestratorConfig groups the optional pieces of the run loop.
// Every field except Coordinator, Poller and Screen may be nil.
type OrchestratorConfig struct {
	Coordinator *Coordinator
	Poller      *Poller
	Screen      Screen
	Keyboard    InputHandler
	Watcher     SettingsMonitor
	Server      Service
	Pruner      Job

	// OpenClaude opens the Claude web app
	OpenClaude func() error
	// OpenSettings opens the settings file in the user's editor
	OpenSettings func() error

	// ShutdownTimeout bounds how long exit waits for in-flight refreshes
	ShutdownTimeout time.Duration
}

// Orchestrator runs the agent: startup refresh, poll loop, command
// handling and settings hot reload
type Orchestrator struct {
	cfg OrchestratorConfig
}

// NewOrchestrator validates cfg and creates an Orchestrator
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Coordinator == nil || cfg.Poller == nil || cfg.Screen == nil {
		return nil, errors.New("orchestrator requires a coordinator, poller and screen")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &Orchestrator{cfg: cfg}, nil
}

// Run blocks until ctx is cancelled or a quit command arrives
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting Claude usage meter...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.cfg.Screen.EnterAlternateScreen()
	defer o.cfg.Screen.ExitAlternateScreen()

	// Default label until the first fetch succeeds
	o.cfg.Coordinator.Render()
	o.cfg.Coordinator.Spawn(ctx, TriggerStartup)

	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		_ = o.cfg.Poller.Run(ctx)
	}()

	if o.cfg.Server != nil {
		if err := o.cfg.Server.Start(); err != nil {
			cancel()
			<-pollerDone
			return fmt.Errorf("failed to start status API: %w", err)
		}
		defer o.shutdownServer()
	}

	if o.cfg.Pruner != nil {
		o.cfg.Pruner.Start()
		defer o.cfg.Pruner.Stop()
	}

	var commands <-chan interaction.Command
	if o.cfg.Keyboard != nil {
		commands = o.cfg.Keyboard.Events()
		defer o.cfg.Keyboard.Close()
	}

	var edits <-chan settings.Event
	if o.cfg.Watcher != nil {
		edits = o.cfg.Watcher.Events()
		defer o.cfg.Watcher.Close()
	}

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down Claude usage meter...")
			return o.stop(cancel, pollerDone)

		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			if o.handleCommand(ctx, cmd) {
				util.LogInfo("Quit requested")
				return o.stop(cancel, pollerDone)
			}

		case event, ok := <-edits:
			if !ok {
				edits = nil
				continue
			}
			o.handleSettingsEvent(event)
		}
	}
}

func (o *Orchestrator) stop(cancel context.CancelFunc, pollerDone <-chan struct{}) error {
	cancel()
	<-pollerDone
	if !o.cfg.Coordinator.WaitTimeout(o.cfg.ShutdownTimeout) {
		util.LogWarn("Exiting with refreshes still in flight")
	}
	return nil
}

func (o *Orchestrator) shutdownServer() {
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.ShutdownTimeout)
	defer cancel()
	if err := o.cfg.Server.Shutdown(ctx); err != nil {
		util.LogWarnf("Failed to stop status API: %v", err)
	}
}

// handleCommand runs a menu command and reports whether the agent should exit
func (o *Orchestrator) handleCommand(ctx context.Context, cmd interaction.Command) bool {
	util.LogDebug("Menu command", util.F("command", cmd))

	switch cmd {
	case interaction.CommandQuit:
		return true

	case interaction.CommandRefresh:
		o.cfg.Screen.ShowMessage("Refreshing...")
		result := o.cfg.Coordinator.Spawn(ctx, TriggerManual)
		go o.reportManualResult(result)

	case interaction.CommandOpenClaude:
		o.open("Claude", o.cfg.OpenClaude)

	case interaction.CommandSettings:
		o.open("settings", o.cfg.OpenSettings)
	}
	return false
}

// reportManualResult surfaces a manual refresh failure on the screen
func (o *Orchestrator) reportManualResult(result <-chan error) {
	err := <-result
	if err != nil {
		o.cfg.Screen.ShowMessage("Refresh failed: " + err.Error())
		return
	}
	o.cfg.Screen.ShowMessage("")
}

func (o *Orchestrator) open(what string, fn func() error) {
	if fn == nil {
		return
	}
	if err := fn(); err != nil {
		util.LogWarnf("Failed to open %s: %v", what, err)
		o.cfg.Screen.ShowMessage(fmt.Sprintf("Could not open %s: %v", what, err))
	}
}

func (o *Orchestrator) handleSettingsEvent(event settings.Event) {
	if event.Err != nil {
		util.LogWarnf("Settings watcher: %v", event.Err)
		return
	}
	if err := o.cfg.Coordinator.ReloadSettings(event.Settings); err != nil {
		o.cfg.Screen.ShowMessage("Ignoring edited settings: " + err.Error())
	}
}
