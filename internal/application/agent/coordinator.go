package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/core/notify"
	"github.com/penwyp/go-claude-meter/internal/metrics"
	"github.com/penwyp/go-claude-meter/internal/presentation/formatter"
	"github.com/penwyp/go-claude-meter/internal/presentation/menu"
	"github.com/penwyp/go-claude-meter/internal/util"
)

// Trigger names the source of a refresh
type Trigger string

const (
	TriggerStartup Trigger = "startup"
	TriggerTimer   Trigger = "timer"
	TriggerManual  Trigger = "manual"
)

// Interactive reports whether errors are surfaced to the caller
func (t Trigger) Interactive() bool {
	return t == TriggerManual
}

// Coordinator funnels every trigger through one fetch-and-apply routine.
// Locks are only taken around in-memory updates, never across I/O.
type Coordinator struct {
	state       *State
	credentials CredentialStore
	settings    SettingsStore
	fetcher     UsageFetcher
	notifier    Notifier
	renderer    Renderer
	recorder    HistoryRecorder
	now         func() time.Time

	renderMu sync.Mutex
	wg       sync.WaitGroup
}

// Deps groups the Coordinator's collaborators. Recorder may be nil.
type Deps struct {
	Credentials CredentialStore
	Settings    SettingsStore
	Fetcher     UsageFetcher
	Notifier    Notifier
	Renderer    Renderer
	Recorder    HistoryRecorder
	Now         func() time.Time
}

// NewCoordinator creates a Coordinator over state
func NewCoordinator(state *State, deps Deps) *Coordinator {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		state:       state,
		credentials: deps.Credentials,
		settings:    deps.Settings,
		fetcher:     deps.Fetcher,
		notifier:    deps.Notifier,
		renderer:    deps.Renderer,
		recorder:    deps.Recorder,
		now:         now,
	}
}

// State returns the shared state
func (c *Coordinator) State() *State {
	return c.state
}

// Settings returns the settings currently in effect
func (c *Coordinator) Settings() model.DisplaySettings {
	return c.state.Settings()
}

// Refresh runs fetch-and-apply to completion. Automatic triggers swallow
// every failure and return nil; the manual trigger returns it.
func (c *Coordinator) Refresh(ctx context.Context, trigger Trigger) error {
	ctx = util.ContextWithTrigger(ctx, string(trigger))
	start := time.Now()

	err := c.fetchAndApply(ctx)

	result := "success"
	if err != nil {
		result = model.KindName(err)
	}
	metrics.ObserveRefresh(string(trigger), result, time.Since(start))

	if err == nil {
		return nil
	}
	if trigger.Interactive() {
		util.LogWarnContext(ctx, "Manual refresh failed", util.F("error", err.Error()))
		return err
	}
	if errors.Is(err, model.ErrCredentialsMissing) {
		util.LogDebugContext(ctx, "Skipping refresh, credentials not configured")
	} else {
		util.LogWarnContext(ctx, "Refresh failed, keeping last snapshot", util.F("error", err.Error()))
	}
	return nil
}

// Spawn runs Refresh in its own goroutine. The refresh is detached from
// ctx cancellation and runs to completion; its result is delivered on the
// returned channel, which callers may ignore.
func (c *Coordinator) Spawn(ctx context.Context, trigger Trigger) <-chan error {
	result := make(chan error, 1)
	detached := context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		result <- c.Refresh(detached, trigger)
		close(result)
	}()
	return result
}

// Wait blocks until every spawned refresh has finished
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// WaitTimeout waits for spawned refreshes at most d and reports whether they finished
func (c *Coordinator) WaitTimeout(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

func (c *Coordinator) fetchAndApply(ctx context.Context) error {
	creds, err := c.credentials.Load()
	if err != nil {
		return err
	}
	if !creds.Complete() {
		return model.NewError(model.ErrCredentialsMissing, "refresh", nil)
	}

	snapshot, err := c.fetcher.FetchUsage(ctx, creds.OrgID, creds.SessionKey)
	if err != nil {
		return err
	}
	snapshot.FetchedAt = c.now()

	c.state.Store.Replace(snapshot)
	c.Render()
	c.evaluateAlerts(snapshot, c.state.Settings())

	metrics.ObserveSnapshot(snapshot)
	if c.recorder != nil {
		if err := c.recorder.Record(ctx, snapshot); err != nil {
			util.LogWarnContext(ctx, "Failed to record usage history", util.F("error", err.Error()))
		}
	}

	util.LogDebugContext(ctx, "Applied usage snapshot", snapshotFields(snapshot)...)
	return nil
}

// evaluateAlerts fires at most one notification per window present in snapshot
func (c *Coordinator) evaluateAlerts(snapshot model.UsageSnapshot, settings model.DisplaySettings) {
	for _, kind := range []model.WindowKind{model.WindowSession, model.WindowWeekly} {
		window := snapshot.Window(kind)
		if window == nil {
			continue
		}
		decision := c.state.Debouncer.Evaluate(kind, window.Utilization, settings.AlertThreshold(kind))
		if decision != notify.Fire {
			continue
		}

		title, body := notify.AlertMessage(kind, window.RoundedPercent())
		metrics.NotificationSent(kind)
		util.LogInfo("Usage threshold reached", util.F("window", kind), util.F("pct", window.RoundedPercent()))
		if err := c.notifier.Show(title, body); err != nil {
			util.LogWarnf("Failed to show %s notification: %v", kind, err)
		}
	}
}

// Render draws the store's current content with the current settings.
// Renders are serialized so the last one always reflects the latest write.
func (c *Coordinator) Render() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	status := c.buildStatus()
	c.renderer.Render(status.Label, status.Rows)
}

// Status is a point-in-time view of what the renderer shows
type Status struct {
	Label     string             `json:"label"`
	Rows      []menu.Item        `json:"rows"`
	FetchedAt *time.Time         `json:"fetched_at,omitempty"`
	Session   *model.UsageWindow `json:"session,omitempty"`
	Weekly    *model.UsageWindow `json:"weekly,omitempty"`
}

// Status returns the current label, menu and raw windows
func (c *Coordinator) Status() Status {
	return c.buildStatus()
}

func (c *Coordinator) buildStatus() Status {
	settings := c.state.Settings()
	snapshot, ok := c.state.Store.Read()
	if !ok {
		return Status{
			Label: formatter.DefaultLabel,
			Rows:  menu.Build(nil, settings, c.now()),
		}
	}

	fetchedAt := snapshot.FetchedAt
	return Status{
		Label:     formatter.StatusLabel(snapshot, settings),
		Rows:      menu.Build(&snapshot, settings, c.now()),
		FetchedAt: &fetchedAt,
		Session:   snapshot.Session,
		Weekly:    snapshot.Weekly,
	}
}

// UpdateSettings validates and persists settings, then applies them.
// Validation and persistence errors are returned and leave the current
// settings in place.
func (c *Coordinator) UpdateSettings(settings model.DisplaySettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := c.settings.Save(settings); err != nil {
		return err
	}
	c.apply(settings)
	util.LogInfo("Settings updated", settingsFields(settings)...)
	return nil
}

// ReloadSettings applies settings edited outside the agent without saving
// them again. Invalid settings are ignored.
func (c *Coordinator) ReloadSettings(settings model.DisplaySettings) error {
	if err := settings.Validate(); err != nil {
		util.LogWarnf("Ignoring edited settings: %v", err)
		return err
	}
	c.apply(settings)
	util.LogInfo("Settings reloaded", settingsFields(settings)...)
	return nil
}

func (c *Coordinator) apply(settings model.DisplaySettings) {
	c.state.SetSettings(settings)
	if _, ok := c.state.Store.Read(); ok {
		c.Render()
	}
}

// Credentials returns the saved credentials
func (c *Coordinator) Credentials() (model.Credentials, error) {
	return c.credentials.Load()
}

// SaveCredentials persists credentials and starts a background refresh
// with them. Persistence errors are returned.
func (c *Coordinator) SaveCredentials(ctx context.Context, orgID, sessionKey string) error {
	creds := model.Credentials{OrgID: orgID, SessionKey: sessionKey}
	if err := c.credentials.Save(creds); err != nil {
		return err
	}
	if creds.Complete() {
		c.Spawn(ctx, TriggerManual)
	}
	return nil
}

// TestNotification sends a fixed notification through the sink
func (c *Coordinator) TestNotification() error {
	if err := c.notifier.Show(notify.TestTitle, notify.TestBody); err != nil {
		return fmt.Errorf("failed to show test notification: %w", err)
	}
	return nil
}

func snapshotFields(s model.UsageSnapshot) []util.Field {
	fields := make([]util.Field, 0, 2)
	if s.Session != nil {
		fields = append(fields, util.F("session", s.Session.Utilization))
	}
	if s.Weekly != nil {
		fields = append(fields, util.F("weekly", s.Weekly.Utilization))
	}
	return fields
}

func settingsFields(s model.DisplaySettings) []util.Field {
	return []util.Field{
		util.F("mode", s.StatusMode),
		util.F("poll_minutes", s.PollMinutes),
		util.F("session_alert", s.SessionAlertPct),
		util.F("weekly_alert", s.WeeklyAlertPct),
	}
}
