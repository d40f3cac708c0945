package agent

import (
	"context"
	"sync"

	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/data/settings"
	"github.com/penwyp/go-claude-meter/internal/presentation/interaction"
	"github.com/penwyp/go-claude-meter/internal/presentation/menu"
)

type fakeCredentials struct {
	mu      sync.Mutex
	creds   model.Credentials
	loadErr error
	saveErr error
	saved   []model.Credentials
}

func (f *fakeCredentials) Load() (model.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds, f.loadErr
}

func (f *fakeCredentials) Save(creds model.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.creds = creds
	f.saved = append(f.saved, creds)
	return nil
}

type fakeSettings struct {
	mu      sync.Mutex
	saved   []model.DisplaySettings
	saveErr error
}

func (f *fakeSettings) Load() (model.DisplaySettings, error) {
	return model.DefaultSettings(), nil
}

func (f *fakeSettings) Save(s model.DisplaySettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, s)
	return nil
}

type fakeFetcher struct {
	mu        sync.Mutex
	snapshots []model.UsageSnapshot
	err       error
	calls     int
	// gate, when set, blocks every fetch until closed
	gate chan struct{}
}

func (f *fakeFetcher) FetchUsage(ctx context.Context, orgID, sessionKey string) (model.UsageSnapshot, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return model.UsageSnapshot{}, f.err
	}
	if len(f.snapshots) == 0 {
		return model.UsageSnapshot{}, nil
	}
	snap := f.snapshots[0]
	if len(f.snapshots) > 1 {
		f.snapshots = f.snapshots[1:]
	}
	return snap, nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type shown struct {
	title, body string
}

type fakeNotifier struct {
	mu    sync.Mutex
	shown []shown
}

func (f *fakeNotifier) Show(title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, shown{title, body})
	return nil
}

func (f *fakeNotifier) Shown() []shown {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shown(nil), f.shown...)
}

type fakeScreen struct {
	mu       sync.Mutex
	labels   []string
	rows     [][]menu.Item
	messages []string
	entered  bool
	exited   bool
}

func (f *fakeScreen) Render(label string, rows []menu.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels = append(f.labels, label)
	f.rows = append(f.rows, rows)
}

func (f *fakeScreen) ShowMessage(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

func (f *fakeScreen) EnterAlternateScreen() {
	f.mu.Lock()
	f.entered = true
	f.mu.Unlock()
}

func (f *fakeScreen) ExitAlternateScreen() {
	f.mu.Lock()
	f.exited = true
	f.mu.Unlock()
}

func (f *fakeScreen) LastLabel() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.labels) == 0 {
		return ""
	}
	return f.labels[len(f.labels)-1]
}

func (f *fakeScreen) Renders() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.labels)
}

func (f *fakeScreen) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type fakeRecorder struct {
	mu       sync.Mutex
	recorded []model.UsageSnapshot
}

func (f *fakeRecorder) Record(ctx context.Context, snapshot model.UsageSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, snapshot)
	return nil
}

type fakeKeyboard struct {
	events chan interaction.Command
	closed bool
}

func (f *fakeKeyboard) Events() <-chan interaction.Command { return f.events }

func (f *fakeKeyboard) Close() error {
	f.closed = true
	return nil
}

type fakeMonitor struct {
	events chan settings.Event
}

func (f *fakeMonitor) Events() <-chan settings.Event { return f.events }

func (f *fakeMonitor) Close() error { return nil }

type fakeService struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	startErr error
}

func (f *fakeService) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return f.startErr
}

func (f *fakeService) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func window(pct float64) *model.UsageWindow {
	return &model.UsageWindow{Utilization: pct, ResetsAt: ""}
}

type harness struct {
	state    *State
	creds    *fakeCredentials
	settings *fakeSettings
	fetcher  *fakeFetcher
	notifier *fakeNotifier
	screen   *fakeScreen
	recorder *fakeRecorder
	coord    *Coordinator
}

func newHarness(snapshots ...model.UsageSnapshot) *harness {
	h := &harness{
		state:    NewState(model.DefaultSettings()),
		creds:    &fakeCredentials{creds: model.Credentials{OrgID: "org-1", SessionKey: "sk-test"}},
		settings: &fakeSettings{},
		fetcher:  &fakeFetcher{snapshots: snapshots},
		notifier: &fakeNotifier{},
		screen:   &fakeScreen{},
		recorder: &fakeRecorder{},
	}
	h.coord = NewCoordinator(h.state, Deps{
		Credentials: h.creds,
		Settings:    h.settings,
		Fetcher:     h.fetcher,
		Notifier:    h.notifier,
		Renderer:    h.screen,
		Recorder:    h.recorder,
	})
	return h
}
