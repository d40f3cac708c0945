package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/core/notify"
	"github.com/penwyp/go-claude-meter/internal/presentation/formatter"
	"github.com/penwyp/go-claude-meter/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshAppliesSnapshot(t *testing.T) {
	h := newHarness(model.UsageSnapshot{Session: window(45.4), Weekly: window(12)})

	require.NoError(t, h.coord.Refresh(context.Background(), TriggerStartup))

	snap, ok := h.state.Store.Read()
	require.True(t, ok)
	assert.InDelta(t, 45.4, snap.Session.Utilization, 0.001)
	assert.False(t, snap.FetchedAt.IsZero())
	assert.Equal(t, "45%", h.screen.LastLabel())
	assert.Len(t, h.recorder.recorded, 1)
	assert.Empty(t, h.notifier.Shown())
}

func TestRefreshMissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		creds   model.Credentials
		wantErr bool
	}{
		{name: "manual_empty", trigger: TriggerManual, creds: model.Credentials{}, wantErr: true},
		{name: "manual_org_only", trigger: TriggerManual, creds: model.Credentials{OrgID: "org"}, wantErr: true},
		{name: "startup_swallows", trigger: TriggerStartup, creds: model.Credentials{}},
		{name: "timer_swallows", trigger: TriggerTimer, creds: model.Credentials{SessionKey: "sk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(model.UsageSnapshot{Session: window(10)})
			h.creds.creds = tt.creds

			err := h.coord.Refresh(context.Background(), tt.trigger)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrCredentialsMissing))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 0, h.fetcher.Calls())
			_, ok := h.state.Store.Read()
			assert.False(t, ok)
		})
	}
}

func TestAutomaticFailureKeepsLastSnapshot(t *testing.T) {
	h := newHarness(model.UsageSnapshot{Session: window(30)})
	require.NoError(t, h.coord.Refresh(context.Background(), TriggerStartup))
	renders := h.screen.Renders()

	h.fetcher.err = model.NewError(model.ErrTransport, "fetch usage", errors.New("HTTP 503"))
	assert.NoError(t, h.coord.Refresh(context.Background(), TriggerTimer))

	snap, ok := h.state.Store.Read()
	require.True(t, ok)
	assert.InDelta(t, 30.0, snap.Session.Utilization, 0.001)
	assert.Equal(t, renders, h.screen.Renders())

	err := h.coord.Refresh(context.Background(), TriggerManual)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTransport))
}

func TestRefreshDoesNotMergeWindows(t *testing.T) {
	h := newHarness(
		model.UsageSnapshot{Session: window(30), Weekly: window(60)},
		model.UsageSnapshot{Weekly: window(61)},
	)
	require.NoError(t, h.coord.Refresh(context.Background(), TriggerStartup))
	require.NoError(t, h.coord.Refresh(context.Background(), TriggerTimer))

	snap, ok := h.state.Store.Read()
	require.True(t, ok)
	assert.Nil(t, snap.Session)
	require.NotNil(t, snap.Weekly)
	assert.Equal(t, "--", h.screen.LastLabel())
}

func TestAlertsFireOncePerCrossing(t *testing.T) {
	h := newHarness(
		model.UsageSnapshot{Session: window(79)},
		model.UsageSnapshot{Session: window(85)},
		model.UsageSnapshot{Session: window(90)},
		model.UsageSnapshot{Session: window(50)},
		model.UsageSnapshot{Session: window(81), Weekly: window(95)},
	)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.coord.Refresh(context.Background(), TriggerTimer))
	}

	got := h.notifier.Shown()
	require.Len(t, got, 3)
	assert.Equal(t, shown{"Claude Session Limit", "Session usage at 85%"}, got[0])
	assert.Equal(t, shown{"Claude Session Limit", "Session usage at 81%"}, got[1])
	assert.Equal(t, shown{"Claude Weekly Limit", "Weekly usage at 95%"}, got[2])
}

func TestConcurrentRefreshesFireOnce(t *testing.T) {
	h := newHarness(model.UsageSnapshot{Session: window(92), Weekly: window(40)})
	h.fetcher.gate = make(chan struct{})

	results := []<-chan error{
		h.coord.Spawn(context.Background(), TriggerStartup),
		h.coord.Spawn(context.Background(), TriggerTimer),
		h.coord.Spawn(context.Background(), TriggerManual),
	}
	close(h.fetcher.gate)

	for _, r := range results {
		assert.NoError(t, <-r)
	}
	h.coord.Wait()

	assert.Equal(t, 3, h.fetcher.Calls())
	assert.Len(t, h.notifier.Shown(), 1)
}

func TestRenderConvergesOnLatestSnapshot(t *testing.T) {
	h := newHarness()
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(pct float64) {
			defer wg.Done()
			h.state.Store.Replace(model.UsageSnapshot{Session: window(pct)})
			h.coord.Render()
		}(float64(i))
	}
	wg.Wait()

	snap, ok := h.state.Store.Read()
	require.True(t, ok)
	assert.Equal(t, formatter.StatusLabel(snap, h.state.Settings()), h.screen.LastLabel())
}

func TestSpawnIgnoresCancellation(t *testing.T) {
	h := newHarness(model.UsageSnapshot{Session: window(20)})
	h.fetcher.gate = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	result := h.coord.Spawn(ctx, TriggerManual)
	cancel()
	close(h.fetcher.gate)

	assert.NoError(t, <-result)
	assert.True(t, h.coord.WaitTimeout(time.Second))
	_, ok := h.state.Store.Read()
	assert.True(t, ok)
}

func TestStatusBeforeAndAfterFetch(t *testing.T) {
	h := newHarness(model.UsageSnapshot{Session: window(45), Weekly: window(90)})

	status := h.coord.Status()
	assert.Equal(t, formatter.DefaultLabel, status.Label)
	assert.Nil(t, status.FetchedAt)
	require.NotEmpty(t, status.Rows)
	assert.Equal(t, formatter.NotConfiguredRow, status.Rows[0].Text)

	require.NoError(t, h.coord.Refresh(context.Background(), TriggerManual))
	status = h.coord.Status()
	assert.Equal(t, "45%", status.Label)
	assert.NotNil(t, status.FetchedAt)
	require.NotNil(t, status.Weekly)
	assert.InDelta(t, 90.0, status.Weekly.Utilization, 0.001)
}

func TestUpdateSettings(t *testing.T) {
	h := newHarness(model.UsageSnapshot{Session: window(45), Weekly: window(90)})

	t.Run("before_first_fetch_does_not_render", func(t *testing.T) {
		s := model.DefaultSettings()
		s.StatusMode = model.StatusWeekly
		require.NoError(t, h.coord.UpdateSettings(s))
		assert.Equal(t, 0, h.screen.Renders())
		assert.Len(t, h.settings.saved, 1)
	})

	t.Run("rerenders_with_snapshot", func(t *testing.T) {
		require.NoError(t, h.coord.Refresh(context.Background(), TriggerManual))
		assert.Equal(t, "90%", h.screen.LastLabel())

		s := model.DefaultSettings()
		s.StatusMode = model.StatusBoth
		s.ShowPercentSign = false
		require.NoError(t, h.coord.UpdateSettings(s))
		assert.Equal(t, "45/90", h.screen.LastLabel())
		assert.Equal(t, s, h.coord.Settings())
	})

	t.Run("invalid_is_rejected", func(t *testing.T) {
		before := h.coord.Settings()
		s := model.DefaultSettings()
		s.BarStyle = "stars"
		err := h.coord.UpdateSettings(s)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidSettings))
		assert.Equal(t, before, h.coord.Settings())
	})

	t.Run("persistence_error_keeps_settings", func(t *testing.T) {
		before := h.coord.Settings()
		h.settings.saveErr = model.NewError(model.ErrPersistence, "save settings", errors.New("read-only"))
		err := h.coord.UpdateSettings(model.DefaultSettings())
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrPersistence))
		assert.Equal(t, before, h.coord.Settings())
	})
}

func TestReloadSettings(t *testing.T) {
	h := newHarness()

	s := model.DefaultSettings()
	s.PollMinutes = 0
	require.NoError(t, h.coord.ReloadSettings(s))
	assert.Equal(t, uint(0), h.coord.Settings().PollMinutes)
	assert.Empty(t, h.settings.saved)

	s.StatusMode = "sometimes"
	assert.Error(t, h.coord.ReloadSettings(s))
	assert.Equal(t, model.StatusSession, h.coord.Settings().StatusMode)
}

func TestLoweredThresholdAffectsNextRefreshOnly(t *testing.T) {
	h := newHarness(model.UsageSnapshot{Session: window(70)})
	require.NoError(t, h.coord.Refresh(context.Background(), TriggerTimer))
	assert.Empty(t, h.notifier.Shown())

	s := model.DefaultSettings()
	s.SessionAlertPct = 60
	require.NoError(t, h.coord.UpdateSettings(s))
	assert.Empty(t, h.notifier.Shown())

	require.NoError(t, h.coord.Refresh(context.Background(), TriggerTimer))
	require.Len(t, h.notifier.Shown(), 1)
}

func TestSaveCredentials(t *testing.T) {
	h := newHarness(model.UsageSnapshot{Session: window(12)})
	h.creds.creds = model.Credentials{}

	require.NoError(t, h.coord.SaveCredentials(context.Background(), "org-2", "sk-new"))
	h.coord.Wait()

	assert.Equal(t, []model.Credentials{{OrgID: "org-2", SessionKey: "sk-new"}}, h.creds.saved)
	assert.Equal(t, 1, h.fetcher.Calls())
	assert.Equal(t, "12%", h.screen.LastLabel())

	h.creds.saveErr = model.NewError(model.ErrPersistence, "save credentials", errors.New("disk full"))
	err := h.coord.SaveCredentials(context.Background(), "org-3", "sk")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrPersistence))
	h.coord.Wait()
	assert.Equal(t, 1, h.fetcher.Calls())
}

func TestTestNotification(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.coord.TestNotification())
	assert.Equal(t, []shown{{notify.TestTitle, notify.TestBody}}, h.notifier.Shown())
}

func TestRefreshLogsCarryTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	logger, err := util.NewLogger(util.LoggerOptions{Level: "debug", File: path})
	require.NoError(t, err)
	util.SetLogger(logger)
	t.Cleanup(func() { _ = util.CloseLogger() })

	h := newHarness()
	h.fetcher.err = model.NewError(model.ErrTransport, "fetch usage", errors.New("HTTP 503"))
	assert.Error(t, h.coord.Refresh(context.Background(), TriggerManual))
	assert.NoError(t, h.coord.Refresh(context.Background(), TriggerTimer))
	require.NoError(t, util.CloseLogger())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Manual refresh failed")
	assert.Contains(t, out, "trigger=manual")
	assert.Contains(t, out, "Refresh failed, keeping last snapshot")
	assert.Contains(t, out, "trigger=timer")
}
