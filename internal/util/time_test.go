package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTimeProvider(t *testing.T) {
	t.Cleanup(func() { _ = InitializeTimeProvider("Local") })

	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "local timezone", timezone: "Local"},
		{name: "auto means local", timezone: "auto"},
		{name: "UTC timezone", timezone: "UTC"},
		{name: "valid timezone", timezone: "America/New_York"},
		{name: "empty timezone defaults to Local", timezone: ""},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitializeTimeProvider(tt.timezone)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid timezone")
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, GetTimeProvider().Location())
		})
	}
}

func TestTimeProviderIn(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("Asia/Shanghai"))

	utcTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	local := provider.In(utcTime)

	assert.True(t, utcTime.Equal(local))
	assert.Equal(t, 20, local.Hour())
	assert.Equal(t, "2024-01-01 20:00", provider.Format(utcTime, "2006-01-02 15:04"))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "rfc3339", value: "2025-06-11T09:00:00Z"},
		{name: "fractional offset", value: "2025-06-11T09:00:00.527411+00:00"},
		{name: "no zone", value: "2025-06-11T09:00:00.5"},
		{name: "empty", value: "", wantErr: true},
		{name: "garbage", value: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimestamp(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
