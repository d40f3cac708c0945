package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/testing/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected func(string) string
	}{
		{
			name:  "home directory expansion",
			input: "~/test/path",
			expected: func(home string) string {
				return filepath.Join(home, "test/path")
			},
		},
		{
			name:  "absolute path unchanged",
			input: "/absolute/path",
			expected: func(home string) string {
				return "/absolute/path"
			},
		},
		{
			name:  "relative path converted to absolute",
			input: "relative/path",
			expected: func(home string) string {
				abs, _ := filepath.Abs("relative/path")
				return abs
			},
		},
	}

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			expected := tt.expected(home)
			assert.Equal(t, expected, result)
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test", "nested", "dir")

	err := ensureDir(testDir)
	assert.NoError(t, err)

	// Verify directory was created
	info, err := os.Stat(testDir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())

	// Test idempotency
	err = ensureDir(testDir)
	assert.NoError(t, err)
}

func TestRootCommandFlags(t *testing.T) {
	tests := []struct {
		flag         string
		defaultValue string
	}{
		{"config", ""},
		{"debug", "false"},
		{"timezone", ""},
		{"listen", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := rootCmd.PersistentFlags().Lookup(tt.flag)
			require.NotNil(t, flag)
			assert.Equal(t, tt.defaultValue, flag.DefValue)
		})
	}
}

func TestCommandStructure(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "login", "settings", "status", "notify-test", "history"} {
		assert.True(t, names[want], "missing command %s", want)
	}
	assert.NotNil(t, rootCmd.RunE)
	assert.Equal(t, "go-claude-meter [flags]", rootCmd.Use)
}

// execute runs the root command against a temporary home directory
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func withTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SEEKERS_HISTORY_ENABLED", "false")
	t.Setenv("SEEKERS_NOTIFY_BACKEND", "log")
	return filepath.Join(home, ".config", "seekers")
}

func TestLoginCommand(t *testing.T) {
	dir := withTempHome(t)

	_, err := execute(t, "login", "--org-id", "org-42", "--session-key", "sk-ant-secret")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "credentials.json"))
	require.NoError(t, err)
	var creds model.Credentials
	require.NoError(t, sonic.Unmarshal(data, &creds))
	assert.Equal(t, model.Credentials{OrgID: "org-42", SessionKey: "sk-ant-secret"}, creds)

	info, err := os.Stat(filepath.Join(dir, "credentials.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoginRequiresBothValues(t *testing.T) {
	withTempHome(t)
	_, err := execute(t, "login", "--org-id", "org-42", "--session-key", " ")
	assert.Error(t, err)
}

func TestSettingsCommands(t *testing.T) {
	dir := withTempHome(t)

	out, err := execute(t, "settings", "set", "menuBarDisplay=both", "refreshInterval=5", "showPercentSymbol=false")
	require.NoError(t, err)
	assert.Contains(t, out, "menuBarDisplay: both")

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"refreshInterval": 5`)

	out, err = execute(t, "settings", "show", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"showPercentSymbol": false`)

	_, err = execute(t, "settings", "set", "progressStyle=stars")
	assert.ErrorIs(t, err, model.ErrInvalidSettings)

	_, err = execute(t, "settings", "reset")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "settings.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestStatusCommand(t *testing.T) {
	withTempHome(t)

	server := fixtures.NewUsageServer(fixtures.Response{Payload: &fixtures.UsagePayload{
		FiveHour: fixtures.Window(42.0, time.Time{}),
		SevenDay: fixtures.Window(88.0, time.Now().Add(3*time.Hour)),
	}})
	defer server.Close()
	t.Setenv("SEEKERS_API_BASE_URL", server.BaseURL())

	// Missing credentials are reported for a one-shot status
	_, err := execute(t, "status", "--format", "text")
	assert.ErrorIs(t, err, model.ErrCredentialsMissing)

	_, err = execute(t, "login", "--org-id", "org-1", "--session-key", "sk-1")
	require.NoError(t, err)

	out, err := execute(t, "status", "--format", "text")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "42%", lines[0])
	assert.Contains(t, out, "Session")
	assert.Contains(t, out, "Weekly")
	assert.NotContains(t, out, "Quit")

	out, err = execute(t, "status", "--format", "waybar")
	require.NoError(t, err)
	var bar waybarStatus
	require.NoError(t, sonic.Unmarshal([]byte(strings.TrimSpace(out)), &bar))
	assert.Equal(t, "42%", bar.Text)
	assert.Equal(t, "warning", bar.Class)
	assert.Equal(t, 88, bar.Percentage)

	requests := server.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "/api/organizations/org-1/usage", requests[0].Path)
	assert.Equal(t, "sessionKey=sk-1", requests[0].Cookie)
	assert.True(t, strings.HasPrefix(requests[0].UserAgent, "Seekers/"))
}
