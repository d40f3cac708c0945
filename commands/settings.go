package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var settingsFormat string

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change display and alert settings",
	Long: `Display settings are stored in settings.json in the config directory. A
running agent picks up changes made here without a restart.

Keys:
  menuBarDisplay     session, weekly, both, higher
  showPercentSymbol  true, false
  progressStyle      circles, blocks, bar, dots
  progressLength     0-100
  refreshInterval    minutes between refreshes (0 disables polling)
  notifySession      session alert threshold in percent (0 disables)
  notifyWeekly       weekly alert threshold in percent (0 disables)`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value [key=value...]",
	Short: "Change one or more settings",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd)

	settingsShowCmd.Flags().StringVarP(&settingsFormat, "format", "f", "yaml",
		"Output format (yaml, json)")
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	s, err := env.settings.Load()
	if err != nil {
		return err
	}
	return writeSettings(cmd.OutOrStdout(), s, settingsFormat)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	s := env.loadSettings()
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", arg)
		}
		if err := applySetting(&s, key, value); err != nil {
			return err
		}
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if err := env.settings.Save(s); err != nil {
		return err
	}

	util.LogInfo("Settings changed from CLI", util.F("args", strings.Join(args, " ")))
	return writeSettings(cmd.OutOrStdout(), s, "yaml")
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.settings.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Settings restored to defaults")
	return nil
}

// applySetting parses value into the field named by key. Keys match the
// settings file and are case-insensitive.
func applySetting(s *model.DisplaySettings, key, value string) error {
	value = strings.TrimSpace(value)

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "menubardisplay":
		mode, err := model.ParseStatusMode(value)
		if err != nil {
			return err
		}
		s.StatusMode = mode
	case "showpercentsymbol":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: showPercentSymbol must be true or false, got %q", model.ErrInvalidSettings, value)
		}
		s.ShowPercentSign = v
	case "progressstyle":
		style, err := model.ParseBarStyle(value)
		if err != nil {
			return err
		}
		s.BarStyle = style
	case "progresslength":
		return parseUint(&s.BarLength, key, value)
	case "refreshinterval":
		return parseUint(&s.PollMinutes, key, value)
	case "notifysession":
		return parseUint(&s.SessionAlertPct, key, value)
	case "notifyweekly":
		return parseUint(&s.WeeklyAlertPct, key, value)
	default:
		return fmt.Errorf("%w: unknown setting %q", model.ErrInvalidSettings, key)
	}
	return nil
}

func parseUint(dst *uint, key, value string) error {
	v, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %s must be a non-negative integer, got %q", model.ErrInvalidSettings, key, value)
	}
	*dst = uint(v)
	return nil
}

func writeSettings(w io.Writer, s model.DisplaySettings, format string) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := sonic.ConfigStd.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (yaml, json)", format)
	}
}
