package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-claude-meter/internal/application/agent"
	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/notifier"
	"github.com/penwyp/go-claude-meter/internal/presentation/menu"
	"github.com/spf13/cobra"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch usage once and print the status",
	Long: `Performs one refresh and prints the status label and detail rows. Unlike
the agent's background refreshes, failures are reported and exit non-zero.

Formats:
  text    label followed by the detail rows
  json    label, rows and raw windows
  waybar  a single JSON line for a waybar/i3blocks custom module`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "text",
		"Output format (text, json, waybar)")
}

// discardRenderer drops renders; status prints once at the end
type discardRenderer struct{}

func (discardRenderer) Render(string, []menu.Item) {}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	// Alerts are logged only, a status bar may run this every minute
	coordinator := newCoordinator(env, discardRenderer{}, &notifier.LogNotifier{})
	if err := coordinator.Refresh(context.Background(), agent.TriggerManual); err != nil {
		return err
	}

	return writeStatus(cmd.OutOrStdout(), coordinator.Status(), coordinator.Settings(), statusFormat)
}

// waybarStatus is the custom module format read by waybar
type waybarStatus struct {
	Text       string `json:"text"`
	Tooltip    string `json:"tooltip"`
	Class      string `json:"class"`
	Percentage int    `json:"percentage"`
}

func writeStatus(w io.Writer, status agent.Status, settings model.DisplaySettings, format string) error {
	switch strings.ToLower(format) {
	case "text", "":
		fmt.Fprintln(w, status.Label)
		for _, line := range detailText(status.Rows) {
			fmt.Fprintln(w, line)
		}
		return nil
	case "json":
		data, err := sonic.ConfigStd.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "waybar":
		data, err := sonic.Marshal(toWaybar(status, settings))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unknown format %q (text, json, waybar)", format)
	}
}

// detailText returns the informational rows, without commands or separators
func detailText(rows []menu.Item) []string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Separator || row.Enabled {
			continue
		}
		lines = append(lines, row.Text)
	}
	return lines
}

func toWaybar(status agent.Status, settings model.DisplaySettings) waybarStatus {
	out := waybarStatus{
		Text:    status.Label,
		Tooltip: strings.Join(detailText(status.Rows), "\n"),
		Class:   "normal",
	}

	for _, kind := range []model.WindowKind{model.WindowSession, model.WindowWeekly} {
		window := status.Session
		if kind == model.WindowWeekly {
			window = status.Weekly
		}
		if window == nil {
			continue
		}

		pct := window.RoundedPercent()
		out.Percentage = max(out.Percentage, pct)
		threshold := settings.AlertThreshold(kind)
		switch {
		case pct >= 100:
			out.Class = "critical"
		case threshold > 0 && pct >= int(threshold) && out.Class != "critical":
			out.Class = "warning"
		}
	}
	return out
}
