package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-claude-meter/internal/data/history"
	"github.com/penwyp/go-claude-meter/internal/util"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded usage readings",
	Long: `Lists the most recent successful readings recorded by the agent, newest
first. Readings older than history.retention_days are pruned on the
history.prune_cron schedule.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20,
		"Number of readings to show")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "table",
		"Output format (table, json)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", historyLimit)
	}

	env, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	if !env.cfg.History.Enabled {
		return errors.New("usage history is disabled (history.enabled: false)")
	}

	entries, err := env.recorder.Recent(context.Background(), historyLimit)
	if err != nil {
		return err
	}
	return writeHistory(cmd.OutOrStdout(), entries, historyFormat)
}

func writeHistory(w io.Writer, entries []history.Entry, format string) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "table", "":
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "No readings recorded yet")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FETCHED\tSESSION\tWEEKLY")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\n",
				util.GetTimeProvider().Format(e.FetchedAt, "2006-01-02 15:04"),
				percentCell(e.Session),
				percentCell(e.Weekly))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (table, json)", format)
	}
}

func percentCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", *v)
}
