package commands

import (
	"fmt"

	"github.com/penwyp/go-claude-meter/internal/notifier"
	"github.com/spf13/cobra"
)

var notifyTestCmd = &cobra.Command{
	Use:   "notify-test",
	Short: "Send a test notification",
	Args:  cobra.NoArgs,
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	sink, err := notifier.New(env.cfg.Notify.Backend)
	if err != nil {
		return err
	}

	coordinator := newCoordinator(env, discardRenderer{}, sink)
	if err := coordinator.TestNotification(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
	return nil
}
