package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/util"
	"github.com/spf13/cobra"
)

var (
	loginOrgID      string
	loginSessionKey string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save the organization ID and session key",
	Long: `Saves the credentials used to query the usage endpoint. Both values come
from a logged-in claude.ai browser session: the organization ID from the
lastActiveOrg cookie and the session key from the sessionKey cookie.

The file is written with owner-only permissions.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVar(&loginOrgID, "org-id", "",
		"Claude organization ID")
	loginCmd.Flags().StringVar(&loginSessionKey, "session-key", "",
		"Claude sessionKey cookie value")
}

func runLogin(cmd *cobra.Command, args []string) error {
	orgID := strings.TrimSpace(loginOrgID)
	sessionKey := strings.TrimSpace(loginSessionKey)
	if orgID == "" || sessionKey == "" {
		return errors.New("both --org-id and --session-key are required")
	}

	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.credentials.Save(model.Credentials{OrgID: orgID, SessionKey: sessionKey}); err != nil {
		return err
	}

	util.LogInfo("Credentials saved from CLI", util.F("org_id", orgID))
	fmt.Fprintf(cmd.OutOrStdout(), "Credentials saved to %s\n", env.credentials.Path())
	return nil
}
