// Package cli defines the cobra command tree for nyumba.
package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nyumba-app/nyumba/internal/client"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nyumba",
		Short:         "Manage rental properties, rent payments and tenant chat",
		Long:          "Property management for a single landlord and their tenants. Register accounts, track properties, collect rent over M-Pesa and message tenants, via CLI or web UI.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.nyumba/nyumba.db)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newRegisterCmd(),
		newStatusCmd(),
		newListCmd(),
		newShowCmd(),
		newAddCmd(),
		newUpdateCmd(),
		newRemoveCmd(),
		newUploadImageCmd(),
		newPaymentsCmd(),
		newPayCmd(),
		newMarkPaymentCmd(),
		newTenantsCmd(),
		newConversationsCmd(),
		newMessagesCmd(),
		newSendCmd(),
		newDashboardCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the nyumba API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getToken())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

// apiErr translates API errors for the terminal. A rejected token means
// the stored session is stale, so it is cleared before telling the user
// to log in again.
func apiErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, client.ErrUnauthorized) {
		if cfg, lerr := loadConfig(); lerr == nil && cfg.Token != "" {
			cfg.Token = ""
			if serr := saveConfig(cfg); serr != nil {
				fmt.Fprintf(os.Stderr, "warning: clearing session: %v\n", serr)
			}
		}
		return fmt.Errorf("session expired, run 'nyumba login' to sign in again")
	}
	return err
}
