package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyumba-app/nyumba/internal/client"
	"github.com/nyumba-app/nyumba/internal/user"
)

func newRegisterCmd() *cobra.Command {
	var in client.RegisterInput
	var server string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Long:  "Registers a landlord or tenant account on the server and stores the session token.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(in, server)
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (required)")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&in.PhoneNumber, "phone", "", "M-Pesa phone number")
	cmd.Flags().StringVar(&in.HouseNumber, "house", "", "house number (tenants only)")
	cmd.Flags().StringVar(&in.Role, "role", "tenant", "account role (landlord|tenant)")
	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or http://localhost:8080)")

	return cmd
}

func runRegister(in client.RegisterInput, serverFlag string) error {
	if in.Email == "" {
		return fmt.Errorf("--email is required")
	}
	if in.Password == "" {
		return fmt.Errorf("--password is required")
	}
	if !user.ValidRole(in.Role) {
		return fmt.Errorf("invalid role %q (must be landlord or tenant)", in.Role)
	}

	serverURL := serverFlag
	if serverURL == "" {
		serverURL = getServerURL()
	}

	session, err := client.New(serverURL, "").Register(in)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}

	cfg.Token = session.Token
	cfg.Email = session.User.Email
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("✓ Account created. Logged in as %s (%s).\n", session.User.FullName(), session.User.Role)
	return nil
}
