package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyumba-app/nyumba/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks if the stored session token is valid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	serverURL := getServerURL()
	token := getToken()

	fmt.Printf("Server:  %s\n", serverURL)

	if token == "" {
		fmt.Println("Session: not logged in")
		fmt.Println("\nRun 'nyumba login <email>' to authenticate.")
		return nil
	}

	prefix := token
	if len(prefix) > 12 {
		prefix = prefix[:12]
	}
	fmt.Printf("Token:   %s…\n", prefix)

	u, err := newAPIClient().Profile()
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Println("Status:  ✗ session expired")
			fmt.Println("\nRun 'nyumba login <email>' to re-authenticate.")
			return nil
		}
		fmt.Printf("Status:  ✗ cannot reach server (%v)\n", err)
		return nil
	}

	fmt.Printf("Status:  ✓ connected as %s (%s)\n", u.FullName(), u.Role)
	return nil
}
