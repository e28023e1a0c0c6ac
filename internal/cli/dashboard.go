package cli

import (
	"github.com/spf13/cobra"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your dashboard",
		Long:  "Print the landlord or tenant dashboard summary, depending on your account.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard()
		},
	}
}

func runDashboard() error {
	c := newAPIClient()

	u, err := c.Profile()
	if err != nil {
		return apiErr(err)
	}

	if u.IsLandlord() {
		summary, err := c.LandlordDashboard()
		if err != nil {
			return apiErr(err)
		}
		if isJSON() {
			return printJSON(summary)
		}
		return printLandlordDashboard(summary)
	}

	summary, err := c.TenantDashboard()
	if err != nil {
		return apiErr(err)
	}
	if isJSON() {
		return printJSON(summary)
	}
	return printTenantDashboard(summary)
}
