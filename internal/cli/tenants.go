package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTenantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tenants",
		Short: "List tenant accounts",
		Long:  "List registered tenants and the remaining capacity (landlord only).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTenants()
		},
	}
}

func runTenants() error {
	c := newAPIClient()

	tenants, err := c.ListTenants()
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(tenants)
	}

	if err := printTenantTable(tenants); err != nil {
		return err
	}

	count, limit, err := c.TenantCount()
	if err != nil {
		return apiErr(err)
	}
	fmt.Printf("\n%d of %d tenant slots used.\n", count, limit)
	return nil
}
