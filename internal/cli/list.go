package cli

import (
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List properties",
		Long:  "List all properties. Landlords see their portfolio, tenants see available units.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}
}

func runList() error {
	props, err := newAPIClient().ListProperties()
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(props)
	}

	return printPropertyTable(props)
}
