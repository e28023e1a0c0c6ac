package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var rent float64
	var description string

	cmd := &cobra.Command{
		Use:   "add <name> <address>",
		Short: "Add a property",
		Long:  "Add a rental property to the portfolio (landlord only).",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(args[0], args[1], rent, description)
		},
	}

	cmd.Flags().Float64Var(&rent, "rent", 0, "monthly rent in KES (default: 20,000)")
	cmd.Flags().StringVar(&description, "description", "", "property description")

	return cmd
}

func runAdd(name, address string, rent float64, description string) error {
	p, err := newAPIClient().CreateProperty(name, address, rent, description)
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(p)
	}

	fmt.Printf("✓ Property #%d added: %s\n", p.ID, p.Name)
	return nil
}
