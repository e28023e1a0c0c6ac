package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nyumba-app/nyumba/internal/property"
)

func newUpdateCmd() *cobra.Command {
	var name, address, description string
	var rent float64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a property",
		Long:  "Update a property's details (landlord only). Only the given flags change.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid property ID %q", args[0])
			}

			in := property.UpdateInput{}
			if cmd.Flags().Changed("name") {
				in.Name = &name
			}
			if cmd.Flags().Changed("address") {
				in.Address = &address
			}
			if cmd.Flags().Changed("rent") {
				in.RentAmount = &rent
			}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}

			return runUpdate(id, in)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "property name")
	cmd.Flags().StringVar(&address, "address", "", "property address")
	cmd.Flags().Float64Var(&rent, "rent", 0, "monthly rent in KES")
	cmd.Flags().StringVar(&description, "description", "", "property description")

	return cmd
}

func runUpdate(id int64, in property.UpdateInput) error {
	p, err := newAPIClient().UpdateProperty(id, in)
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(p)
	}

	fmt.Printf("✓ Property #%d updated.\n", p.ID)
	return nil
}
