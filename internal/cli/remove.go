package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a property",
		Long:  "Delete a property and its payment history (landlord only).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid property ID %q", args[0])
			}
			return runRemove(id)
		},
	}
}

func runRemove(id int64) error {
	if err := newAPIClient().DeleteProperty(id); err != nil {
		return apiErr(err)
	}

	fmt.Printf("✓ Property #%d removed.\n", id)
	return nil
}
