package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a property's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid property ID %q", args[0])
			}
			return runShow(id)
		},
	}
}

func runShow(id int64) error {
	p, err := newAPIClient().GetProperty(id)
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(p)
	}

	printPropertySummary(p)
	return nil
}
