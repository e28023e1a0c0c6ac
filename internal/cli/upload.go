package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newUploadImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload-image <id> <file>",
		Short: "Upload a property photo",
		Long:  "Upload an image file for a property (landlord only). JPEG, PNG and WebP are accepted.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid property ID %q", args[0])
			}
			return runUploadImage(id, args[1])
		},
	}
}

func runUploadImage(id int64, path string) error {
	p, err := newAPIClient().UploadImage(id, path)
	if err != nil {
		return apiErr(err)
	}

	if isJSON() {
		return printJSON(p)
	}

	fmt.Printf("✓ Image uploaded for property #%d: %s\n", p.ID, p.ImageURL)
	return nil
}
