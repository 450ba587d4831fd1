// ABOUTME: Version command
// ABOUTME: Prints product and version information
package cli

import (
	"fmt"

	"github.com/harperreed/sportsbrief/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", version.Product, version.Version, version.Manufacturer)
	},
}
