// ABOUTME: Discover command
// ABOUTME: Browses the local network for feed servers
package cli

import (
	"fmt"
	"time"

	"github.com/harperreed/sportsbrief/internal/discovery"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find feed servers on the local network",
	Args:  cobra.NoArgs,
	RunE:  runDiscover,
}

func init() {
	discoverCmd.Flags().Duration("timeout", 3*time.Second, "How long to browse")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if _, err := loadConfig(false); err != nil {
		return err
	}

	mgr := discovery.NewManager(discovery.Config{})
	defer mgr.Stop()

	feeds, err := mgr.Browse(timeout)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(feeds) == 0 {
		fmt.Fprintln(out, "No feed servers found.")
		return nil
	}
	for _, f := range feeds {
		fmt.Fprintf(out, "%s  http://%s/api\n", f.Name, f.Addr())
	}
	return nil
}
