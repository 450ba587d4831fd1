// ABOUTME: Watch command
// ABOUTME: Follows a feed server's live generation status
package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/sportsbrief/internal/client"
	"github.com/harperreed/sportsbrief/internal/discovery"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [host:port]",
	Short: "Follow a feed server's generation status",
	Long:  "Follow a feed server's generation status. Without an address the first server found over mDNS is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(false); err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	addr := ""
	if len(args) == 1 {
		addr = args[0]
	} else {
		mgr := discovery.NewManager(discovery.Config{})
		feeds, err := mgr.Browse(3 * time.Second)
		mgr.Stop()
		if err != nil {
			return err
		}
		if len(feeds) == 0 {
			return errors.New("no feed servers found")
		}
		addr = feeds[0].Addr()
	}

	c := client.NewClient(client.Config{ServerAddr: addr})
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s\n", addr)

	for {
		select {
		case u, ok := <-c.Updates:
			if !ok {
				return nil
			}
			printStatus(cmd, u)
		case <-ctx.Done():
			return nil
		}
	}
}

func printStatus(cmd *cobra.Command, u client.Update) {
	out := cmd.OutOrStdout()
	st := u.Status
	switch {
	case st.Generating:
		fmt.Fprintf(out, "… %s\n", st.Message)
	case st.Err != "":
		fmt.Fprintf(out, "✗ %s\n", st.Err)
	case st.LastID != "":
		fmt.Fprintf(out, "✓ briefing %s ready\n", st.LastID)
	case u.Snapshot:
		fmt.Fprintln(out, "idle")
	}
}
