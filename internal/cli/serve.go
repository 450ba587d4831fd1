// ABOUTME: Serve command
// ABOUTME: Runs the daily check loop and the HTTP feed server
package cli

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the briefing feed server",
	Long: `Run the daily check loop and serve teams, briefings, WAV audio and live
generation status over HTTP. The server is advertised over mDNS when enabled.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, false, true)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}
