// ABOUTME: Briefing commands
// ABOUTME: List stored briefings, play one or export it as WAV
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var briefingsCmd = &cobra.Command{
	Use:   "briefings",
	Short: "Manage stored briefings",
}

var briefingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored briefings, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBriefingsList,
}

var playCmd = &cobra.Command{
	Use:   "play [briefing-id]",
	Short: "Play a briefing through the default audio device",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

var exportCmd = &cobra.Command{
	Use:   "export [briefing-id] [output.wav]",
	Short: "Export a briefing as a WAV file",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func init() {
	briefingsCmd.AddCommand(briefingsListCmd)

	briefingsListCmd.Flags().Int("limit", 10, "Number of briefings to show")
}

func runBriefingsList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	a, err := openApp(cmd.Context(), false, false)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.Store.Briefings()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No briefings yet.")
		return nil
	}

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	for _, b := range list {
		fmt.Fprintf(out, "%s  %s\n", b.ID, b.Title)
	}
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, false, false)
	if err != nil {
		return err
	}
	defer a.Close()

	err = a.Play(ctx, args[0], cmd.OutOrStdout())
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Export(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[1])
	return nil
}
