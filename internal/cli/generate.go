// ABOUTME: Generate command
// ABOUTME: Produces today's briefing now or when it is due
package cli

import (
	"fmt"

	"github.com/harperreed/sportsbrief/internal/briefing"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate today's briefing",
	Long:  "Generate today's briefing if it is due, or right away with --force.",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().Bool("force", false, "Generate even if today's briefing exists or it is not yet due")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, false, true)
	if err != nil {
		return err
	}
	defer a.Close()

	updates, unsubscribe := a.Runner.Subscribe()
	defer unsubscribe()
	go func() {
		for st := range updates {
			if st.Generating && st.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), st.Message)
			}
		}
	}()

	ran, err := a.Generate(ctx, force)
	if err != nil {
		return err
	}
	if !ran {
		fmt.Fprintf(cmd.OutOrStdout(), "Nothing to do: today's briefing exists or it is before %s.\n", a.Config.BriefingTime)
		return nil
	}

	list, err := a.Store.Briefings()
	if err != nil || len(list) == 0 {
		return err
	}
	printBriefing(cmd, list[0])
	return nil
}

func printBriefing(cmd *cobra.Command, b briefing.Briefing) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", b.Title)
	fmt.Fprintf(out, "  id: %s\n", b.ID)
	fmt.Fprintf(out, "  %s\n", b.Time().Local().Format("Monday, January 2, 2006 15:04"))
	for _, s := range b.Sources {
		fmt.Fprintf(out, "  - %s (%s)\n", s.Title, s.URI)
	}
}
