// ABOUTME: Teams commands
// ABOUTME: List the catalog and follow or unfollow teams
package cli

import (
	"fmt"
	"strings"

	"github.com/harperreed/sportsbrief/internal/catalog"
	"github.com/spf13/cobra"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Browse and follow teams",
}

var teamsListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List teams grouped by league",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTeamsList,
}

var teamsFollowCmd = &cobra.Command{
	Use:   "follow [team-id]",
	Short: "Follow a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFollow(cmd, args[0], true)
	},
}

var teamsUnfollowCmd = &cobra.Command{
	Use:   "unfollow [team-id]",
	Short: "Stop following a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFollow(cmd, args[0], false)
	},
}

func init() {
	teamsCmd.AddCommand(teamsListCmd)
	teamsCmd.AddCommand(teamsFollowCmd)
	teamsCmd.AddCommand(teamsUnfollowCmd)

	teamsListCmd.Flags().Bool("following", false, "Only show followed teams")
}

func runTeamsList(cmd *cobra.Command, args []string) error {
	following, _ := cmd.Flags().GetBool("following")

	a, err := openApp(cmd.Context(), false, false)
	if err != nil {
		return err
	}
	defer a.Close()

	liked, err := a.Store.LikedTeams()
	if err != nil {
		return err
	}
	likedIDs := make(map[string]bool, len(liked))
	for _, t := range liked {
		likedIDs[t.ID] = true
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}

	teams := a.Catalog.Filter(query)
	if following {
		var only []catalog.Team
		for _, t := range teams {
			if likedIDs[t.ID] {
				only = append(only, t)
			}
		}
		teams = only
	}

	out := cmd.OutOrStdout()
	if len(teams) == 0 {
		fmt.Fprintln(out, "No teams found.")
		return nil
	}

	for _, group := range catalog.GroupByLeague(teams) {
		fmt.Fprintf(out, "%s\n", group.League)
		for _, t := range group.Teams {
			marker := " "
			if likedIDs[t.ID] {
				marker = "*"
			}
			fmt.Fprintf(out, "  %s %-10s %s\n", marker, t.ID, t.Name)
		}
	}
	return nil
}

func setFollow(cmd *cobra.Command, id string, follow bool) error {
	a, err := openApp(cmd.Context(), false, false)
	if err != nil {
		return err
	}
	defer a.Close()

	team, err := a.Catalog.Lookup(strings.TrimSpace(id))
	if err != nil {
		return err
	}

	liked, err := a.Store.LikedTeams()
	if err != nil {
		return err
	}

	already := false
	for _, t := range liked {
		if t.ID == team.ID {
			already = true
			break
		}
	}

	if already != follow {
		if _, err := a.Store.ToggleTeam(team); err != nil {
			return err
		}
	}

	if follow {
		fmt.Fprintf(cmd.OutOrStdout(), "Following %s\n", team.Name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Not following %s\n", team.Name)
	}
	return nil
}
