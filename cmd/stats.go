package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/dsatrack/internal/ui/components"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show overall progress and due reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		g := e.tracker.GlobalStats()
		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		}

		fmt.Fprintf(out, "Solved:  %d/%d (%d%%)\n", g.Solved, g.Total, g.Percent)
		fmt.Fprintf(out, "Due:     %d\n", g.Due)
		fmt.Fprintln(out, components.NewProgressBar("", g.Solved, g.Total, g.Percent, 40).View())
		return nil
	},
}

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Show progress per section",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		reports := e.tracker.Sections()
		out := cmd.OutOrStdout()
		if len(reports) == 0 {
			fmt.Fprintln(out, "No sections in the catalog.")
			return nil
		}
		for _, rep := range reports {
			bar := components.NewProgressBar(clip(rep.Section.Title, 28), rep.Checked, rep.Total, rep.Percent, 30)
			fmt.Fprintln(out, bar.View())
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print the stats as JSON")
}
