package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all progress",
	Long: "Clear all progress. On the sqlite backend a backup is taken first and\n" +
		"can be brought back with 'dsatrack backups restore'.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to clear progress without --yes")
		}

		e, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n := e.store.Len()
		if err := e.store.ResetAll(ctxOf(cmd)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d records\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm clearing all progress")
}
