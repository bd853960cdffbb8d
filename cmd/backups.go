package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/dsatrack/internal/store"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List and restore progress backups (sqlite backend)",
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		repo, ok := e.store.Backups()
		if !ok {
			return store.ErrBackupsUnsupported
		}
		backups, err := repo.ListBackups(ctxOf(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(backups) == 0 {
			fmt.Fprintln(out, "No backups yet.")
			return nil
		}
		for _, b := range backups {
			fmt.Fprintf(out, "%s  %-8s  %s  (%d bytes)\n",
				b.Label, b.Reason, b.CreatedAt.Local().Format("2006-01-02 15:04:05"), len(b.Data))
		}
		return nil
	},
}

var backupsRestoreCmd = &cobra.Command{
	Use:   "restore <label>",
	Short: "Replace progress with a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.RestoreBackup(ctxOf(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s (%d records)\n", args[0], e.store.Len())
		return nil
	},
}

var backupsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")

		e, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if keep < 0 {
			keep = e.cfg.BackupKeep
		}
		repo, ok := e.store.Backups()
		if !ok {
			return store.ErrBackupsUnsupported
		}
		if err := repo.PruneBackups(ctxOf(cmd), keep); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Kept the %d most recent backups\n", keep)
		return nil
	},
}

func init() {
	backupsPruneCmd.Flags().Int("keep", -1, "Backups to keep (default from config)")

	backupsCmd.AddCommand(backupsListCmd)
	backupsCmd.AddCommand(backupsRestoreCmd)
	backupsCmd.AddCommand(backupsPruneCmd)
}
