package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/dsatrack/internal/server"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all progress as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("output")

		e, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		blob, err := e.store.ExportAll()
		if err != nil {
			return err
		}
		if path == "-" {
			_, err := cmd.OutOrStdout().Write(append(blob, '\n'))
			return err
		}
		if err := os.WriteFile(path, blob, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", e.store.Len(), path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Replace all progress with an exported JSON file",
	Long: "Replace all progress with an exported JSON file. The file must hold a\n" +
		"JSON object; anything else is rejected and current progress is kept.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			blob []byte
			err  error
		)
		if args[0] == "-" {
			blob, err = io.ReadAll(cmd.InOrStdin())
		} else {
			blob, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read import: %w", err)
		}

		e, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.ImportAll(ctxOf(cmd), blob); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records\n", e.store.Len())
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", server.ExportFilename, `Output file ("-" for stdout)`)
}
