package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/dsatrack/internal/config"
	"github.com/abhisek/dsatrack/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "dsatrack",
	Short: "Track progress and spaced reviews through a DSA problem list",
	Long: "dsatrack tracks which problems of a markdown problem list you have solved,\n" +
		"schedules reviews of solved problems and keeps notes alongside them.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the progress database or JSON file (overrides DSATRACK_DB)")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: sqlite or file (overrides DSATRACK_BACKEND)")
	rootCmd.PersistentFlags().String("catalog", "", "Markdown problem list (overrides DSATRACK_CATALOG)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./config.yaml)")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Backend = v
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.Catalog = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DB = v
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then DSATRACK_DB or the config file, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath(cfg.Backend)
}
