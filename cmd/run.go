package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/dsatrack/internal/app"
	"github.com/abhisek/dsatrack/internal/catalog"
	"github.com/abhisek/dsatrack/internal/config"
	"github.com/abhisek/dsatrack/internal/logger"
	"github.com/abhisek/dsatrack/internal/query"
	"github.com/abhisek/dsatrack/internal/store"
	"github.com/abhisek/dsatrack/internal/tracker"
)

// env is everything a command needs once config, logging and storage are
// set up.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *store.Store
	tracker *tracker.Tracker // nil for commands that skip the catalog
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("close store", zap.Error(err))
	}
	_ = e.log.Sync()
}

// openStore loads config, builds the logger and opens the progress store.
func openStore(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	backend, err := store.OpenBackend(cfg.Backend, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	st := store.New(backend,
		store.WithLogger(log.Named("store")),
		store.WithBackupKeep(cfg.BackupKeep),
	)
	st.Load(ctxOf(cmd))
	log.Debug("opened store",
		zap.String("backend", cfg.Backend),
		zap.String("path", dbPath),
		zap.Int("records", st.Len()),
	)
	return &env{cfg: cfg, log: log, store: st}, nil
}

// openTracker is openStore plus the parsed catalog.
func openTracker(cmd *cobra.Command) (*env, error) {
	e, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	c, err := catalog.ParseFile(e.cfg.Catalog, catalog.Options{CuratedTag: e.cfg.CuratedTag})
	if err != nil {
		e.Close()
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("catalog %s not found (set --catalog or DSATRACK_CATALOG)", e.cfg.Catalog)
		}
		return nil, err
	}
	if c.Len() == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: no problems found in %s\n", e.cfg.Catalog)
	}

	e.tracker = tracker.New(e.store, c,
		tracker.WithLogger(e.log.Named("tracker")),
		tracker.WithEngine(query.NewEngine(e.cfg.CuratedTag)),
	)
	return e, nil
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// runApp opens the tracker and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openTracker(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	return app.Run(e.tracker)
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the problem list interactively (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}
