package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/dsatrack/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tracker as a JSON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		addr := e.cfg.Addr
		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			addr = v
		}

		ctx, stop := signal.NotifyContext(ctxOf(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", addr)
		srv := server.New(e.tracker, addr, e.log.Named("server"))
		if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides DSATRACK_ADDR)")
}
