package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	webui "github.com/joescharf/revu/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the review analyzer web UI",
	Long: `Start an HTTP server that renders the review analyzer page.

The page talks to the backend at api_url (default http://127.0.0.1:8000/api).
By default it listens on port 5173. Use --port to change it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
		defer stop()
		return runUI(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 5173, "port to listen on")
	_ = viper.BindPFlag("ui.port", serveCmd.Flags().Lookup("port"))
}

// runUI serves the web UI until ctx is cancelled.
func runUI(ctx context.Context) error {
	rc := newReviewClient()
	srv := webui.NewServer(rc, sessionTTL(), logger.Named("ui"))

	handler, err := srv.Router()
	if err != nil {
		return fmt.Errorf("failed to initialize UI handler: %w", err)
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go srv.Sessions().Run(sweepCtx, time.Minute)

	port := viper.GetInt("ui.port")
	ui.Info("Serving UI at http://localhost:%d (backend: %s)", port, rc.BaseURL())
	return listenAndServe(ctx, "ui", port, handler)
}
