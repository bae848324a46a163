package cmd

import (
	"context"
	"fmt"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/revu/internal/api"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the review analysis backend",
	Long: `Start the REST backend the web UI talks to.

  GET  /api/reviews          all analyzed reviews, newest first
  POST /api/analyze-review   analyze and store {product_name, review_text}

Sentiment comes from HuggingFace (huggingface.token) and key points from the
provider named by keypoints.provider. Reviews are stored in db_path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
		defer stop()
		return runAPI(ctx)
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().IntP("port", "p", 8000, "port to listen on")
	_ = viper.BindPFlag("api.port", apiCmd.Flags().Lookup("port"))
}

// runAPI serves the analysis backend until ctx is cancelled.
func runAPI(ctx context.Context) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	analyzer, err := newAnalyzer(ctx)
	if err != nil {
		return fmt.Errorf("configure analysis: %w", err)
	}

	srv := api.NewServer(s, analyzer,
		api.WithRateLimit(viper.GetFloat64("api.rate_limit"), viper.GetInt("api.burst")),
		api.WithLogger(logger.Named("api")),
	)

	port := viper.GetInt("api.port")
	ui.Info("Serving API at http://localhost:%d/api (db: %s)", port, viper.GetString("db_path"))
	return listenAndServe(ctx, "api", port, srv.Router())
}
