package cmd

import (
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joescharf/revu/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an MCP client list and submit reviews through the backend at
api_url. Configure it with:

  {
    "mcpServers": {
      "revu": { "command": "revu", "args": ["mcp"] }
    }
  }

Available tools: revu_list_reviews, revu_analyze_review`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
		defer stop()

		srv := mcp.NewServer(newReviewClient(), buildVersion)
		return srv.ServeStdio(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
