package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/revu/internal/form"
	"github.com/joescharf/revu/internal/output"
	"github.com/joescharf/revu/internal/view"
	"github.com/joescharf/revu/internal/workflow"
)

var (
	reviewsJSON    bool
	reviewsProduct string
	reviewsText    string
)

var reviewsCmd = &cobra.Command{
	Use:     "reviews",
	Aliases: []string{"review", "r"},
	Short:   "List or submit reviews against the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewsListRun(cmd.Context(), newReviewClient())
	},
}

var reviewsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List analyzed reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewsListRun(cmd.Context(), newReviewClient())
	},
}

var reviewsSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a review for analysis",
	Example: `  revu reviews submit --product "Laptop X" --text "Great screen, battery lasts all day"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewsSubmitRun(cmd.Context(), newReviewClient(), reviewsProduct, reviewsText)
	},
}

func init() {
	reviewsCmd.PersistentFlags().BoolVar(&reviewsJSON, "json", false, "Output as JSON")
	reviewsSubmitCmd.Flags().StringVar(&reviewsProduct, "product", "", "Product name (required)")
	reviewsSubmitCmd.Flags().StringVar(&reviewsText, "text", "", "Review text (required)")
	_ = reviewsSubmitCmd.MarkFlagRequired("product")
	_ = reviewsSubmitCmd.MarkFlagRequired("text")

	reviewsCmd.AddCommand(reviewsListCmd)
	reviewsCmd.AddCommand(reviewsSubmitCmd)
	rootCmd.AddCommand(reviewsCmd)
}

func reviewsListRun(ctx context.Context, store workflow.ReviewStore) error {
	sess := workflow.NewSession(store, logger)
	defer sess.Close()

	if err := sess.Mount(ctx); err != nil {
		return fmt.Errorf("%s: %w", workflow.FetchFailedMessage, err)
	}
	return printReviews(sess)
}

func reviewsSubmitRun(ctx context.Context, store workflow.ReviewStore, product, text string) error {
	sess := workflow.NewSession(store, logger)
	defer sess.Close()

	if err := sess.UpdateDraft(form.FieldProductName, product); err != nil {
		return err
	}
	if err := sess.UpdateDraft(form.FieldReviewText, text); err != nil {
		return err
	}

	if dryRun {
		d := sess.Draft()
		ui.DryRunMsg("Would submit review for %q (%d chars)", d.ProductName, len(d.ReviewText))
		return nil
	}

	ui.VerboseLog("Submitting review for %q", product)
	if err := sess.Submit(ctx); err != nil {
		return fmt.Errorf("%s: %w", workflow.SubmitFailedMessage, err)
	}

	st, _ := sess.Snapshot()
	if st.Error != "" {
		ui.Warning("%s", st.Error)
		return nil
	}
	ui.Success("Review for %q analyzed", product)
	return printReviews(sess)
}

func printReviews(sess *workflow.Session) error {
	st, _ := sess.Snapshot()

	if reviewsJSON {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(st.Reviews)
	}

	fmt.Fprintln(ui.Out, view.Heading(len(st.Reviews)))
	if len(st.Reviews) == 0 {
		ui.Info("%s", view.EmptyMessage)
		return nil
	}

	table := ui.Table([]string{"ID", "PRODUCT", "SENTIMENT", "REVIEW", "KEY POINTS"})
	for _, r := range st.Reviews {
		points := view.KeyPointLines(r.KeyPoints)
		first := ""
		if len(points) > 0 {
			first = output.Truncate(points[0], 40)
			if len(points) > 1 {
				first += fmt.Sprintf(" (+%d)", len(points)-1)
			}
		}
		table.Append([]string{
			string(r.ID),
			output.Truncate(r.ProductName, 24),
			output.SentimentColor(string(r.Sentiment)),
			output.Truncate(r.ReviewText, 40),
			first,
		})
	}
	return table.Render()
}
