package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/citewatch/citewatch/internal/pipeline"
	"github.com/citewatch/citewatch/internal/review"
	"github.com/spf13/cobra"
)

var (
	reviewEditText string
	reviewReason   string
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List and act on review queue items",
	Long: `Review lists pending items for a document and records reviewer
decisions: accept, edit, remove, or dismiss.

Review actions operate on the queue built by the most recent scan, so
run 'citewatch scan <document>' first in the same invocation context or
use 'review list' which rescans automatically.`,
}

var reviewListCmd = &cobra.Command{
	Use:   "list <document>",
	Short: "Scan a document and list its pending review items",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewList,
}

var reviewAcceptCmd = &cobra.Command{
	Use:   "accept <document> <item-id>",
	Short: "Accept a review item as-is",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReviewAction(args[0], args[1], "accept")
	},
}

var reviewEditCmd = &cobra.Command{
	Use:   "edit <document> <item-id>",
	Short: "Mark a review item edited with replacement text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if reviewEditText == "" {
			return fmt.Errorf("--text is required for edit")
		}
		return runReviewAction(args[0], args[1], "edit")
	},
}

var reviewRemoveCmd = &cobra.Command{
	Use:   "remove <document> <item-id>",
	Short: "Mark a review item for removal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReviewAction(args[0], args[1], "remove")
	},
}

var reviewDismissCmd = &cobra.Command{
	Use:   "dismiss <document> <item-id>",
	Short: "Dismiss a review item without changes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReviewAction(args[0], args[1], "dismiss")
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewListCmd, reviewAcceptCmd, reviewEditCmd, reviewRemoveCmd, reviewDismissCmd)

	reviewEditCmd.Flags().StringVar(&reviewEditText, "text", "", "replacement text (required)")
	reviewRemoveCmd.Flags().StringVar(&reviewReason, "reason", "", "reason for removal")
	reviewDismissCmd.Flags().StringVar(&reviewReason, "reason", "", "reason for dismissal")
}

func runReviewList(cmd *cobra.Command, args []string) error {
	documentPath := args[0]

	content, err := os.ReadFile(documentPath)
	if err != nil {
		return fmt.Errorf("error reading document: %w", err)
	}

	p, err := pipeline.NewPipeline(loadConfig())
	if err != nil {
		return fmt.Errorf("error creating pipeline: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	queue, err := p.ScanDocument(ctx, documentPath, string(content), review.ScanOptions{})
	if err != nil {
		return fmt.Errorf("error scanning document: %w", err)
	}
	printQueue(queue)
	return nil
}

func runReviewAction(documentPath, itemID, action string) error {
	content, err := os.ReadFile(documentPath)
	if err != nil {
		return fmt.Errorf("error reading document: %w", err)
	}

	p, err := pipeline.NewPipeline(loadConfig())
	if err != nil {
		return fmt.Errorf("error creating pipeline: %w", err)
	}

	// Actions need a queue in memory, so scan first.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if _, err := p.ScanDocument(ctx, documentPath, string(content), review.ScanOptions{}); err != nil {
		return fmt.Errorf("error scanning document: %w", err)
	}

	switch action {
	case "accept":
		err = p.AcceptItem(documentPath, itemID)
	case "edit":
		err = p.EditItem(documentPath, itemID, reviewEditText)
	case "remove":
		err = p.RemoveItem(documentPath, itemID, reviewReason)
	case "dismiss":
		err = p.DismissItem(documentPath, itemID, reviewReason)
	}
	if err != nil {
		return fmt.Errorf("error applying %s: %w", action, err)
	}
	fmt.Printf("Applied %s to item %s\n", action, itemID)
	return nil
}
