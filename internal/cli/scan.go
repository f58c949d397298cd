package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/citewatch/citewatch/internal/model"
	"github.com/citewatch/citewatch/internal/pipeline"
	"github.com/citewatch/citewatch/internal/review"
	"github.com/spf13/cobra"
)

var (
	scanThreshold      float64
	scanIncludePartial bool
	scanMaxItems       int
	scanCheckLinks     bool
	scanTimeout        time.Duration
	scanJSON           string
	scanSummary        bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <document>",
	Short: "Build a prioritized review queue for a document",
	Long: `Scan analyzes a document to find content that needs human review:
- Paragraphs whose evidence confidence falls below the threshold
- Citations that failed verification against bibliographic databases
- Dead or inaccessible citation URLs

Unverified citations surface first, then partial matches, then
low-confidence paragraphs ordered by ascending confidence.

Example:
  citewatch scan report.md
  citewatch scan report.md --threshold 0.7 --check-links
  citewatch scan report.md --json queue.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScanCommand,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Float64Var(&scanThreshold, "threshold", 0, "confidence threshold in [0,1] (default: configured value)")
	scanCmd.Flags().BoolVar(&scanIncludePartial, "include-partial", true, "flag partially verified citations")
	scanCmd.Flags().IntVar(&scanMaxItems, "max-items", 0, "cap queue size (default: configured value)")
	scanCmd.Flags().BoolVar(&scanCheckLinks, "check-links", false, "probe citation URLs for accessibility")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 2*time.Minute, "overall scan timeout")
	scanCmd.Flags().StringVar(&scanJSON, "json", "", "write the queue as JSON to this path")
	scanCmd.Flags().BoolVar(&scanSummary, "summary", false, "generate an LLM digest of the queue (requires llm.enabled)")
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	documentPath := args[0]

	content, err := os.ReadFile(documentPath)
	if err != nil {
		return fmt.Errorf("error reading document: %w", err)
	}

	cfg := loadConfig()
	if scanSummary {
		cfg.LLM.Enabled = true
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("error creating pipeline: %w", err)
	}

	opts := review.ScanOptions{
		MaxItems:   scanMaxItems,
		CheckLinks: scanCheckLinks,
	}
	if cmd.Flags().Changed("threshold") {
		opts.ConfidenceThreshold = &scanThreshold
	}
	if cmd.Flags().Changed("include-partial") {
		opts.IncludePartialCitations = &scanIncludePartial
	}

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	queue, err := p.ScanDocument(ctx, documentPath, string(content), opts)
	if err != nil {
		return fmt.Errorf("error scanning document: %w", err)
	}

	if scanJSON != "" {
		data, err := json.MarshalIndent(queue, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding queue: %w", err)
		}
		if err := os.WriteFile(scanJSON, data, 0644); err != nil {
			return fmt.Errorf("error writing queue: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Queue written to %s\n", scanJSON)
	}

	printQueue(queue)

	if scanSummary {
		summary, err := p.SummarizeQueue(ctx, documentPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: summary generation failed: %v\n", err)
		} else if summary != "" {
			fmt.Println()
			fmt.Println("Summary:")
			fmt.Println(summary)
		}
	}
	return nil
}

func printQueue(queue *model.DocumentReviewQueue) {
	fmt.Printf("Review queue for %s\n", queue.DocumentPath)
	fmt.Printf("  Items:          %d (%d pending)\n", queue.Stats.Total, queue.Stats.Pending)
	fmt.Printf("  Low confidence: %d\n", queue.Stats.LowConfidence)
	fmt.Printf("  Citations:      %d\n", queue.Stats.Citations)
	fmt.Println()

	for i, item := range queue.Items {
		fmt.Printf("%d. [%s] %s\n", i+1, item.Type, item.ID)
		switch item.Type {
		case model.ItemLowConfidence:
			fmt.Printf("   Confidence %.2f: %s\n", item.Confidence, truncate(item.ParagraphText, 100))
			for _, ind := range item.Indicators {
				fmt.Printf("   - %s\n", ind)
			}
		case model.ItemCitation:
			fmt.Printf("   [%d] %s (%s)\n", item.CitationNumber, item.CitationTitle, item.VerificationStatus)
			if item.CitationURL != "" {
				fmt.Printf("   %s\n", item.CitationURL)
			}
		}
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
