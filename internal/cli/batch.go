package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/citewatch/citewatch/internal/model"
	"github.com/citewatch/citewatch/internal/pipeline"
	"github.com/citewatch/citewatch/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchConcurrency int
	batchTimeout     time.Duration
	batchJSON        string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify multiple citations from a file in parallel",
	Long: `Batch verifies citations concurrently, one query per line:
- A line starting with "10." is treated as a DOI
- Any other line is a title, optionally followed by "|year"

Per-service rate limits are shared across workers, so concurrency never
exceeds the polite request rates of the bibliographic providers.

Example:
  citewatch batch citations.txt
  citewatch batch citations.txt --concurrency 8 --json results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchVerify,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
	batchCmd.Flags().StringVar(&batchJSON, "json", "", "write results as JSON to this path")
}

func runBatchVerify(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	p, err := pipeline.NewPipeline(loadConfig())
	if err != nil {
		return fmt.Errorf("error creating pipeline: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	batch := worker.NewBatchVerifier(p.Verifier(), batchConcurrency)
	results, err := batch.VerifyFile(ctx, filePath)
	if err != nil {
		return fmt.Errorf("error running batch: %w", err)
	}

	verified, partial, failed := 0, 0, 0
	for _, r := range results {
		switch r.Result.Status {
		case model.StatusVerified:
			verified++
		case model.StatusPartial:
			partial++
		default:
			failed++
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "%3d. %-10s %.2f  %s\n", r.Index+1, r.Result.Status, r.Result.Confidence, queryLabel(r))
		}
	}

	fmt.Printf("Verified: %d\n", verified)
	fmt.Printf("Partial:  %d\n", partial)
	fmt.Printf("Failed:   %d\n", failed)

	if batchJSON != "" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding results: %w", err)
		}
		if err := os.WriteFile(batchJSON, data, 0644); err != nil {
			return fmt.Errorf("error writing results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Results written to %s\n", batchJSON)
	}
	return nil
}

func queryLabel(r *worker.VerifyResult) string {
	if r.Query.DOI != "" {
		return r.Query.DOI
	}
	return r.Query.Title
}
