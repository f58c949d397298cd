package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/citewatch/citewatch/internal/model"
	"github.com/citewatch/citewatch/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	verifyDOI     string
	verifyTitle   string
	verifyAuthors []string
	verifyYear    int
	verifyURL     string
	verifyTimeout time.Duration
	verifyNoCache bool
	verifyJSON    bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [doi]",
	Short: "Verify a citation against bibliographic databases",
	Long: `Verify checks a citation against Crossref and OpenAlex.

A DOI lookup is attempted first when a DOI is available; otherwise the
citation metadata is verified by bibliographic search with weighted
field matching (title, authors, year, venue).

Example:
  citewatch verify 10.1038/nature12373
  citewatch verify --title "Attention Is All You Need" --author Vaswani --year 2017
  citewatch verify --title "Deep Learning" --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyDOI, "doi", "", "DOI to verify")
	verifyCmd.Flags().StringVar(&verifyTitle, "title", "", "work title")
	verifyCmd.Flags().StringSliceVar(&verifyAuthors, "author", nil, "author name (repeatable)")
	verifyCmd.Flags().IntVar(&verifyYear, "year", 0, "publication year")
	verifyCmd.Flags().StringVar(&verifyURL, "url", "", "citation URL (a doi.org URL implies --doi)")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 30*time.Second, "verification timeout")
	verifyCmd.Flags().BoolVar(&verifyNoCache, "no-cache", false, "bypass the verification cache")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "print result as JSON")
}

func runVerify(cmd *cobra.Command, args []string) error {
	query := model.VerificationQuery{
		DOI:     verifyDOI,
		Title:   verifyTitle,
		Authors: verifyAuthors,
		Year:    verifyYear,
		URL:     verifyURL,
	}
	if len(args) == 1 && query.DOI == "" {
		query.DOI = args[0]
	}
	if query.IsEmpty() {
		return fmt.Errorf("nothing to verify: provide a DOI, --title, or --author")
	}

	cfg := loadConfig()
	if verifyNoCache {
		cfg.Cache.Enabled = false
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("error creating pipeline: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	result := p.VerifyCitation(ctx, query)

	if verifyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}

func printResult(result model.VerificationResult) {
	fmt.Printf("Status:     %s\n", result.Status)
	fmt.Printf("Confidence: %.2f\n", result.Confidence)
	if result.Source != "" {
		fmt.Printf("Source:     %s\n", result.Source)
	}
	if result.FromCache {
		fmt.Println("Cached:     yes")
	}
	if result.Error != "" {
		fmt.Printf("Error:      %s\n", result.Error)
	}
	if result.MatchedData != nil {
		fmt.Println("Matched:")
		if result.MatchedData.DOI != "" {
			fmt.Printf("  DOI:     %s\n", result.MatchedData.DOI)
		}
		if result.MatchedData.Title != "" {
			fmt.Printf("  Title:   %s\n", result.MatchedData.Title)
		}
		if len(result.MatchedData.Authors) > 0 {
			fmt.Printf("  Authors: %v\n", result.MatchedData.Authors)
		}
		if result.MatchedData.Year != 0 {
			fmt.Printf("  Year:    %d\n", result.MatchedData.Year)
		}
		if result.MatchedData.Venue != "" {
			fmt.Printf("  Venue:   %s\n", result.MatchedData.Venue)
		}
	}
}
