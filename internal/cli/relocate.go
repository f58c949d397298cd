package cli

import (
	"fmt"
	"os"

	"github.com/citewatch/citewatch/internal/pipeline"
	"github.com/spf13/cobra"
)

var relocateTextFile string

// relocateCmd represents the relocate command
var relocateCmd = &cobra.Command{
	Use:   "relocate <document>",
	Short: "Re-anchor source-claim links after a document edit",
	Long: `Relocate finds each persisted source-claim link in the edited document
text. Exact matches are tried first; moved or lightly edited claims are
recovered by matching the claim's first word, last word, and approximate
length. Links that cannot be recovered are counted as lost but kept for
manual reconciliation.

Example:
  citewatch relocate report.md
  citewatch relocate report.md --text-file edited.md`,
	Args: cobra.ExactArgs(1),
	RunE: runRelocate,
}

func init() {
	rootCmd.AddCommand(relocateCmd)

	relocateCmd.Flags().StringVar(&relocateTextFile, "text-file", "", "edited text (default: the document itself)")
}

func runRelocate(cmd *cobra.Command, args []string) error {
	documentPath := args[0]

	textPath := relocateTextFile
	if textPath == "" {
		textPath = documentPath
	}
	text, err := os.ReadFile(textPath)
	if err != nil {
		return fmt.Errorf("error reading document text: %w", err)
	}

	p, err := pipeline.NewPipeline(loadConfig())
	if err != nil {
		return fmt.Errorf("error creating pipeline: %w", err)
	}

	result, err := p.RelocateAfterEdit(documentPath, string(text))
	if err != nil {
		return fmt.Errorf("error relocating links: %w", err)
	}

	fmt.Printf("Relocated: %d\n", result.Relocated)
	fmt.Printf("Lost:      %d\n", result.Lost)
	return nil
}
