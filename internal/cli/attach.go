package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/citewatch/citewatch/internal/model"
	"github.com/citewatch/citewatch/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	attachTextFile     string
	attachSourcesFile  string
	attachMinRelevance float64
	attachOutput       string
)

// attachCmd represents the attach command
var attachCmd = &cobra.Command{
	Use:   "attach <document>",
	Short: "Attach citations to generated text",
	Long: `Attach extracts factual claims from generated text, matches them to
the retrieval sources that support them, registers citations in the
document's citation sidecar file, and inserts numbered markers after
the claims.

The sources file is a JSON array of retrieval sources:
  [{"id": "s1", "url": "https://...", "title": "...", "content": "...", "relevance_score": 0.9}]

Example:
  citewatch attach report.md --text-file draft.txt --sources sources.json
  citewatch attach report.md --text-file draft.txt --sources sources.json --min-relevance 0.5 -o annotated.md`,
	Args: cobra.ExactArgs(1),
	RunE: runAttach,
}

func init() {
	rootCmd.AddCommand(attachCmd)

	attachCmd.Flags().StringVar(&attachTextFile, "text-file", "", "file containing the generated text (required)")
	attachCmd.Flags().StringVar(&attachSourcesFile, "sources", "", "JSON file of retrieval sources (required)")
	attachCmd.Flags().Float64Var(&attachMinRelevance, "min-relevance", 0, "ignore sources scoring below this relevance")
	attachCmd.Flags().StringVarP(&attachOutput, "output", "o", "", "write annotated text to file (default: stdout)")
	_ = attachCmd.MarkFlagRequired("text-file")
	_ = attachCmd.MarkFlagRequired("sources")
}

func runAttach(cmd *cobra.Command, args []string) error {
	documentPath := args[0]

	text, err := os.ReadFile(attachTextFile)
	if err != nil {
		return fmt.Errorf("error reading text file: %w", err)
	}
	sources, err := readSources(attachSourcesFile)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(loadConfig())
	if err != nil {
		return fmt.Errorf("error creating pipeline: %w", err)
	}

	result, err := p.AttachCitations(documentPath, string(text), sources, pipeline.AttachOptions{
		MinRelevance: attachMinRelevance,
	})
	if err != nil {
		return fmt.Errorf("error attaching citations: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Claims extracted:  %d\n", len(result.Claims))
		fmt.Fprintf(os.Stderr, "Citations added:   %d\n", result.AddedCitations)
		fmt.Fprintf(os.Stderr, "Citations total:   %d\n", result.TotalCitations)
	}

	if attachOutput != "" {
		if err := os.WriteFile(attachOutput, []byte(result.AnnotatedText), 0644); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Annotated text written to %s\n", attachOutput)
		return nil
	}
	fmt.Print(result.AnnotatedText)
	return nil
}

func readSources(path string) ([]model.RAGSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading sources file: %w", err)
	}
	var sources []model.RAGSource
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("error parsing sources file: %w", err)
	}
	return sources, nil
}
