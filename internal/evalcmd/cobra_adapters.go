package evalcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command that scores the analyzer on labeled folders
func NewRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate record identification against a labeled dataset",
		Long: `Runs the analyzer over labeled record folders and compares its answer
with the expected title, artist, catalog number, release year and Discogs URL.

Each dataset row names a Google Drive folder of record photos. The same photo
selection the web app uses is sent to the analyzer. Results are written as
YAML into the output directory.`,
		Example: `  # Evaluate 10 folders with Ollama
  vinyl-lister eval run --dataset ./records.jsonl --sample 10 --provider ollama

  # Evaluate a parquet dataset with OpenAI, 4 folders at a time
  vinyl-lister eval run --dataset ./records.parquet --sample -1 --provider openai --model gpt-4o --concurrency 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.datasetPath); err != nil {
				return fmt.Errorf("dataset file not found: %s", opts.datasetPath)
			}
			return executeRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Path to JSONL or parquet dataset (required)")
	cmd.Flags().IntVar(&opts.sample, "sample", 10, "Number of folders to evaluate (-1 for all)")
	cmd.Flags().StringVar(&opts.provider, "provider", "openai", "LLM provider (ollama, openai, or gemini)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().StringVar(&opts.outputDir, "output", "evals", "Directory for YAML results")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 1, "Folders analyzed in parallel")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewReportCmd creates the report command that renders a saved result file
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a report from an evaluation result file",
		Example: `  vinyl-lister eval report --results evals/gpt-4o-2025-03-07_10-00-00.yaml
  vinyl-lister eval report --results evals/run.yaml --format csv > run.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to a YAML result file (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv)")

	_ = cmd.MarkFlagRequired("results")
	return cmd
}
