package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/recordroom/vinyl-lister/internal/eval/dataset"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var datasetPath string
	var limit int
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect dataset rows before running an evaluation",
		Example: `  # Inspect first 5 rows interactively
  vinyl-lister eval inspect --dataset ./records.parquet --limit 5 --interactive

  # Inspect all rows
  vinyl-lister eval inspect --dataset ./records.jsonl --limit -1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader
			if interactive {
				in = os.Stdin
			}
			return executeInspect(cmd.Context(), cmd.OutOrStdout(), in, datasetPath, limit)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to parquet or jsonl dataset file (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of rows to inspect (-1 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause after each row (press Enter to continue)")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// executeInspect prints each row. With a non-nil in it waits for a line
// from in between rows.
func executeInspect(ctx context.Context, w io.Writer, in io.Reader, datasetPath string, limit int) error {
	items, err := dataset.NewLoader(datasetPath).LoadSample(limit)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	fmt.Fprintf(w, "Loaded %d rows from %s\n", len(items), datasetPath)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	var reader *bufio.Reader
	if in != nil {
		reader = bufio.NewReader(in)
	}

	for i, item := range items {
		if ctx.Err() != nil {
			fmt.Fprintln(w, "\nInspection interrupted.")
			return nil
		}

		fmt.Fprintf(w, "ROW %d/%d\n", i+1, len(items))
		fmt.Fprintln(w, strings.Repeat("-", 80))
		fmt.Fprintf(w, "Folder:         %s\n", item.FolderID)
		fmt.Fprintf(w, "Title:          %s\n", item.ExpectedTitle)
		fmt.Fprintf(w, "Artist:         %s\n", item.ExpectedArtist)
		fmt.Fprintf(w, "Catalog Number: %s\n", item.ExpectedCatalogNumber)
		fmt.Fprintf(w, "Released:       %s\n", item.ExpectedReleased)
		fmt.Fprintf(w, "Discogs:        %s\n", item.ExpectedDiscogsURL)
		fmt.Fprintln(w)

		if reader == nil {
			continue
		}
		fmt.Fprint(w, "Press Enter to continue to next row (or Ctrl+C to quit)...")

		inputCh := make(chan struct{})
		go func() {
			_, _ = reader.ReadString('\n')
			close(inputCh)
		}()
		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nInspection interrupted.")
			return nil
		case <-inputCh:
			fmt.Fprintln(w)
		}
	}
	return nil
}
