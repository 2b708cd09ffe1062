package cmd

import (
	"github.com/recordroom/vinyl-lister/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Record identification evaluation tools",
		Long: `Evaluation tools for measuring how accurately the analyzer identifies
records from their photos.

A dataset is a JSONL or parquet file where each row names a Google Drive
folder of photos and the expected title, artist, catalog number, release
year and Discogs URL.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())

	return cmd
}
