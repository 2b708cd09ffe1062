package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vinyl-lister",
		Short: "Turn folders of vinyl record photos into marketplace listings",
		Long: `vinyl-lister reads one Google Drive folder of photos per record, identifies
each release with a vision LLM, hosts the photos and exports a bulk-upload
CSV once an operator has confirmed condition and price.

It also includes tools for evaluating identification accuracy against a
labeled dataset.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
