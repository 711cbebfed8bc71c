package cli

import (
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Import the corpus and report on its raw shape",
	Long: `Import the configured corpus and print its raw statistics: sample and
column counts, duplicate and empty rows, and min/max review length.`,
	Example: `  labeleval analyze
  labeleval analyze --source file --dataset reviews.csv --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		result, err := loadCorpus(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		return printReport(cmd.OutOrStdout(), result.Report)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
