package cli

import (
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Load the model and print its structural profile",
	Long: `Load the configured model and report input/output shapes, embedding size,
vocabulary size, context length, parameter counts and parameter bytes.`,
	Example: `  labeleval profile --backend local --model ./models/rubert-tiny`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		p, err := loadPipeline(cmd.Context(), cfg, nil, logger)
		if err != nil {
			return err
		}
		profile, err := p.AnalyzeModel(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(cmd.OutOrStdout(), profile)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
