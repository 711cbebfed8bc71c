package cli

import (
	"github.com/spf13/cobra"
)

var evaluatePredictions string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a predictions file",
	Long: `Read a predictions file (target,predictions) and compute the configured
metrics. Keys from different metrics share one flat map unless
evaluation.namespaced_keys is set.`,
	Example: `  labeleval evaluate
  labeleval evaluate --predictions dist/predictions.csv --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		path := cfg.Evaluation.PredictionsPath
		if evaluatePredictions != "" {
			path = evaluatePredictions
		}
		evaluator, err := newEvaluator(cfg, path, logger)
		if err != nil {
			return err
		}
		scores, err := evaluator.Run()
		if err != nil {
			return err
		}
		return printReport(cmd.OutOrStdout(), scores)
	},
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluatePredictions, "predictions", "p", "", "predictions file (default: evaluation.predictions_path)")
	rootCmd.AddCommand(evaluateCmd)
}
