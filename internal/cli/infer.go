package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/labeleval/internal/dataset"
	"github.com/ppiankov/labeleval/internal/model"
	"github.com/ppiankov/labeleval/internal/pipeline"
)

var (
	inferText   string
	inferOutput string
)

// textResult is the single-text answer, Infer is null when no model produced a label
type textResult struct {
	Infer *string `json:"infer" yaml:"infer"`
}

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Classify the corpus and write predictions",
	Long: `Run the model over the normalized corpus in batches and write the
predictions file (target,predictions). With --text, classify one review
instead and print its label.`,
	Example: `  labeleval infer
  labeleval infer --batch-size 64 --output dist/predictions.csv
  labeleval infer --text "Отличный фильм"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		ctx := cmd.Context()

		if inferText != "" {
			p, err := loadPipeline(ctx, cfg, nil, logger)
			if err != nil {
				return err
			}
			code, ok, err := p.InferText(ctx, inferText)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), textResult{Infer: humanLabel(code, ok)})
		}

		result, err := loadCorpus(ctx, cfg, logger)
		if err != nil {
			return err
		}
		p, err := loadPipeline(ctx, cfg, dataset.New(result.Table), logger)
		if err != nil {
			return err
		}

		path := cfg.Evaluation.PredictionsPath
		if inferOutput != "" {
			path = inferOutput
		}
		if err := inferToFile(cmd, p, path, logger); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Predictions written: %s\n", path)
		return nil
	},
}

// inferToFile classifies the bound dataset and persists the predictions
func inferToFile(cmd *cobra.Command, p *pipeline.Pipeline, path string, logger *zap.Logger) error {
	table, err := p.InferDataset(cmd.Context())
	if err != nil {
		return fmt.Errorf("infer dataset: %w", err)
	}
	if err := pipeline.WritePredictions(path, table); err != nil {
		return err
	}
	logger.Info("predictions saved", zap.String("path", path), zap.Int("rows", len(table)))
	return nil
}

// humanLabel maps a predicted code to its display name, nil when there is none
func humanLabel(code string, ok bool) *string {
	if !ok {
		return nil
	}
	label, ok := model.HumanLabel(code)
	if !ok {
		return nil
	}
	return &label
}

func init() {
	inferCmd.Flags().StringVar(&inferText, "text", "", "classify a single review instead of the corpus")
	inferCmd.Flags().StringVarP(&inferOutput, "output", "o", "", "predictions file (default: evaluation.predictions_path)")
	rootCmd.AddCommand(inferCmd)
}
