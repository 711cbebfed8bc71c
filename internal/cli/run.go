package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/labeleval/internal/dataset"
	applog "github.com/ppiankov/labeleval/internal/log"
	"github.com/ppiankov/labeleval/internal/model"
)

// sampleResult is the single-sample check run before the full dataset
type sampleResult struct {
	Source     string  `json:"source" yaml:"source"`
	Target     string  `json:"target" yaml:"target"`
	Prediction *string `json:"prediction" yaml:"prediction"`
}

// runReport collects the output of every stage
type runReport struct {
	Corpus      model.CorpusReport  `json:"corpus" yaml:"corpus"`
	Samples     int                 `json:"samples" yaml:"samples"`
	Model       *model.ModelProfile `json:"model,omitempty" yaml:"model,omitempty"`
	Sample      *sampleResult       `json:"sample,omitempty" yaml:"sample,omitempty"`
	Predictions string              `json:"predictions" yaml:"predictions"`
	Scores      model.ScoreMap      `json:"scores" yaml:"scores"`
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline end to end",
	Long: `Import and normalize the corpus, profile the model, classify one sample
and then the whole dataset, write the predictions file and score it.

A model whose configuration lacks structural fields is still used for
inference; only its profile is skipped.`,
	Example: `  labeleval run
  labeleval run --backend local --model ./models/rubert-tiny --batch-size 64`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		defer applog.Timed(logger, "report_time")()
		ctx := cmd.Context()

		result, err := loadCorpus(ctx, cfg, logger)
		if err != nil {
			return err
		}
		ds := dataset.New(result.Table)
		report := runReport{Corpus: result.Report, Samples: ds.Len()}

		p, err := loadPipeline(ctx, cfg, ds, logger)
		if err != nil {
			return err
		}
		if !p.ModelLoaded() {
			return fmt.Errorf("run: %w", model.ErrNoModel)
		}

		profile, err := p.AnalyzeModel(ctx)
		switch {
		case errors.Is(err, model.ErrConfigMismatch):
			logger.Warn("model profile skipped", zap.Error(err))
		case err != nil:
			return err
		default:
			report.Model = profile
		}

		if ds.Len() > 0 {
			item, err := ds.At(0)
			if err != nil {
				return err
			}
			code, ok, err := p.InferSample(ctx, item)
			if err != nil {
				return fmt.Errorf("infer sample: %w", err)
			}
			report.Sample = &sampleResult{Source: item.Source, Target: item.Target, Prediction: humanLabel(code, ok)}
		}

		path := cfg.Evaluation.PredictionsPath
		if err := inferToFile(cmd, p, path, logger); err != nil {
			return err
		}
		report.Predictions = path

		evaluator, err := newEvaluator(cfg, path, logger)
		if err != nil {
			return err
		}
		if report.Scores, err = evaluator.Run(); err != nil {
			return err
		}

		if err := printReport(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Evaluated %d samples\n", ds.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
