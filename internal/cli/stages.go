package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/labeleval/internal/cache"
	"github.com/ppiankov/labeleval/internal/corpus"
	"github.com/ppiankov/labeleval/internal/dataset"
	"github.com/ppiankov/labeleval/internal/llm"
	"github.com/ppiankov/labeleval/internal/model"
	"github.com/ppiankov/labeleval/internal/pipeline"
	"github.com/ppiankov/labeleval/internal/score"
)

// corpusResult is what the import and normalization stages produce
type corpusResult struct {
	Report model.CorpusReport
	Table  model.CorpusTable
}

// loadCorpus obtains the raw corpus, reports on it and normalizes it
func loadCorpus(ctx context.Context, cfg *model.Config, logger *zap.Logger) (*corpusResult, error) {
	deps := corpus.DepsFromConfig(cfg, logger)
	imp, err := corpus.NewImporter(cfg, deps)
	if err != nil {
		return nil, err
	}

	logger.Info("importing corpus",
		zap.String("source", cfg.Corpus.Source),
		zap.String("dataset", cfg.Parameters.Dataset))
	raw, err := corpus.Load(ctx, imp, cfg.Corpus.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("import corpus: %w", err)
	}
	if layered, ok := deps.Cache.(*cache.LayeredCache); ok {
		stats := layered.Stats()
		logger.Debug("corpus cache",
			zap.Int64("memory_hits", stats.MemoryHits),
			zap.Int64("disk_hits", stats.DiskHits),
			zap.Int64("misses", stats.Misses))
	}

	opts := []corpus.Option{
		corpus.WithColumns(cfg.Corpus.SourceColumn, cfg.Corpus.TargetColumn),
		corpus.WithLabelPolicy(corpus.LabelPolicy(cfg.Corpus.LabelPolicy)),
		corpus.WithLogger(logger),
	}
	if cfg.Corpus.StripMarkup {
		opts = append(opts, corpus.WithMarkupStripping())
	}
	normalizer := corpus.NewNormalizer(opts...)
	report, err := normalizer.Analyze(raw)
	if err != nil {
		return nil, fmt.Errorf("analyze corpus: %w", err)
	}
	table, err := normalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize corpus: %w", err)
	}
	table = corpus.Limit(table, cfg.Corpus.Limit)

	logger.Info("corpus ready", zap.Int("raw_rows", raw.Len()), zap.Int("samples", len(table)))
	return &corpusResult{Report: report, Table: table}, nil
}

// loadPipeline loads the configured model and binds it to ds (nil for query-only use)
func loadPipeline(ctx context.Context, cfg *model.Config, ds *dataset.Dataset, logger *zap.Logger) (*pipeline.Pipeline, error) {
	clf, tok, err := llm.Load(ctx, llm.ConfigFromModel(cfg))
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if clf == nil {
		logger.Warn("no model backend configured, inference disabled")
	} else {
		logger.Info("model loaded", zap.String("model", clf.Name()), zap.String("backend", cfg.Model.Backend))
	}
	return pipeline.New(ds, tok, clf, pipeline.OptionsFromConfig(cfg), logger), nil
}

// newEvaluator builds the evaluator for path from the evaluation section
func newEvaluator(cfg *model.Config, path string, logger *zap.Logger) (*score.Evaluator, error) {
	metrics, err := score.ParseMetrics(cfg.Evaluation.Metrics)
	if err != nil {
		return nil, err
	}
	opts := []score.Option{score.WithLogger(logger)}
	if cfg.Evaluation.NamespacedKeys {
		opts = append(opts, score.WithNamespacedKeys())
	}
	return score.NewEvaluator(path, metrics, opts...), nil
}

// printReport writes v as YAML, or as indented JSON with --json
func printReport(w io.Writer, v any) error {
	if outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = w.Write(data)
	return err
}
