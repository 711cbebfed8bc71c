package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/ppiankov/labeleval/internal/dataset"
	"github.com/ppiankov/labeleval/internal/llm"
	"github.com/ppiankov/labeleval/internal/model"
)

// Pipeline bundles a dataset with the engine that classifies it.
// It is immutable after New and safe to share between request handlers.
type Pipeline struct {
	dataset    *dataset.Dataset
	classifier llm.Classifier
	engine     *Engine
	logger     *zap.Logger
}

// Options are the inference constants
type Options struct {
	MaxLength int
	BatchSize int
}

// OptionsFromConfig reads the inference section
func OptionsFromConfig(cfg *model.Config) Options {
	return Options{MaxLength: cfg.Inference.MaxLength, BatchSize: cfg.Inference.BatchSize}
}

// New creates a pipeline. ds may be nil for query-only use; a nil classifier means no model.
func New(ds *dataset.Dataset, tokenizer llm.Tokenizer, classifier llm.Classifier, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ds == nil {
		ds = dataset.New(nil)
	}
	return &Pipeline{
		dataset:    ds,
		classifier: classifier,
		engine:     NewEngine(tokenizer, classifier, opts.MaxLength, opts.BatchSize, logger),
		logger:     logger,
	}
}

// Dataset returns the bound dataset
func (p *Pipeline) Dataset() *dataset.Dataset {
	return p.dataset
}

// ModelLoaded reports whether inference is possible
func (p *Pipeline) ModelLoaded() bool {
	return p.engine.Loaded()
}

// ModelName returns the classifier name, empty without a model
func (p *Pipeline) ModelName() string {
	if p.classifier == nil {
		return ""
	}
	return p.classifier.Name()
}

// AnalyzeModel profiles the bound classifier
func (p *Pipeline) AnalyzeModel(ctx context.Context) (*model.ModelProfile, error) {
	return AnalyzeModel(ctx, p.classifier)
}

// InferSample classifies a single item
func (p *Pipeline) InferSample(ctx context.Context, item dataset.Item) (string, bool, error) {
	return p.engine.InferSample(ctx, item)
}

// InferText classifies free text
func (p *Pipeline) InferText(ctx context.Context, text string) (string, bool, error) {
	return p.engine.InferSample(ctx, dataset.Item{Source: text})
}

// InferDataset classifies the bound dataset
func (p *Pipeline) InferDataset(ctx context.Context) (model.PredictionTable, error) {
	return p.engine.InferDataset(ctx, p.dataset)
}
