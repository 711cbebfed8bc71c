package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/ppiankov/labeleval/internal/dataset"
	"github.com/ppiankov/labeleval/internal/llm"
	"github.com/ppiankov/labeleval/internal/model"
)

// Engine classifies samples with a tokenizer and classifier pair.
// It holds no state that changes between calls.
type Engine struct {
	tokenizer  llm.Tokenizer
	classifier llm.Classifier
	maxLength  int
	batchSize  int
	logger     *zap.Logger

	// forwardMu serializes forward passes of backends that are not concurrency safe
	forwardMu sync.Mutex
	serialize bool
}

// NewEngine creates an inference engine. A nil classifier or tokenizer means no model is loaded.
func NewEngine(tokenizer llm.Tokenizer, classifier llm.Classifier, maxLength, batchSize int, logger *zap.Logger) *Engine {
	if batchSize <= 0 {
		batchSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		tokenizer:  tokenizer,
		classifier: classifier,
		maxLength:  maxLength,
		batchSize:  batchSize,
		logger:     logger,
	}
	if classifier != nil {
		e.serialize = !llm.IsConcurrencySafe(classifier)
	}
	return e
}

// Loaded reports whether a model is available
func (e *Engine) Loaded() bool {
	return e.classifier != nil && e.tokenizer != nil
}

// InferSample predicts the class code of one item, ignoring its target.
// With no model loaded it returns ok=false and no error.
func (e *Engine) InferSample(ctx context.Context, item dataset.Item) (string, bool, error) {
	if !e.Loaded() {
		return "", false, nil
	}
	preds, err := e.inferBatch(ctx, []string{item.Source})
	if err != nil {
		return "", false, err
	}
	return preds[0], true, nil
}

// InferDataset predicts every sample in contiguous batches and pairs each
// prediction with its ground-truth target, in dataset order
func (e *Engine) InferDataset(ctx context.Context, ds *dataset.Dataset) (model.PredictionTable, error) {
	if !e.Loaded() {
		return nil, model.ErrNoModel
	}

	n := ds.Len()
	predictions := make([]string, 0, n)
	for from := 0; from < n; from += e.batchSize {
		to := min(from+e.batchSize, n)
		preds, err := e.inferBatch(ctx, ds.Sources(from, to))
		if err != nil {
			return nil, fmt.Errorf("batch [%d, %d): %w", from, to, err)
		}
		predictions = append(predictions, preds...)
	}

	targets := ds.Targets(0, n)
	table := make(model.PredictionTable, n)
	for i := range table {
		table[i] = model.Prediction{Target: targets[i], Prediction: predictions[i]}
	}

	e.logger.Debug("dataset inferred", zap.Int("samples", n), zap.Int("batch_size", e.batchSize))
	return table, nil
}

// inferBatch encodes, runs one forward pass and takes the arg-max of every row
func (e *Engine) inferBatch(ctx context.Context, texts []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enc, err := e.tokenizer.Encode(texts, e.maxLength)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	scores, err := e.forward(ctx, enc)
	if err != nil {
		return nil, fmt.Errorf("forward: %w", err)
	}
	if len(scores) != len(texts) {
		return nil, fmt.Errorf("%w: %d score rows for batch of %d", model.ErrConfigMismatch, len(scores), len(texts))
	}

	preds := make([]string, len(scores))
	for i, row := range scores {
		idx, ok := argmax(row)
		if !ok {
			return nil, fmt.Errorf("%w: empty score row %d", model.ErrConfigMismatch, i)
		}
		preds[i] = strconv.Itoa(idx)
	}
	return preds, nil
}

func (e *Engine) forward(ctx context.Context, enc llm.Encoding) ([][]float64, error) {
	if e.serialize {
		e.forwardMu.Lock()
		defer e.forwardMu.Unlock()
	}
	return e.classifier.Forward(ctx, enc)
}

// argmax returns the index of the largest score; the first maximum wins ties
func argmax(row []float64) (int, bool) {
	if len(row) == 0 {
		return 0, false
	}
	best := 0
	for i, v := range row[1:] {
		if v > row[best] {
			best = i + 1
		}
	}
	return best, true
}
