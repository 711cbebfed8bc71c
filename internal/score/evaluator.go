package score

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/labeleval/internal/model"
)

// Evaluator computes the configured metrics over a predictions file
type Evaluator struct {
	path       string
	metrics    []MetricID
	namespaced bool
	logger     *zap.Logger
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithNamespacedKeys emits "<metric>/<key>" result keys so metrics never overwrite each other
func WithNamespacedKeys() Option {
	return func(e *Evaluator) {
		e.namespaced = true
	}
}

// WithLogger sets the logger used for key collision warnings
func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// NewEvaluator creates an evaluator over the predictions CSV at path
func NewEvaluator(path string, metrics []MetricID, opts ...Option) *Evaluator {
	e := &Evaluator{
		path:    path,
		metrics: metrics,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run reads the predictions file and merges every metric result into one map.
// With no metrics configured it returns nil without reading the file.
func (e *Evaluator) Run() (model.ScoreMap, error) {
	if len(e.metrics) == 0 {
		return nil, nil
	}

	references, predictions, err := ReadPredictions(e.path)
	if err != nil {
		return nil, err
	}
	return e.Score(references, predictions)
}

// Score merges the metric results of row-aligned references and predictions
func (e *Evaluator) Score(references, predictions []string) (model.ScoreMap, error) {
	if len(e.metrics) == 0 {
		return nil, nil
	}

	counts, err := Count(references, predictions)
	if err != nil {
		return nil, err
	}

	scores := make(model.ScoreMap)
	owner := make(map[string]MetricID)
	for _, id := range e.metrics {
		fn, ok := registry[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownMetric, id)
		}

		for key, value := range fn(counts) {
			if e.namespaced {
				key = string(id) + "/" + key
			}
			if prev, exists := owner[key]; exists {
				e.logger.Warn("metric result key collision, later value wins",
					zap.String("key", key),
					zap.String("previous_metric", string(prev)),
					zap.String("metric", string(id)),
				)
			}
			scores[key] = value
			owner[key] = id
		}
	}
	return scores, nil
}
