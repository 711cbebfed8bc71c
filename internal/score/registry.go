package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/labeleval/internal/model"
)

// MetricID names a metric in the closed registry
type MetricID string

const (
	MetricAccuracy  MetricID = "accuracy"
	MetricF1        MetricID = "f1"
	MetricPrecision MetricID = "precision"
	MetricRecall    MetricID = "recall"
)

// MetricFunc scores predictions against references and returns named results
type MetricFunc func(c Confusion) map[string]float64

var registry = map[MetricID]MetricFunc{
	MetricAccuracy: func(c Confusion) map[string]float64 {
		return map[string]float64{"accuracy": ratio(c.Correct, c.Total)}
	},
	MetricPrecision: func(c Confusion) map[string]float64 {
		return map[string]float64{"precision": c.Precision()}
	},
	MetricRecall: func(c Confusion) map[string]float64 {
		return map[string]float64{"recall": c.Recall()}
	},
	MetricF1: func(c Confusion) map[string]float64 {
		p, r := c.Precision(), c.Recall()
		if p+r == 0 {
			return map[string]float64{"f1": 0}
		}
		return map[string]float64{"f1": 2 * p * r / (p + r)}
	},
}

// Metrics lists the registry in a stable order
func Metrics() []MetricID {
	return []MetricID{MetricAccuracy, MetricF1, MetricPrecision, MetricRecall}
}

// ParseMetrics resolves configured metric names, failing on the first unknown one
func ParseMetrics(names []string) ([]MetricID, error) {
	ids := make([]MetricID, 0, len(names))
	for _, name := range names {
		id := MetricID(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := registry[id]; !ok {
			return nil, fmt.Errorf("%w: %q (supported: accuracy, f1, precision, recall)", model.ErrUnknownMetric, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Confusion holds micro-averaged counts pooled across all classes
type Confusion struct {
	Total          int
	Correct        int
	TruePositives  int
	FalsePositives int
	FalseNegatives int
}

// Count builds the pooled counts of row-aligned references and predictions.
// A wrong prediction is a false positive for the predicted class and a
// false negative for the true class.
func Count(references, predictions []string) (Confusion, error) {
	if len(references) != len(predictions) {
		return Confusion{}, fmt.Errorf("%w: %d references, %d predictions", model.ErrTypeMismatch, len(references), len(predictions))
	}
	c := Confusion{Total: len(references)}
	for i, ref := range references {
		if ref == predictions[i] {
			c.Correct++
			c.TruePositives++
			continue
		}
		c.FalsePositives++
		c.FalseNegatives++
	}
	return c, nil
}

// Precision is TP / (TP + FP)
func (c Confusion) Precision() float64 {
	return ratio(c.TruePositives, c.TruePositives+c.FalsePositives)
}

// Recall is TP / (TP + FN)
func (c Confusion) Recall() float64 {
	return ratio(c.TruePositives, c.TruePositives+c.FalseNegatives)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
