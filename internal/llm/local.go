package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/labeleval/internal/model"
)

// bytesPerFloat is the storage size of one local weight (float32 checkpoints)
const bytesPerFloat = 4

// Weights are the tensors of a bag-of-embeddings classification head
type Weights struct {
	TokenEmbeddings    [][]float64 `json:"token_embeddings"`    // [vocab_size][hidden_size]
	PositionEmbeddings [][]float64 `json:"position_embeddings"` // [max_position_embeddings][hidden_size]
	ClassifierWeight   [][]float64 `json:"classifier_weight"`   // [num_labels][hidden_size]
	ClassifierBias     []float64   `json:"classifier_bias"`     // [num_labels]
}

// LocalClassifier averages token and position embeddings over the attended
// positions and applies a linear layer
type LocalClassifier struct {
	name    string
	config  model.ModelConfig
	weights Weights
}

// LoadLocal reads config.json and weights.json from a model directory
func LoadLocal(dir string) (*LocalClassifier, error) {
	var cfg model.ModelConfig
	if err := readJSON(filepath.Join(dir, "config.json"), &cfg); err != nil {
		return nil, err
	}
	var weights Weights
	if err := readJSON(filepath.Join(dir, "weights.json"), &weights); err != nil {
		return nil, err
	}

	clf, err := NewLocalClassifier(cfg, weights)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	clf.name = "local:" + filepath.Base(dir)
	return clf, nil
}

// NewLocalClassifier validates weights against cfg. Missing vocab, position and
// label sizes are taken from the weight shapes.
func NewLocalClassifier(cfg model.ModelConfig, weights Weights) (*LocalClassifier, error) {
	if len(weights.TokenEmbeddings) == 0 || len(weights.ClassifierWeight) == 0 {
		return nil, fmt.Errorf("%w: empty weights", model.ErrConfigMismatch)
	}
	hidden := len(weights.TokenEmbeddings[0])
	if cfg.HiddenSize == 0 {
		cfg.HiddenSize = hidden
	}
	if cfg.VocabSize == 0 {
		cfg.VocabSize = len(weights.TokenEmbeddings)
	}
	if cfg.MaxPositionEmbeddings == 0 {
		cfg.MaxPositionEmbeddings = len(weights.PositionEmbeddings)
	}
	if cfg.NumLabels == 0 {
		cfg.NumLabels = len(weights.ClassifierWeight)
	}

	checks := []struct {
		name string
		rows [][]float64
		want int
	}{
		{"token_embeddings", weights.TokenEmbeddings, cfg.VocabSize},
		{"position_embeddings", weights.PositionEmbeddings, cfg.MaxPositionEmbeddings},
		{"classifier_weight", weights.ClassifierWeight, cfg.NumLabels},
	}
	for _, c := range checks {
		if len(c.rows) != c.want {
			return nil, fmt.Errorf("%w: %s has %d rows, config wants %d", model.ErrConfigMismatch, c.name, len(c.rows), c.want)
		}
		for i, row := range c.rows {
			if len(row) != cfg.HiddenSize {
				return nil, fmt.Errorf("%w: %s row %d has width %d, hidden size is %d", model.ErrConfigMismatch, c.name, i, len(row), cfg.HiddenSize)
			}
		}
	}
	if len(weights.ClassifierBias) != cfg.NumLabels {
		return nil, fmt.Errorf("%w: classifier_bias has %d entries, config wants %d", model.ErrConfigMismatch, len(weights.ClassifierBias), cfg.NumLabels)
	}

	if cfg.ModelType == "" {
		cfg.ModelType = "bag-of-embeddings"
	}
	return &LocalClassifier{name: "local", config: cfg, weights: weights}, nil
}

func (c *LocalClassifier) Name() string { return c.name }

func (c *LocalClassifier) Config() model.ModelConfig { return c.config }

// ConcurrencySafe is true: weights are never written after construction
func (c *LocalClassifier) ConcurrencySafe() bool { return true }

// Parameters lists the four weight tensors
func (c *LocalClassifier) Parameters() []model.ParamTensor {
	h := c.config.HiddenSize
	return []model.ParamTensor{
		{Name: "embeddings.token", Shape: []int{c.config.VocabSize, h}, BytesPerElement: bytesPerFloat, Trainable: true},
		{Name: "embeddings.position", Shape: []int{c.config.MaxPositionEmbeddings, h}, BytesPerElement: bytesPerFloat, Trainable: true},
		{Name: "classifier.weight", Shape: []int{c.config.NumLabels, h}, BytesPerElement: bytesPerFloat, Trainable: true},
		{Name: "classifier.bias", Shape: []int{c.config.NumLabels}, BytesPerElement: bytesPerFloat, Trainable: true},
	}
}

// Forward scores every sequence of enc
func (c *LocalClassifier) Forward(ctx context.Context, enc Encoding) ([][]float64, error) {
	if len(enc.InputIDs) == 0 && len(enc.Texts) > 0 {
		return nil, fmt.Errorf("local backend needs token ids")
	}
	if len(enc.AttentionMask) != len(enc.InputIDs) {
		return nil, fmt.Errorf("%w: %d id rows, %d mask rows", model.ErrConfigMismatch, len(enc.InputIDs), len(enc.AttentionMask))
	}

	out := make([][]float64, len(enc.InputIDs))
	for i, ids := range enc.InputIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logits, err := c.score(ids, enc.AttentionMask[i])
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		out[i] = logits
	}
	return out, nil
}

func (c *LocalClassifier) score(ids, mask []int64) ([]float64, error) {
	if len(ids) != len(mask) {
		return nil, fmt.Errorf("%w: %d ids, %d mask entries", model.ErrConfigMismatch, len(ids), len(mask))
	}
	if len(ids) > c.config.MaxPositionEmbeddings {
		return nil, fmt.Errorf("%w: sequence length %d exceeds %d positions", model.ErrOutOfRange, len(ids), c.config.MaxPositionEmbeddings)
	}

	hidden := make([]float64, c.config.HiddenSize)
	attended := 0
	for pos, id := range ids {
		if mask[pos] == 0 {
			continue
		}
		if id < 0 || id >= int64(c.config.VocabSize) {
			return nil, fmt.Errorf("%w: token id %d outside vocabulary of %d", model.ErrOutOfRange, id, c.config.VocabSize)
		}
		tok, posEmb := c.weights.TokenEmbeddings[id], c.weights.PositionEmbeddings[pos]
		for k := range hidden {
			hidden[k] += tok[k] + posEmb[k]
		}
		attended++
	}
	if attended > 0 {
		for k := range hidden {
			hidden[k] /= float64(attended)
		}
	}

	logits := make([]float64, c.config.NumLabels)
	for j, row := range c.weights.ClassifierWeight {
		sum := c.weights.ClassifierBias[j]
		for k, w := range row {
			sum += w * hidden[k]
		}
		logits[j] = sum
	}
	return logits, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
