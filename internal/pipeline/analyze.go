package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/labeleval/internal/llm"
	"github.com/ppiankov/labeleval/internal/model"
)

// AnalyzeModel profiles clf with one forward pass over a synthetic all-ones
// input of full positional length. No dataset sample is used.
func AnalyzeModel(ctx context.Context, clf llm.Classifier) (*model.ModelProfile, error) {
	if clf == nil {
		return nil, model.ErrNoModel
	}

	cfg := clf.Config()
	for _, field := range []struct {
		name  string
		value int
	}{
		{"max_position_embeddings", cfg.MaxPositionEmbeddings},
		{"vocab_size", cfg.VocabSize},
		{"max_length", cfg.MaxLength},
	} {
		if field.value <= 0 {
			return nil, fmt.Errorf("%w: model config has no %s", model.ErrConfigMismatch, field.name)
		}
	}

	width := cfg.MaxPositionEmbeddings
	ones := make([]int64, width)
	for i := range ones {
		ones[i] = 1
	}
	enc := llm.Encoding{
		InputIDs:      [][]int64{ones},
		AttentionMask: [][]int64{ones},
	}

	logits, err := clf.Forward(ctx, enc)
	if err != nil {
		return nil, fmt.Errorf("dummy forward pass: %w", err)
	}
	if len(logits) != 1 {
		return nil, fmt.Errorf("%w: dummy forward pass returned %d rows", model.ErrConfigMismatch, len(logits))
	}

	profile := &model.ModelProfile{
		InputShape: map[string][]int{
			"input_ids":      {1, width},
			"attention_mask": {1, width},
		},
		EmbeddingSize:    width,
		OutputShape:      []int{1, len(logits[0])},
		VocabSize:        cfg.VocabSize,
		MaxContextLength: cfg.MaxLength,
	}
	for _, p := range clf.Parameters() {
		profile.NumParams += p.Count()
		profile.Size += p.Bytes()
		if p.Trainable {
			profile.NumTrainableParams += p.Count()
		}
	}
	return profile, nil
}
