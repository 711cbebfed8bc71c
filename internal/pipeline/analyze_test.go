package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/labeleval/internal/dataset"
	"github.com/ppiankov/labeleval/internal/llm"
	"github.com/ppiankov/labeleval/internal/model"
)

func bertSizedClassifier(t *testing.T) *llm.LocalClassifier {
	t.Helper()
	const vocab, positions, hidden, labels = 30000, 512, 2, 3

	w := llm.Weights{
		TokenEmbeddings:    make([][]float64, vocab),
		PositionEmbeddings: make([][]float64, positions),
		ClassifierWeight:   make([][]float64, labels),
		ClassifierBias:     make([]float64, labels),
	}
	for i := range w.TokenEmbeddings {
		w.TokenEmbeddings[i] = make([]float64, hidden)
	}
	for i := range w.PositionEmbeddings {
		w.PositionEmbeddings[i] = make([]float64, hidden)
	}
	for i := range w.ClassifierWeight {
		w.ClassifierWeight[i] = make([]float64, hidden)
	}

	clf, err := llm.NewLocalClassifier(model.ModelConfig{
		VocabSize:             vocab,
		MaxPositionEmbeddings: positions,
		MaxLength:             512,
	}, w)
	require.NoError(t, err)
	return clf
}

func TestAnalyzeModel(t *testing.T) {
	profile, err := AnalyzeModel(context.Background(), bertSizedClassifier(t))
	require.NoError(t, err)

	assert.Equal(t, map[string][]int{
		"input_ids":      {1, 512},
		"attention_mask": {1, 512},
	}, profile.InputShape)
	assert.Equal(t, 30000, profile.VocabSize)
	assert.Equal(t, 512, profile.EmbeddingSize)
	assert.Equal(t, 512, profile.MaxContextLength)
	assert.Equal(t, []int{1, 3}, profile.OutputShape)

	wantParams := int64(30000*2 + 512*2 + 3*2 + 3)
	assert.Equal(t, wantParams, profile.NumParams)
	assert.Equal(t, wantParams, profile.NumTrainableParams)
	assert.Equal(t, wantParams*4, profile.Size)
}

func TestAnalyzeModel_ConfigMismatch(t *testing.T) {
	clf, err := llm.NewOpenAIClassifier(llm.Config{APIKey: "k", MaxLength: 120})
	require.NoError(t, err)

	_, err = AnalyzeModel(context.Background(), clf)
	require.ErrorIs(t, err, model.ErrConfigMismatch)
	assert.Contains(t, err.Error(), "max_position_embeddings")
}

func TestAnalyzeModel_NoModel(t *testing.T) {
	_, err := AnalyzeModel(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrNoModel)
}

func TestPipeline(t *testing.T) {
	p := New(threeSamples(), wordTokenizer{}, &keywordClassifier{}, Options{MaxLength: 8, BatchSize: 2}, nil)
	assert.True(t, p.ModelLoaded())
	assert.Equal(t, "keyword", p.ModelName())
	assert.Equal(t, 3, p.Dataset().Len())

	table, err := p.InferDataset(context.Background())
	require.NoError(t, err)
	assert.Len(t, table, 3)

	pred, ok, err := p.InferText(context.Background(), "really bad")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", pred)

	empty := New(nil, nil, nil, OptionsFromConfig(model.DefaultConfig()), nil)
	assert.False(t, empty.ModelLoaded())
	assert.Equal(t, 0, empty.Dataset().Len())
	_, ok, err = empty.InferSample(context.Background(), dataset.Item{Source: "x"})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestWritePredictions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist", "predictions.csv")
	table := model.PredictionTable{
		{Target: model.LabelNeutral, Prediction: "0"},
		{Target: model.LabelNegative, Prediction: "1"},
	}

	require.NoError(t, WritePredictions(path, table))
	require.NoError(t, WritePredictions(path, table[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "target,predictions\n0,0\n", string(data))
}
