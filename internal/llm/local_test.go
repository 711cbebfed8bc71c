package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/labeleval/internal/model"
)

// testWeights builds a 3-class head over hidden size 2 where token 4 pushes
// towards class 1 and token 5 towards class 2
func testWeights(vocab, positions int) Weights {
	w := Weights{
		TokenEmbeddings:    make([][]float64, vocab),
		PositionEmbeddings: make([][]float64, positions),
		ClassifierWeight:   [][]float64{{0, 0}, {1, 0}, {0, 1}},
		ClassifierBias:     []float64{0.1, 0, 0},
	}
	for i := range w.TokenEmbeddings {
		w.TokenEmbeddings[i] = []float64{0, 0}
	}
	for i := range w.PositionEmbeddings {
		w.PositionEmbeddings[i] = []float64{0, 0}
	}
	if vocab > 5 {
		w.TokenEmbeddings[4] = []float64{3, 0}
		w.TokenEmbeddings[5] = []float64{0, 3}
	}
	return w
}

func TestLocalClassifier_Forward(t *testing.T) {
	clf, err := NewLocalClassifier(model.ModelConfig{MaxLength: 16}, testWeights(14, 8))
	if err != nil {
		t.Fatalf("NewLocalClassifier failed: %v", err)
	}

	enc := Encoding{
		InputIDs:      [][]int64{{2, 4, 3, 0}, {2, 5, 3, 0}, {2, 3, 0, 0}},
		AttentionMask: [][]int64{{1, 1, 1, 0}, {1, 1, 1, 0}, {1, 1, 0, 0}},
	}
	scores, err := clf.Forward(context.Background(), enc)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	want := [][]float64{{0.1, 1, 0}, {0.1, 0, 1}, {0.1, 0, 0}}
	for i := range want {
		for j := range want[i] {
			if math.Abs(scores[i][j]-want[i][j]) > 1e-9 {
				t.Errorf("scores[%d][%d] = %v, want %v", i, j, scores[i][j], want[i][j])
			}
		}
	}
}

func TestLocalClassifier_Bounds(t *testing.T) {
	clf, err := NewLocalClassifier(model.ModelConfig{}, testWeights(14, 4))
	if err != nil {
		t.Fatalf("NewLocalClassifier failed: %v", err)
	}

	_, err = clf.Forward(context.Background(), Encoding{
		InputIDs:      [][]int64{{2, 99}},
		AttentionMask: [][]int64{{1, 1}},
	})
	if !errors.Is(err, model.ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange for unknown token id, got %v", err)
	}

	_, err = clf.Forward(context.Background(), Encoding{
		InputIDs:      [][]int64{{1, 1, 1, 1, 1}},
		AttentionMask: [][]int64{{1, 1, 1, 1, 1}},
	})
	if !errors.Is(err, model.ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange for sequence longer than positions, got %v", err)
	}
}

func TestLocalClassifier_ConfigMismatch(t *testing.T) {
	_, err := NewLocalClassifier(model.ModelConfig{VocabSize: 100}, testWeights(14, 4))
	if !errors.Is(err, model.ErrConfigMismatch) {
		t.Errorf("Expected ErrConfigMismatch, got %v", err)
	}

	w := testWeights(14, 4)
	w.ClassifierBias = []float64{0}
	if _, err := NewLocalClassifier(model.ModelConfig{}, w); !errors.Is(err, model.ErrConfigMismatch) {
		t.Errorf("Expected ErrConfigMismatch for short bias, got %v", err)
	}
}

func TestLocalClassifier_Parameters(t *testing.T) {
	clf, err := NewLocalClassifier(model.ModelConfig{}, testWeights(14, 8))
	if err != nil {
		t.Fatalf("NewLocalClassifier failed: %v", err)
	}

	var total int64
	for _, p := range clf.Parameters() {
		total += p.Count()
	}
	// 14*2 + 8*2 + 3*2 + 3
	if total != 53 {
		t.Errorf("Expected 53 parameters, got %d", total)
	}
	if !IsConcurrencySafe(clf) {
		t.Error("Expected local classifier to be concurrency safe")
	}
}

// writeLocalModel stores a loadable model directory and returns its path
func writeLocalModel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cfg := model.ModelConfig{ModelType: "bag-of-embeddings", MaxLength: 8, ID2Label: map[string]string{"0": "NEUTRAL", "1": "POSITIVE", "2": "NEGATIVE"}}
	for name, v := range map[string]any{"config.json": cfg, "weights.json": testWeights(len(testVocab), 8)} {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	vocab := ""
	for _, tok := range testVocab {
		vocab += tok + "\n"
	}
	if err := os.WriteFile(filepath.Join(dir, "vocab.txt"), []byte(vocab), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadLocal(t *testing.T) {
	dir := writeLocalModel(t)

	clf, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal failed: %v", err)
	}
	if clf.Config().VocabSize != len(testVocab) || clf.Config().MaxPositionEmbeddings != 8 {
		t.Errorf("Unexpected config %+v", clf.Config())
	}

	if _, err := LoadLocal(t.TempDir()); err == nil {
		t.Error("Expected error for empty directory")
	}
}
