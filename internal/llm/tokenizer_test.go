package llm

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

var testVocab = []string{"[PAD]", "[UNK]", "[CLS]", "[SEP]", "the", "movie", "was", "great", "!", "un", "##believ", "##able", ",", "фильм"}

func newTestWordPiece(t *testing.T) *WordPiece {
	t.Helper()
	w, err := NewWordPiece(testVocab)
	if err != nil {
		t.Fatalf("NewWordPiece failed: %v", err)
	}
	return w
}

func TestWordPiece_Tokens(t *testing.T) {
	w := newTestWordPiece(t)

	tests := []struct {
		text string
		want []string
	}{
		{"The movie was GREAT!", []string{"the", "movie", "was", "great", "!"}},
		{"Unbelievable", []string{"un", "##believ", "##able"}},
		{"great,movie", []string{"great", ",", "movie"}},
		{"zebra", []string{"[UNK]"}},
		{"Фильм", []string{"фильм"}},
		{"  ", []string{}},
	}

	for _, tt := range tests {
		got := w.Tokens(tt.text)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokens(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestWordPiece_EncodePadsAndTruncates(t *testing.T) {
	w := newTestWordPiece(t)

	enc, err := w.Encode([]string{"the movie", "the movie was great !"}, 5)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	wantIDs := [][]int64{
		{2, 4, 5, 3, 0},
		{2, 4, 5, 6, 3},
	}
	wantMask := [][]int64{
		{1, 1, 1, 1, 0},
		{1, 1, 1, 1, 1},
	}
	if !reflect.DeepEqual(enc.InputIDs, wantIDs) {
		t.Errorf("InputIDs = %v, want %v", enc.InputIDs, wantIDs)
	}
	if !reflect.DeepEqual(enc.AttentionMask, wantMask) {
		t.Errorf("AttentionMask = %v, want %v", enc.AttentionMask, wantMask)
	}
	if enc.Len() != 2 {
		t.Errorf("Len = %d, want 2", enc.Len())
	}
}

func TestWordPiece_EncodeEmptyText(t *testing.T) {
	w := newTestWordPiece(t)
	enc, err := w.Encode([]string{""}, 3)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !reflect.DeepEqual(enc.InputIDs[0], []int64{2, 3, 0}) {
		t.Errorf("Unexpected ids %v", enc.InputIDs[0])
	}

	if _, err := w.Encode([]string{"x"}, 1); err == nil {
		t.Error("Expected error for max length below 2")
	}
}

func TestWordPiece_MissingSpecialToken(t *testing.T) {
	if _, err := NewWordPiece([]string{"[PAD]", "[UNK]", "hello"}); err == nil {
		t.Error("Expected error for vocabulary without [CLS]")
	}
}

func TestLoadWordPiece(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	if err := os.WriteFile(path, []byte(strings.Join(testVocab, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := LoadWordPiece(path)
	if err != nil {
		t.Fatalf("LoadWordPiece failed: %v", err)
	}
	if w.VocabSize() != len(testVocab) {
		t.Errorf("VocabSize = %d, want %d", w.VocabSize(), len(testVocab))
	}
}

func TestPassthrough(t *testing.T) {
	enc, err := Passthrough{}.Encode([]string{"one two three four", "short"}, 2)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !reflect.DeepEqual(enc.Texts, []string{"one two", "short"}) {
		t.Errorf("Texts = %v", enc.Texts)
	}
	if enc.InputIDs != nil {
		t.Errorf("Expected no ids, got %v", enc.InputIDs)
	}
}
