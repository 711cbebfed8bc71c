package llm

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Special tokens of BERT-style vocabularies
const (
	TokenPad = "[PAD]"
	TokenUnk = "[UNK]"
	TokenCLS = "[CLS]"
	TokenSEP = "[SEP]"
)

// maxWordRunes is the longest word WordPiece splits; longer words become [UNK]
const maxWordRunes = 100

// WordPiece is an uncased BERT tokenizer over a fixed vocabulary
type WordPiece struct {
	vocab map[string]int64
	pad   int64
	unk   int64
	cls   int64
	sep   int64
}

// LoadWordPiece reads a vocab.txt file with one token per line; the line number is the id
func LoadWordPiece(path string) (*WordPiece, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer func() { _ = file.Close() }()

	var tokens []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		tokens = append(tokens, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}
	return NewWordPiece(tokens)
}

// NewWordPiece builds a tokenizer from an ordered token list
func NewWordPiece(tokens []string) (*WordPiece, error) {
	vocab := make(map[string]int64, len(tokens))
	for i, tok := range tokens {
		if _, dup := vocab[tok]; !dup {
			vocab[tok] = int64(i)
		}
	}

	w := &WordPiece{vocab: vocab}
	for _, special := range []struct {
		token string
		id    *int64
	}{
		{TokenPad, &w.pad},
		{TokenUnk, &w.unk},
		{TokenCLS, &w.cls},
		{TokenSEP, &w.sep},
	} {
		id, ok := vocab[special.token]
		if !ok {
			return nil, fmt.Errorf("vocabulary is missing %s", special.token)
		}
		*special.id = id
	}
	return w, nil
}

// VocabSize returns the number of distinct tokens
func (w *WordPiece) VocabSize() int {
	return len(w.vocab)
}

// Encode tokenizes each text to exactly maxLength ids: [CLS] tokens [SEP] then [PAD].
// Texts longer than the window are truncated.
func (w *WordPiece) Encode(texts []string, maxLength int) (Encoding, error) {
	if maxLength < 2 {
		return Encoding{}, fmt.Errorf("max length must be at least 2, got %d", maxLength)
	}

	enc := Encoding{
		Texts:         texts,
		InputIDs:      make([][]int64, len(texts)),
		AttentionMask: make([][]int64, len(texts)),
	}
	for i, text := range texts {
		ids := make([]int64, maxLength)
		mask := make([]int64, maxLength)

		ids[0], mask[0] = w.cls, 1
		n := 1
		for _, id := range w.tokenize(text) {
			if n == maxLength-1 {
				break
			}
			ids[n], mask[n] = id, 1
			n++
		}
		ids[n], mask[n] = w.sep, 1
		for j := n + 1; j < maxLength; j++ {
			ids[j] = w.pad
		}

		enc.InputIDs[i] = ids
		enc.AttentionMask[i] = mask
	}
	return enc, nil
}

// Tokens returns the WordPiece tokens of text without special tokens
func (w *WordPiece) Tokens(text string) []string {
	reverse := make(map[int64]string, len(w.vocab))
	for tok, id := range w.vocab {
		reverse[id] = tok
	}
	ids := w.tokenize(text)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = reverse[id]
	}
	return out
}

func (w *WordPiece) tokenize(text string) []int64 {
	var ids []int64
	for _, word := range basicTokens(text) {
		ids = append(ids, w.wordPieces(word)...)
	}
	return ids
}

// wordPieces splits one word by greedy longest match; continuation pieces carry "##"
func (w *WordPiece) wordPieces(word string) []int64 {
	runes := []rune(word)
	if len(runes) > maxWordRunes {
		return []int64{w.unk}
	}

	var ids []int64
	for start := 0; start < len(runes); {
		end := len(runes)
		found := false
		for ; end > start; end-- {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := w.vocab[piece]; ok {
				ids = append(ids, id)
				found = true
				break
			}
		}
		if !found {
			return []int64{w.unk}
		}
		start = end
	}
	return ids
}

// basicTokens lower-cases text, drops control characters and splits on
// whitespace and punctuation. Punctuation runes are tokens of their own.
func basicTokens(text string) []string {
	var tokens []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, string(current))
			current = current[:0]
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case r == 0 || r == unicode.ReplacementChar || (unicode.IsControl(r) && !unicode.IsSpace(r)):
			continue
		case unicode.IsSpace(r):
			flush()
		case isPunct(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			current = append(current, r)
		}
	}
	flush()
	return tokens
}

// isPunct treats ASCII symbols as punctuation along with Unicode P* classes
func isPunct(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

// Passthrough keeps raw text for backends that tokenize on their side.
// Texts are truncated to maxLength whitespace-separated words.
type Passthrough struct{}

// Encode fills Texts only
func (Passthrough) Encode(texts []string, maxLength int) (Encoding, error) {
	if maxLength < 1 {
		return Encoding{}, fmt.Errorf("max length must be positive, got %d", maxLength)
	}
	out := make([]string, len(texts))
	for i, text := range texts {
		words := strings.Fields(text)
		if len(words) > maxLength {
			words = words[:maxLength]
		}
		out[i] = strings.Join(words, " ")
	}
	return Encoding{Texts: out}, nil
}
