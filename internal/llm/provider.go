package llm

import (
	"context"
	"os"

	"github.com/ppiankov/labeleval/internal/model"
)

// Classifier is a loaded sequence classification model. Implementations are
// read-only after construction.
type Classifier interface {
	// Name identifies the backend and model
	Name() string

	// Config returns the structural configuration the model reports
	Config() model.ModelConfig

	// Parameters lists the parameter tensors of the model
	Parameters() []model.ParamTensor

	// Forward returns one class-score vector per encoded sequence
	Forward(ctx context.Context, enc Encoding) ([][]float64, error)
}

// ConcurrencySafe is implemented by classifiers whose Forward may run in parallel
type ConcurrencySafe interface {
	ConcurrencySafe() bool
}

// IsConcurrencySafe reports whether clf declares itself safe for parallel forward passes
func IsConcurrencySafe(clf Classifier) bool {
	cs, ok := clf.(ConcurrencySafe)
	return ok && cs.ConcurrencySafe()
}

// Encoding is a tokenized batch. InputIDs and AttentionMask are [batch][maxLength];
// tokenizers that defer tokenization to the backend only fill Texts.
type Encoding struct {
	Texts         []string
	InputIDs      [][]int64
	AttentionMask [][]int64
}

// Len returns the batch size
func (e Encoding) Len() int {
	if len(e.InputIDs) > 0 {
		return len(e.InputIDs)
	}
	return len(e.Texts)
}

// Tokenizer turns raw texts into model inputs
type Tokenizer interface {
	Encode(texts []string, maxLength int) (Encoding, error)
}

// Config holds model backend configuration
type Config struct {
	// Backend name: "local", "kserve", "openai", ""
	Backend string

	// Model is a directory for local, a served model name for kserve,
	// a model name for openai
	Model string

	// Vocab is the WordPiece vocabulary for remote tokenization (kserve)
	Vocab string

	// BaseURL for kserve or a custom OpenAI-compatible endpoint
	BaseURL string

	// APIKey for OpenAI
	APIKey string

	// Timeout for API requests
	Timeout int // seconds

	// MaxLength is the inference context length reported by remote backends
	MaxLength int

	// Workers bounds concurrent requests of remote backends
	Workers int

	// HTTP carries proxy and user agent settings for remote backends
	HTTP model.HTTPConfig
}

// ConfigFromModel converts the application config to llm.Config.
// OPENAI_API_KEY is used when no key is configured.
func ConfigFromModel(cfg *model.Config) Config {
	apiKey := cfg.Model.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return Config{
		Backend:   cfg.Model.Backend,
		Model:     cfg.Parameters.Model,
		Vocab:     cfg.Model.Vocab,
		BaseURL:   cfg.Model.BaseURL,
		APIKey:    apiKey,
		Timeout:   cfg.Model.Timeout,
		MaxLength: cfg.Inference.MaxLength,
		Workers:   cfg.Concurrency.Workers,
		HTTP:      cfg.HTTP,
	}
}
