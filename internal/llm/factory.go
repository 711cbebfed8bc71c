package llm

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/labeleval/internal/util"
)

// Load builds the classifier and tokenizer for the configured backend.
// An empty backend means no model: both results are nil and err is nil.
func Load(ctx context.Context, config Config) (Classifier, Tokenizer, error) {
	switch strings.ToLower(config.Backend) {
	case "local":
		clf, err := LoadLocal(config.Model)
		if err != nil {
			return nil, nil, err
		}
		tok, err := LoadWordPiece(filepath.Join(config.Model, "vocab.txt"))
		if err != nil {
			return nil, nil, err
		}
		return clf, tok, nil

	case "kserve":
		if config.Vocab == "" {
			return nil, nil, fmt.Errorf("kserve backend requires model.vocab")
		}
		tok, err := LoadWordPiece(config.Vocab)
		if err != nil {
			return nil, nil, err
		}
		clf, err := NewKServeClassifier(ctx, config)
		if err != nil {
			return nil, nil, err
		}
		return clf, tok, nil

	case "openai":
		clf, err := NewOpenAIClassifier(config)
		if err != nil {
			return nil, nil, err
		}
		return clf, Passthrough{}, nil

	case "":
		// No model configured
		return nil, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown model backend: %s (supported: local, kserve, openai)", config.Backend)
	}
}

// NewClassifier is Load without the tokenizer
func NewClassifier(ctx context.Context, config Config) (Classifier, error) {
	clf, _, err := Load(ctx, config)
	return clf, err
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// httpClient builds the outbound client of remote backends: proxy settings from
// the HTTP section, timeout from the model section
func (c Config) httpClient() *http.Client {
	httpCfg := c.HTTP
	httpCfg.Timeout = c.timeout()
	return util.NewHTTPClient(httpCfg)
}
