package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func logprobServer(t *testing.T, calls *int32, top []openai.TopLogProbs) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !req.LogProbs || req.TopLogProbs != topLogProbs {
			t.Errorf("Expected logprobs with top %d, got %v/%d", topLogProbs, req.LogProbs, req.TopLogProbs)
		}
		atomic.AddInt32(calls, 1)

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{Role: "assistant", Content: top[0].Token},
					LogProbs: &openai.LogProbs{
						Content: []openai.LogProb{
							{Token: top[0].Token, LogProb: top[0].LogProb, TopLogProbs: top},
						},
					},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIClassifier_Forward(t *testing.T) {
	var calls int32
	server := logprobServer(t, &calls, []openai.TopLogProbs{
		{Token: "2", LogProb: -0.1},
		{Token: " 0", LogProb: -2.5},
		{Token: "x", LogProb: -3},
	})
	defer server.Close()

	clf, err := NewOpenAIClassifier(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5, Workers: 2})
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}

	scores, err := clf.Forward(context.Background(), Encoding{Texts: []string{"terrible", "awful", "bad"}})
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 score rows, got %d", len(scores))
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("Expected 3 API calls, got %d", calls)
	}

	row := scores[0]
	if row[2] != -0.1 || row[0] != -2.5 {
		t.Errorf("Unexpected scores: %v", row)
	}
	if row[1] != missingLogProb {
		t.Errorf("Expected missing code to score %v, got %v", missingLogProb, row[1])
	}
}

func TestOpenAIClassifier_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	clf, err := NewOpenAIClassifier(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}

	if _, err := clf.Forward(context.Background(), Encoding{Texts: []string{"hello"}}); err == nil {
		t.Error("Expected error for unauthorized response")
	}
}

func TestOpenAIClassifier_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIClassifier(Config{}); err == nil {
		t.Error("Expected error for missing API key")
	}
}

func TestOpenAIClassifier_Config(t *testing.T) {
	clf, err := NewOpenAIClassifier(Config{APIKey: "k", MaxLength: 120})
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}

	cfg := clf.Config()
	if cfg.MaxPositionEmbeddings != 0 {
		t.Errorf("Expected no positional embeddings, got %d", cfg.MaxPositionEmbeddings)
	}
	if cfg.NumLabels != 3 || cfg.ID2Label["1"] != "POSITIVE" {
		t.Errorf("Unexpected label space: %+v", cfg)
	}
	if clf.Name() != "openai:"+openai.GPT4oMini {
		t.Errorf("Unexpected name %s", clf.Name())
	}
	if !IsConcurrencySafe(clf) {
		t.Error("Expected openai classifier to be concurrency safe")
	}
}

func TestSetScore(t *testing.T) {
	scores := []float64{missingLogProb, missingLogProb, missingLogProb}
	setScore(scores, "1", -1)
	setScore(scores, "1", -3)
	setScore(scores, "7", 0)
	setScore(scores, "yes", 0)

	if scores[1] != -1 {
		t.Errorf("Expected best log-prob -1 to win, got %v", scores[1])
	}
	if scores[0] != missingLogProb || scores[2] != missingLogProb {
		t.Errorf("Unexpected scores %v", scores)
	}
}
