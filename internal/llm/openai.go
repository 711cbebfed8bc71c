package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/labeleval/internal/model"
	"github.com/ppiankov/labeleval/internal/worker"
)

// missingLogProb scores a label code absent from the top log-probabilities
const missingLogProb = -1e9

// topLogProbs is the number of alternatives requested per token
const topLogProbs = 5

const classifyPrompt = `You classify the sentiment of a movie review.
Answer with exactly one digit and nothing else:
0 - neutral
1 - positive
2 - negative`

// OpenAIClassifier scores label codes by the log-probability of the first answer token
type OpenAIClassifier struct {
	client  *openai.Client
	config  Config
	model   string
	workers int
}

// NewOpenAIClassifier creates a chat completion classifier
func NewOpenAIClassifier(config Config) (*OpenAIClassifier, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = config.httpClient()

	modelName := config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	return &OpenAIClassifier{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  config,
		model:   modelName,
		workers: max(config.Workers, 1),
	}, nil
}

func (p *OpenAIClassifier) Name() string { return "openai:" + p.model }

// Config reports the label space only; a hosted model exposes no positional embeddings
func (p *OpenAIClassifier) Config() model.ModelConfig {
	id2label := make(map[string]string, len(model.Labels))
	for _, l := range model.Labels {
		id2label[l.Code()] = l.String()
	}
	return model.ModelConfig{
		ModelType: "openai",
		MaxLength: p.config.MaxLength,
		NumLabels: len(model.Labels),
		ID2Label:  id2label,
	}
}

// Parameters is empty: hosted weights are not inspectable
func (p *OpenAIClassifier) Parameters() []model.ParamTensor { return nil }

func (p *OpenAIClassifier) ConcurrencySafe() bool { return true }

// Forward issues one chat completion per text, up to Workers at a time
func (p *OpenAIClassifier) Forward(ctx context.Context, enc Encoding) ([][]float64, error) {
	if len(enc.Texts) == 0 && len(enc.InputIDs) > 0 {
		return nil, fmt.Errorf("openai backend needs raw text")
	}
	return worker.RunOrdered(ctx, p.workers, len(enc.Texts), func(ctx context.Context, i int) ([]float64, error) {
		return p.classify(ctx, enc.Texts[i])
	})
}

func (p *OpenAIClassifier) classify(ctx context.Context, text string) ([]float64, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifyPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   1,
		Temperature: 0,
		LogProbs:    true,
		TopLogProbs: topLogProbs,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	scores := make([]float64, len(model.Labels))
	for i := range scores {
		scores[i] = missingLogProb
	}

	choice := resp.Choices[0]
	if choice.LogProbs != nil && len(choice.LogProbs.Content) > 0 {
		first := choice.LogProbs.Content[0]
		setScore(scores, first.Token, first.LogProb)
		for _, alt := range first.TopLogProbs {
			setScore(scores, alt.Token, alt.LogProb)
		}
		return scores, nil
	}

	// No log-probabilities: the answered code gets probability one
	setScore(scores, choice.Message.Content, 0)
	return scores, nil
}

func setScore(scores []float64, token string, logProb float64) {
	label, ok := model.ParseCode(strings.TrimSpace(token))
	if !ok || int(label) >= len(scores) {
		return
	}
	scores[label] = max(scores[label], logProb)
}
