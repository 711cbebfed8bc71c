package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/labeleval/internal/model"
)

// KServeClassifier calls a model served over the open inference protocol (v2)
type KServeClassifier struct {
	httpClient *http.Client
	baseURL    string
	model      string
	config     model.ModelConfig
	params     []model.ParamTensor
}

type v2Parameter struct {
	StringValue string `json:"string_value,omitempty"`
	Int64Value  *int64 `json:"int64_value,omitempty"`
}

type v2ModelConfig struct {
	Name       string                 `json:"name"`
	Platform   string                 `json:"platform"`
	Parameters map[string]v2Parameter `json:"parameters"`
	Output     []struct {
		Name string  `json:"name"`
		Dims []int64 `json:"dims"`
	} `json:"output"`
}

type v2Tensor struct {
	Name     string  `json:"name"`
	Shape    []int   `json:"shape"`
	Datatype string  `json:"datatype"`
	Data     []int64 `json:"data"`
}

type v2RequestedOutput struct {
	Name string `json:"name"`
}

type v2InferRequest struct {
	Inputs  []v2Tensor          `json:"inputs"`
	Outputs []v2RequestedOutput `json:"outputs"`
}

type v2InferResponse struct {
	ModelName string `json:"model_name"`
	Outputs   []struct {
		Name     string    `json:"name"`
		Shape    []int     `json:"shape"`
		Datatype string    `json:"datatype"`
		Data     []float64 `json:"data"`
	} `json:"outputs"`
}

// NewKServeClassifier fetches the served model configuration once
func NewKServeClassifier(ctx context.Context, config Config) (*KServeClassifier, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("kserve backend requires model.base_url")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("kserve backend requires a model name")
	}

	c := &KServeClassifier{
		httpClient: config.httpClient(),
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		model:      config.Model,
	}

	var raw v2ModelConfig
	if err := c.do(ctx, http.MethodGet, c.modelURL("config"), nil, &raw); err != nil {
		return nil, fmt.Errorf("kserve model config: %w", err)
	}

	params := func(key string) int64 {
		p, ok := raw.Parameters[key]
		if !ok {
			return 0
		}
		if p.Int64Value != nil {
			return *p.Int64Value
		}
		n, _ := strconv.ParseInt(p.StringValue, 10, 64)
		return n
	}

	c.config = model.ModelConfig{
		ModelType:             raw.Parameters["model_type"].StringValue,
		VocabSize:             int(params("vocab_size")),
		HiddenSize:            int(params("hidden_size")),
		MaxPositionEmbeddings: int(params("max_position_embeddings")),
		MaxLength:             int(params("max_length")),
		NumLabels:             int(params("num_labels")),
	}
	if c.config.MaxLength == 0 {
		c.config.MaxLength = config.MaxLength
	}
	if c.config.NumLabels == 0 {
		for _, out := range raw.Output {
			if out.Name == "logits" && len(out.Dims) > 0 {
				c.config.NumLabels = int(out.Dims[len(out.Dims)-1])
			}
		}
	}

	total, trainable, size := params("num_parameters"), params("num_trainable_parameters"), params("param_bytes")
	if total > 0 {
		perElement := 0
		if size > 0 {
			perElement = int(size / total)
		}
		if trainable > 0 {
			c.params = append(c.params, model.ParamTensor{Name: "trainable", Shape: []int{int(trainable)}, BytesPerElement: perElement, Trainable: true})
		}
		if frozen := total - trainable; frozen > 0 {
			c.params = append(c.params, model.ParamTensor{Name: "frozen", Shape: []int{int(frozen)}, BytesPerElement: perElement})
		}
	}
	return c, nil
}

func (c *KServeClassifier) Name() string { return "kserve:" + c.model }

func (c *KServeClassifier) Config() model.ModelConfig { return c.config }

func (c *KServeClassifier) ConcurrencySafe() bool { return true }

func (c *KServeClassifier) Parameters() []model.ParamTensor {
	return append([]model.ParamTensor(nil), c.params...)
}

// Forward sends the batch as INT64 input_ids and attention_mask and reads the FP32 logits
func (c *KServeClassifier) Forward(ctx context.Context, enc Encoding) ([][]float64, error) {
	batch := len(enc.InputIDs)
	if batch == 0 {
		return nil, fmt.Errorf("kserve backend needs token ids")
	}
	width := len(enc.InputIDs[0])

	req := v2InferRequest{
		Inputs: []v2Tensor{
			flatten("input_ids", enc.InputIDs, width),
			flatten("attention_mask", enc.AttentionMask, width),
		},
		Outputs: []v2RequestedOutput{{Name: "logits"}},
	}
	if len(req.Inputs[0].Data) != batch*width || len(req.Inputs[1].Data) != batch*width {
		return nil, fmt.Errorf("%w: ragged batch", model.ErrConfigMismatch)
	}

	var resp v2InferResponse
	if err := c.do(ctx, http.MethodPost, c.modelURL("infer"), req, &resp); err != nil {
		return nil, fmt.Errorf("kserve infer: %w", err)
	}

	for _, out := range resp.Outputs {
		if out.Name != "logits" {
			continue
		}
		if len(out.Shape) != 2 || out.Shape[0] != batch || out.Shape[0]*out.Shape[1] != len(out.Data) {
			return nil, fmt.Errorf("%w: logits shape %v with %d values for batch %d", model.ErrConfigMismatch, out.Shape, len(out.Data), batch)
		}
		classes := out.Shape[1]
		scores := make([][]float64, batch)
		for i := range scores {
			scores[i] = out.Data[i*classes : (i+1)*classes]
		}
		return scores, nil
	}
	return nil, fmt.Errorf("kserve infer: response has no logits output")
}

func flatten(name string, rows [][]int64, width int) v2Tensor {
	data := make([]int64, 0, len(rows)*width)
	for _, row := range rows {
		data = append(data, row...)
	}
	return v2Tensor{Name: name, Shape: []int{len(rows), width}, Datatype: "INT64", Data: data}
}

func (c *KServeClassifier) modelURL(endpoint string) string {
	return fmt.Sprintf("%s/v2/models/%s/%s", c.baseURL, url.PathEscape(c.model), endpoint)
}

func (c *KServeClassifier) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
