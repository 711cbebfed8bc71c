package model

// ModelConfig holds the structural configuration a model reports about itself.
// Zero values mean the field is absent from the model configuration.
type ModelConfig struct {
	ModelType             string            `json:"model_type,omitempty" yaml:"model_type,omitempty"`
	VocabSize             int               `json:"vocab_size,omitempty" yaml:"vocab_size,omitempty"`
	HiddenSize            int               `json:"hidden_size,omitempty" yaml:"hidden_size,omitempty"`
	MaxPositionEmbeddings int               `json:"max_position_embeddings,omitempty" yaml:"max_position_embeddings,omitempty"`
	MaxLength             int               `json:"max_length,omitempty" yaml:"max_length,omitempty"` // Maximum generation/context length
	NumLabels             int               `json:"num_labels,omitempty" yaml:"num_labels,omitempty"`
	ID2Label              map[string]string `json:"id2label,omitempty" yaml:"id2label,omitempty"`
}

// ParamTensor describes one parameter tensor of a model
type ParamTensor struct {
	Name            string
	Shape           []int
	BytesPerElement int
	Trainable       bool
}

// Count returns the number of scalar parameters in the tensor
func (p ParamTensor) Count() int64 {
	if len(p.Shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range p.Shape {
		n *= int64(d)
	}
	return n
}

// Bytes returns the storage size of the tensor
func (p ParamTensor) Bytes() int64 {
	return p.Count() * int64(p.BytesPerElement)
}

// ModelProfile is a structural snapshot of a loaded model
type ModelProfile struct {
	InputShape         map[string][]int `json:"input_shape" yaml:"input_shape"`
	EmbeddingSize      int              `json:"embedding_size" yaml:"embedding_size"`
	OutputShape        []int            `json:"output_shape" yaml:"output_shape"`
	NumParams          int64            `json:"num_params" yaml:"num_params"`
	NumTrainableParams int64            `json:"num_trainable_params" yaml:"num_trainable_params"`
	VocabSize          int              `json:"vocab_size" yaml:"vocab_size"`
	Size               int64            `json:"size" yaml:"size"` // Total parameter bytes
	MaxContextLength   int              `json:"max_context_length" yaml:"max_context_length"`
}
