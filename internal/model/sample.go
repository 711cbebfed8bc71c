package model

// Canonical column names shared by every stage.
// The predictions file contract is ColumnTarget + ColumnPredictions.
const (
	ColumnSource      = "source"
	ColumnTarget      = "target"
	ColumnPredictions = "predictions"
)

// Sample is one normalized corpus row
type Sample struct {
	Source string `json:"source"` // Free text, never empty after normalization
	Target Label  `json:"target"` // Category code from the closed domain
}

// CorpusTable is the ordered normalized corpus.
// Row order defines the dataset index to sample mapping.
type CorpusTable []Sample

// Prediction pairs a ground-truth code with the model output for one sample
type Prediction struct {
	Target     Label  `json:"target"`
	Prediction string `json:"predictions"` // Stringified class index
}

// PredictionTable holds one prediction per sample, in corpus order
type PredictionTable []Prediction

// CorpusReport describes the raw table before normalization
type CorpusReport struct {
	NumberOfSamples int `json:"dataset_number_of_samples" yaml:"dataset_number_of_samples"`
	Columns         int `json:"dataset_columns" yaml:"dataset_columns"`
	Duplicates      int `json:"dataset_duplicates" yaml:"dataset_duplicates"`
	EmptyRows       int `json:"dataset_empty_rows" yaml:"dataset_empty_rows"`
	SampleMinLen    int `json:"dataset_sample_min_len" yaml:"dataset_sample_min_len"`
	SampleMaxLen    int `json:"dataset_sample_max_len" yaml:"dataset_sample_max_len"`
}

// ScoreMap maps a metric result key to its value
type ScoreMap map[string]float64
