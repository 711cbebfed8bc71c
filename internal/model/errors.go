package model

import "errors"

var (
	// ErrTypeMismatch: the corpus source yielded something that is not a row/column table
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrOutOfRange: dataset index outside [0, Len())
	ErrOutOfRange = errors.New("index out of range")
	// ErrConfigMismatch: the model configuration lacks a required structural field
	ErrConfigMismatch = errors.New("model configuration mismatch")
	// ErrNoModel: inference requested while no model is loaded
	ErrNoModel = errors.New("no model loaded")
	// ErrLabelOutOfDomain: a raw label is not in the grade lookup table
	ErrLabelOutOfDomain = errors.New("label out of domain")
	// ErrUnknownMetric: a configured metric is not in the registry
	ErrUnknownMetric = errors.New("unknown metric")
)
