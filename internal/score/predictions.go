package score

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/labeleval/internal/model"
)

// ReadPredictions reads the target and predictions columns of a predictions CSV
func ReadPredictions(path string) (references, predictions []string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open predictions: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: predictions file is empty", model.ErrTypeMismatch)
		}
		return nil, nil, fmt.Errorf("read predictions header: %w", err)
	}

	targetIdx, predIdx := -1, -1
	for i, name := range header {
		switch name {
		case model.ColumnTarget:
			targetIdx = i
		case model.ColumnPredictions:
			predIdx = i
		}
	}
	if targetIdx < 0 || predIdx < 0 {
		return nil, nil, fmt.Errorf("%w: predictions file needs %s and %s columns, got %v", model.ErrTypeMismatch, model.ColumnTarget, model.ColumnPredictions, header)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read predictions: %w", err)
		}
		references = append(references, record[targetIdx])
		predictions = append(predictions, record[predIdx])
	}
	return references, predictions, nil
}
