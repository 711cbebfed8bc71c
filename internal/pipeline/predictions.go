package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/labeleval/internal/model"
)

// WritePredictions stores the table as a target,predictions CSV, replacing any previous file
func WritePredictions(path string, table model.PredictionTable) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create predictions dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".predictions-*.csv")
	if err != nil {
		return fmt.Errorf("create predictions file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	records := make([][]string, 0, len(table)+1)
	records = append(records, []string{model.ColumnTarget, model.ColumnPredictions})
	for _, row := range table {
		records = append(records, []string{row.Target.Code(), row.Prediction})
	}
	if err := w.WriteAll(records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write predictions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close predictions: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace predictions: %w", err)
	}
	return nil
}
