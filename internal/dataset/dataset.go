// Package dataset exposes the normalized corpus as an indexable, immutable sequence.
package dataset

import (
	"fmt"

	"github.com/ppiankov/labeleval/internal/model"
)

// Item is one dataset element with both fields stringified
type Item struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Dataset wraps a normalized corpus. It is never mutated after New.
type Dataset struct {
	table model.CorpusTable
}

// New copies table into a dataset
func New(table model.CorpusTable) *Dataset {
	return &Dataset{table: append(model.CorpusTable(nil), table...)}
}

// Len returns the number of samples
func (d *Dataset) Len() int {
	return len(d.table)
}

// At returns sample i
func (d *Dataset) At(i int) (Item, error) {
	if i < 0 || i >= len(d.table) {
		return Item{}, fmt.Errorf("%w: index %d, length %d", model.ErrOutOfRange, i, len(d.table))
	}
	s := d.table[i]
	return Item{Source: s.Source, Target: s.Target.Code()}, nil
}

// Table returns a copy of the underlying corpus
func (d *Dataset) Table() model.CorpusTable {
	return append(model.CorpusTable(nil), d.table...)
}

// Sources returns the source texts of samples [from, to), clamped to the dataset
func (d *Dataset) Sources(from, to int) []string {
	from = max(from, 0)
	to = min(to, len(d.table))
	if from >= to {
		return nil
	}
	out := make([]string, 0, to-from)
	for _, s := range d.table[from:to] {
		out = append(out, s.Source)
	}
	return out
}

// Targets returns the category codes of samples [from, to), clamped to the dataset
func (d *Dataset) Targets(from, to int) []model.Label {
	from = max(from, 0)
	to = min(to, len(d.table))
	if from >= to {
		return nil
	}
	out := make([]model.Label, 0, to-from)
	for _, s := range d.table[from:to] {
		out = append(out, s.Target)
	}
	return out
}
