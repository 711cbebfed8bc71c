package corpus

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ppiankov/labeleval/internal/model"
)

// LabelPolicy decides what happens to a grade outside model.GradeLabels
type LabelPolicy string

const (
	LabelPolicyFail LabelPolicy = "fail" // Abort normalization with ErrLabelOutOfDomain
	LabelPolicyDrop LabelPolicy = "drop" // Drop the row
)

// Normalizer maps raw rows into the canonical (source, target) schema
type Normalizer struct {
	sourceColumn string
	targetColumn string
	policy       LabelPolicy
	stripMarkup  bool
	logger       *zap.Logger
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithColumns selects the raw text and label columns
func WithColumns(source, target string) Option {
	return func(n *Normalizer) {
		n.sourceColumn = source
		n.targetColumn = target
	}
}

// WithLabelPolicy sets the out-of-domain label policy
func WithLabelPolicy(policy LabelPolicy) Option {
	return func(n *Normalizer) {
		n.policy = policy
	}
}

// WithMarkupStripping reduces HTML review bodies to their visible text
func WithMarkupStripping() Option {
	return func(n *Normalizer) {
		n.stripMarkup = true
	}
}

// WithLogger attaches a logger for dropped-row accounting
func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// NewNormalizer creates a normalizer for the content/grade3 corpus layout by default
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		sourceColumn: "content",
		targetColumn: "grade3",
		policy:       LabelPolicyFail,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Analyze reports key properties of the raw table. It never gates Transform.
func (n *Normalizer) Analyze(raw *RawTable) (model.CorpusReport, error) {
	if err := raw.check(); err != nil {
		return model.CorpusReport{}, err
	}
	sourceIdx, ok := raw.ColumnIndex(n.sourceColumn)
	if !ok {
		return model.CorpusReport{}, fmt.Errorf("%w: column %q not found", model.ErrTypeMismatch, n.sourceColumn)
	}

	report := model.CorpusReport{
		NumberOfSamples: len(raw.Rows),
		Columns:         len(raw.Columns),
	}

	seen := make(map[string]struct{}, len(raw.Rows))
	minLen, maxLen := math.MaxInt, 0
	for _, row := range raw.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			report.Duplicates++
		} else {
			seen[key] = struct{}{}
		}

		for _, cell := range row {
			if cell == nil {
				report.EmptyRows++
				break
			}
		}

		if cell := row[sourceIdx]; cell != nil {
			l := utf8.RuneCountInString(cellString(cell))
			minLen = min(minLen, l)
			maxLen = max(maxLen, l)
		}
	}

	if minLen != math.MaxInt {
		report.SampleMinLen = minLen
		report.SampleMaxLen = maxLen
	}
	return report, nil
}

// Transform selects and renames the two canonical columns, drops incomplete rows,
// remaps grades to category codes and re-indexes densely from 0.
func (n *Normalizer) Transform(raw *RawTable) (model.CorpusTable, error) {
	if err := raw.check(); err != nil {
		return nil, err
	}
	sourceIdx, ok := raw.ColumnIndex(n.sourceColumn)
	if !ok {
		return nil, fmt.Errorf("%w: column %q not found", model.ErrTypeMismatch, n.sourceColumn)
	}
	targetIdx, ok := raw.ColumnIndex(n.targetColumn)
	if !ok {
		return nil, fmt.Errorf("%w: column %q not found", model.ErrTypeMismatch, n.targetColumn)
	}

	table := make(model.CorpusTable, 0, len(raw.Rows))
	var missing, outOfDomain int
	for i, row := range raw.Rows {
		source, target := row[sourceIdx], row[targetIdx]
		if isMissing(source) || isMissing(target) {
			missing++
			continue
		}

		label, ok := toLabel(target)
		if !ok {
			if n.policy == LabelPolicyDrop {
				outOfDomain++
				continue
			}
			return nil, fmt.Errorf("%w: row %d has label %v", model.ErrLabelOutOfDomain, i, target)
		}

		text := cellString(source)
		if n.stripMarkup {
			text = StripMarkup(text)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			missing++
			continue
		}

		table = append(table, model.Sample{Source: text, Target: label})
	}

	n.logger.Debug("corpus normalized",
		zap.Int("raw_rows", len(raw.Rows)),
		zap.Int("rows", len(table)),
		zap.Int("dropped_missing", missing),
		zap.Int("dropped_out_of_domain", outOfDomain),
	)
	return table, nil
}

// toLabel accepts grade strings from the lookup table and numeric cells already holding a code
func toLabel(v any) (model.Label, bool) {
	switch val := v.(type) {
	case string:
		if label, ok := model.ParseGrade(strings.TrimSpace(val)); ok {
			return label, true
		}
		return model.ParseCode(strings.TrimSpace(val))
	case model.Label:
		return val, val.Valid()
	case int:
		return model.Label(val), model.Label(val).Valid()
	case int64:
		return model.Label(val), model.Label(val).Valid()
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return model.Label(int(val)), model.Label(int(val)).Valid()
	default:
		return 0, false
	}
}
