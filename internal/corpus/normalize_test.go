package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/labeleval/internal/model"
)

func TestTransform_DropsMissingGrade(t *testing.T) {
	raw := &RawTable{
		Columns: []string{"content", "grade3"},
		Rows: [][]any{
			{"This movie was great", "Good"},
			{"No grade here", nil},
		},
	}

	table, err := NewNormalizer().Transform(raw)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "This movie was great", table[0].Source)
	assert.Equal(t, model.LabelPositive, table[0].Target)
}

func TestTransform_SchemaAndDomain(t *testing.T) {
	raw := &RawTable{
		Columns: []string{"id", "content", "grade3", "extra"},
		Rows: [][]any{
			{1.0, "good one", "Good", "x"},
			{2.0, "   ", "Bad", "x"},
			{3.0, nil, "Neutral", "x"},
			{4.0, "meh", "Neutral", nil},
			{5.0, "awful", "Bad", "x"},
			{6.0, "already coded", 2.0, "x"},
		},
	}

	table, err := NewNormalizer().Transform(raw)
	require.NoError(t, err)

	want := model.CorpusTable{
		{Source: "good one", Target: model.LabelPositive},
		{Source: "meh", Target: model.LabelNeutral},
		{Source: "awful", Target: model.LabelNegative},
		{Source: "already coded", Target: model.LabelNegative},
	}
	assert.Equal(t, want, table)
	for _, s := range table {
		assert.NotEmpty(t, s.Source)
		assert.True(t, s.Target.Valid())
	}
}

func TestTransform_OutOfDomainLabel(t *testing.T) {
	raw := &RawTable{
		Columns: []string{"content", "grade3"},
		Rows: [][]any{
			{"fine", "Good"},
			{"odd", "Excellent"},
		},
	}

	_, err := NewNormalizer().Transform(raw)
	require.ErrorIs(t, err, model.ErrLabelOutOfDomain)

	table, err := NewNormalizer(WithLabelPolicy(LabelPolicyDrop)).Transform(raw)
	require.NoError(t, err)
	assert.Len(t, table, 1)
}

func TestTransform_MissingColumn(t *testing.T) {
	raw := &RawTable{Columns: []string{"text", "grade3"}, Rows: [][]any{{"a", "Good"}}}

	_, err := NewNormalizer().Transform(raw)
	require.ErrorIs(t, err, model.ErrTypeMismatch)

	table, err := NewNormalizer(WithColumns("text", "grade3")).Transform(raw)
	require.NoError(t, err)
	assert.Len(t, table, 1)
}

func TestTransform_RaggedRow(t *testing.T) {
	raw := &RawTable{Columns: []string{"content", "grade3"}, Rows: [][]any{{"a"}}}
	_, err := NewNormalizer().Transform(raw)
	require.ErrorIs(t, err, model.ErrTypeMismatch)
}

func TestAnalyze(t *testing.T) {
	raw := &RawTable{
		Columns: []string{"content", "grade3"},
		Rows: [][]any{
			{"Отлично", "Good"},
			{"Отлично", "Good"},
			{"ok", nil},
			{nil, "Bad"},
			{"a much longer review", "Neutral"},
		},
	}

	report, err := NewNormalizer().Analyze(raw)
	require.NoError(t, err)
	assert.Equal(t, model.CorpusReport{
		NumberOfSamples: 5,
		Columns:         2,
		Duplicates:      1,
		EmptyRows:       2,
		SampleMinLen:    2,
		SampleMaxLen:    20,
	}, report)
}

func TestAnalyze_Empty(t *testing.T) {
	report, err := NewNormalizer().Analyze(&RawTable{Columns: []string{"content", "grade3"}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.NumberOfSamples)
	assert.Equal(t, 0, report.SampleMinLen)
}

func TestRawTable_Head(t *testing.T) {
	raw := &RawTable{Columns: []string{"a"}, Rows: [][]any{{"1"}, {"2"}, {"3"}}}
	assert.Equal(t, 2, raw.Head(2).Len())
	assert.Equal(t, 3, raw.Head(0).Len())
	assert.Equal(t, 3, raw.Head(10).Len())
}
