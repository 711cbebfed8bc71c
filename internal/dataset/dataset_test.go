package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/labeleval/internal/model"
)

func sampleTable() model.CorpusTable {
	return model.CorpusTable{
		{Source: "great", Target: model.LabelPositive},
		{Source: "fine", Target: model.LabelNeutral},
		{Source: "awful", Target: model.LabelNegative},
	}
}

func TestDataset_At(t *testing.T) {
	ds := New(sampleTable())
	require.Equal(t, 3, ds.Len())

	item, err := ds.At(2)
	require.NoError(t, err)
	assert.Equal(t, Item{Source: "awful", Target: "2"}, item)

	_, err = ds.At(3)
	assert.ErrorIs(t, err, model.ErrOutOfRange)
	_, err = ds.At(-1)
	assert.ErrorIs(t, err, model.ErrOutOfRange)
}

func TestDataset_Immutable(t *testing.T) {
	table := sampleTable()
	ds := New(table)
	table[0].Source = "changed"

	copied := ds.Table()
	copied[1].Source = "changed too"

	item, _ := ds.At(0)
	assert.Equal(t, "great", item.Source)
	item, _ = ds.At(1)
	assert.Equal(t, "fine", item.Source)
}

func TestDataset_Sources(t *testing.T) {
	ds := New(sampleTable())
	assert.Equal(t, []string{"great", "fine"}, ds.Sources(0, 2))
	assert.Equal(t, []string{"awful"}, ds.Sources(2, 10))
	assert.Nil(t, ds.Sources(3, 5))
	assert.Equal(t, []model.Label{model.LabelNeutral, model.LabelNegative}, ds.Targets(1, 3))
}
