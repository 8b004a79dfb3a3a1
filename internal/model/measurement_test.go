package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllAlgorithms_Order(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []Algorithm{"reference", "bubble", "selection", "heap"}, AllAlgorithms())
}

func TestBuildTable(t *testing.T) {
	t.Parallel()

	ms := []Measurement{
		{Size: 100, Algorithm: AlgorithmReference, ElapsedMS: 1},
		{Size: 100, Algorithm: AlgorithmBubble, ElapsedMS: 40},
		{Size: 100, Algorithm: AlgorithmSelection, ElapsedMS: 20},
		{Size: 100, Algorithm: AlgorithmHeap, ElapsedMS: 2},
		{Size: 500, Algorithm: AlgorithmReference, ElapsedMS: 3},
		{Size: 500, Algorithm: AlgorithmHeap, ElapsedMS: 5},
	}

	table := BuildTable(ms)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, ResultRow{Size: 100, ReferenceMS: 1, BubbleMS: 40, SelectionMS: 20, HeapMS: 2}, table.Rows[0])
	assert.Equal(t, []Algorithm{AlgorithmBubble, AlgorithmSelection}, table.Rows[1].Missing)

	ms5, ok := table.Rows[1].Elapsed(AlgorithmHeap)
	assert.True(t, ok)
	assert.Equal(t, int64(5), ms5)
	_, ok = table.Rows[1].Elapsed(AlgorithmBubble)
	assert.False(t, ok, "an unmeasured algorithm must not read as a zero timing")
}

func TestResultRow_ElapsedZeroIsMeasured(t *testing.T) {
	t.Parallel()

	table := BuildTable([]Measurement{{Size: 1, Algorithm: AlgorithmReference, ElapsedMS: 0}})
	require.Len(t, table.Rows, 1)
	ms, ok := table.Rows[0].Elapsed(AlgorithmReference)
	assert.True(t, ok)
	assert.Zero(t, ms)
	assert.Equal(t, []Algorithm{AlgorithmBubble, AlgorithmSelection, AlgorithmHeap}, table.Rows[0].Missing)

	_, ok = table.Rows[0].Elapsed("quick")
	assert.False(t, ok)
}

func TestColumnIndex(t *testing.T) {
	t.Parallel()
	for i, a := range AllAlgorithms() {
		assert.Equal(t, i, ColumnIndex(a))
	}
	assert.Equal(t, -1, ColumnIndex("quick"))
}

func TestBuildTable_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, BuildTable(nil).Rows)
}

func TestRun_Table(t *testing.T) {
	t.Parallel()

	r := &Run{Measurements: []Measurement{{Size: 5, Algorithm: AlgorithmHeap, ElapsedMS: 7}}}
	table := r.Table()
	require.Len(t, table.Rows, 1)
	assert.Equal(t, int64(7), table.Rows[0].HeapMS)
	assert.Len(t, table.Rows[0].Missing, 3)
}
