package model

import "slices"

// Algorithm identifies one sorting strategy.
type Algorithm string

const (
	AlgorithmReference Algorithm = "reference"
	AlgorithmBubble    Algorithm = "bubble"
	AlgorithmSelection Algorithm = "selection"
	AlgorithmHeap      Algorithm = "heap"
)

// AllAlgorithms returns every algorithm in benchmark column order.
func AllAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmReference,
		AlgorithmBubble,
		AlgorithmSelection,
		AlgorithmHeap,
	}
}

// Measurement is one timed sort of one dataset size.
type Measurement struct {
	Size      int       `json:"size"`
	Algorithm Algorithm `json:"algorithm"`
	ElapsedMS int64     `json:"elapsed_ms"`
}

// ResultRow holds the durations for one dataset size. Missing lists, in
// column order, the algorithms that were not measured for this size; their
// duration fields are zero and must not be reported as timings.
type ResultRow struct {
	Size        int         `json:"size"`
	ReferenceMS int64       `json:"reference_ms"`
	BubbleMS    int64       `json:"bubble_ms"`
	SelectionMS int64       `json:"selection_ms"`
	HeapMS      int64       `json:"heap_ms"`
	Missing     []Algorithm `json:"missing,omitempty"`
}

// Elapsed returns the duration recorded for a, and false when a was not
// measured.
func (r ResultRow) Elapsed(a Algorithm) (int64, bool) {
	if slices.Contains(r.Missing, a) {
		return 0, false
	}
	switch a {
	case AlgorithmReference:
		return r.ReferenceMS, true
	case AlgorithmBubble:
		return r.BubbleMS, true
	case AlgorithmSelection:
		return r.SelectionMS, true
	case AlgorithmHeap:
		return r.HeapMS, true
	}
	return 0, false
}

func (r *ResultRow) set(a Algorithm, ms int64) {
	switch a {
	case AlgorithmReference:
		r.ReferenceMS = ms
	case AlgorithmBubble:
		r.BubbleMS = ms
	case AlgorithmSelection:
		r.SelectionMS = ms
	case AlgorithmHeap:
		r.HeapMS = ms
	}
}

// ColumnIndex returns a's position in AllAlgorithms, or -1 for an unknown id.
func ColumnIndex(a Algorithm) int {
	return slices.Index(AllAlgorithms(), a)
}

// ResultTable is the size x algorithm duration table, one row per size.
type ResultTable struct {
	Rows []ResultRow `json:"rows"`
}

// BuildTable groups measurements into rows. Rows appear in the order their
// size is first seen, so measurements already in sweep order produce a table
// in sweep order. Algorithms with no measurement for a size are listed in
// that row's Missing.
func BuildTable(ms []Measurement) ResultTable {
	var t ResultTable
	idx := make(map[int]int)
	var seen []map[Algorithm]bool
	for _, m := range ms {
		i, ok := idx[m.Size]
		if !ok {
			i = len(t.Rows)
			idx[m.Size] = i
			t.Rows = append(t.Rows, ResultRow{Size: m.Size})
			seen = append(seen, make(map[Algorithm]bool))
		}
		t.Rows[i].set(m.Algorithm, m.ElapsedMS)
		seen[i][m.Algorithm] = true
	}
	for i := range t.Rows {
		for _, a := range AllAlgorithms() {
			if !seen[i][a] {
				t.Rows[i].Missing = append(t.Rows[i].Missing, a)
			}
		}
	}
	return t
}

// Dataset is one unsorted collection of tickets for a size class. Size is the
// sweep label and normally equals len(Tickets).
type Dataset struct {
	Size    int
	Tickets []Ticket
}
