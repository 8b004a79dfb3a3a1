// Package report writes the benchmark results table.
package report

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sortbench/internal/model"
)

// TableSink persists a results table.
type TableSink interface {
	WriteTable(ctx context.Context, table model.ResultTable) error
}

// Multi fans a table out to every sink in order, stopping at the first error.
type Multi []TableSink

func (m Multi) WriteTable(ctx context.Context, table model.ResultTable) error {
	for _, s := range m {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "report: write table")
		}
		if err := s.WriteTable(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

// NotMeasured fills the cell of an algorithm that was not part of the run.
const NotMeasured = "-"

// columnHeaders names the table columns in output order.
func columnHeaders() []string {
	h := []string{"size"}
	for _, a := range model.AllAlgorithms() {
		h = append(h, string(a)+"_ms")
	}
	return h
}
