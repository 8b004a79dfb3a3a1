package report

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sortbench/internal/model"
)

// WriteTSV writes one tab-separated line per row: size followed by the
// reference, bubble, selection and heap durations, NotMeasured for an
// algorithm that was not run. No header line is written so the file can be
// fed straight to plotting tools.
func WriteTSV(w io.Writer, table model.ResultTable) error {
	bw := bufio.NewWriter(w)
	for _, r := range table.Rows {
		cells := []string{strconv.Itoa(r.Size)}
		for _, a := range model.AllAlgorithms() {
			cell := NotMeasured
			if ms, ok := r.Elapsed(a); ok {
				cell = strconv.FormatInt(ms, 10)
			}
			cells = append(cells, cell)
		}
		if _, err := bw.WriteString(strings.Join(cells, "\t") + "\n"); err != nil {
			return eris.Wrap(err, "report: write tsv row")
		}
	}
	return eris.Wrap(bw.Flush(), "report: flush tsv")
}

// TSVFile writes the table to Path.
type TSVFile struct {
	Path string
}

func (f TSVFile) WriteTable(_ context.Context, table model.ResultTable) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return eris.Wrapf(err, "report: create dir for %s", f.Path)
	}
	out, err := os.Create(f.Path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", f.Path)
	}
	if err := WriteTSV(out, table); err != nil {
		out.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(out.Close(), "report: close %s", f.Path)
}
