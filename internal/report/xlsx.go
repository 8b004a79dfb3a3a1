package report

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/sortbench/internal/model"
)

// SheetName is the worksheet holding the results table.
const SheetName = "time_sorts"

// XLSXFile writes the table as a single-sheet workbook with a header row.
type XLSXFile struct {
	Path string
}

func (f XLSXFile) WriteTable(_ context.Context, table model.ResultTable) error {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range columnHeaders() {
		header.AddCell().SetString(h)
	}

	for _, r := range table.Rows {
		row := sheet.AddRow()
		row.AddCell().SetInt(r.Size)
		for _, a := range model.AllAlgorithms() {
			if ms, ok := r.Elapsed(a); ok {
				row.AddCell().SetInt64(ms)
			} else {
				row.AddCell().SetString(NotMeasured)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return eris.Wrapf(err, "xlsx: create dir for %s", f.Path)
	}
	return eris.Wrapf(wb.Save(f.Path), "xlsx: save %s", f.Path)
}
