package tickets

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// row is one raw delimited line with its 1-based line number.
type row struct {
	Line   int
	Fields []string
}

// streamRows reads delimited lines and sends them to a channel. Blank lines
// are skipped and fields are trimmed of surrounding whitespace. Both channels
// are closed when processing completes.
func streamRows(ctx context.Context, r io.Reader, delim rune) (<-chan row, <-chan error) {
	rowCh := make(chan row, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		reader.Comma = delim
		reader.FieldsPerRecord = -1 // field count is validated per record
		reader.ReuseRecord = false

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "tickets: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- err
				return
			}
			line, _ := reader.FieldPos(0)
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}

			select {
			case rowCh <- row{Line: line, Fields: record}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "tickets: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}
