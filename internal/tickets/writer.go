package tickets

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sortbench/internal/model"
)

// AlgorithmPlaceholder is replaced by the algorithm id in output file name
// patterns.
const AlgorithmPlaceholder = "{algorithm}"

// Write encodes tickets one per line in the loader's format.
func Write(w io.Writer, ts []model.Ticket, delim rune) error {
	if delim == 0 {
		delim = DefaultDelimiter
	}
	if !ValidDelimiter(delim) {
		return eris.Errorf("tickets: invalid delimiter %q", delim)
	}
	cw := csv.NewWriter(w)
	cw.Comma = delim

	rec := make([]string, fieldCount)
	for _, t := range ts {
		rec[0] = strconv.FormatInt(t.TicketNumber, 10)
		rec[1] = strconv.FormatInt(int64(t.Cost), 10)
		rec[2] = t.DrawDate
		rec[3] = strconv.FormatInt(int64(t.WinAmount), 10)
		if err := cw.Write(rec); err != nil {
			return eris.Wrap(err, "tickets: write record")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "tickets: flush")
}

// WriteFile writes tickets to path, creating parent directories as needed.
func WriteFile(path string, ts []model.Ticket, delim rune) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &Error{Kind: SourceUnavailable, Path: path, Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &Error{Kind: SourceUnavailable, Path: path, Err: err}
	}

	bw := bufio.NewWriter(f)
	if err := Write(bw, ts, delim); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrapf(err, "tickets: flush %s", path)
	}
	return eris.Wrapf(f.Close(), "tickets: close %s", path)
}

// FileSink persists each sorted copy under Dir using Pattern, in which
// {algorithm} and {size} are substituted.
type FileSink struct {
	Dir       string
	Pattern   string
	Delimiter rune
}

// Path returns the output file for one (algorithm, size) pair.
func (s *FileSink) Path(algorithm model.Algorithm, size int) string {
	name := strings.ReplaceAll(s.Pattern, AlgorithmPlaceholder, string(algorithm))
	name = strings.ReplaceAll(name, SizePlaceholder, strconv.Itoa(size))
	return filepath.Join(s.Dir, name)
}

// WriteSorted implements bench.SortedSink.
func (s *FileSink) WriteSorted(ctx context.Context, algorithm model.Algorithm, size int, ts []model.Ticket) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "tickets: write sorted")
	}
	return WriteFile(s.Path(algorithm, size), ts, s.Delimiter)
}
