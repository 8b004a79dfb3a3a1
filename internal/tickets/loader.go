// Package tickets reads and writes lottery ticket datasets in the delimited
// four-field text format: ticketNumber, cost, drawDate, winAmount.
package tickets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sortbench/internal/model"
)

// DefaultDelimiter separates fields when Options.Delimiter is zero.
const DefaultDelimiter = ','

const (
	fieldCount = 4
	dateLayout = "2006-01-02"
)

// Options configures the loader.
type Options struct {
	Delimiter rune   // default ','
	Source    string // name used in error messages when parsing a reader
}

// ValidDelimiter reports whether r can separate fields. Quotes, line breaks
// and invalid runes cannot.
func ValidDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' &&
		utf8.ValidRune(r) && r != utf8.RuneError
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return DefaultDelimiter
	}
	return o.Delimiter
}

// LoadFile reads every ticket in the file at path.
func LoadFile(ctx context.Context, path string, opts Options) ([]model.Ticket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: SourceUnavailable, Path: path, Err: err}
	}
	defer f.Close() //nolint:errcheck

	opts.Source = path
	return Parse(ctx, f, opts)
}

// Parse reads tickets from r, one per line. It stops at the first malformed
// line.
func Parse(ctx context.Context, r io.Reader, opts Options) ([]model.Ticket, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src := opts.Source
	if src == "" {
		src = "<input>"
	}
	if !ValidDelimiter(opts.delimiter()) {
		return nil, eris.Errorf("tickets: invalid delimiter %q for %s", opts.delimiter(), src)
	}

	rowCh, errCh := streamRows(ctx, r, opts.delimiter())

	var out []model.Ticket
	for rw := range rowCh {
		t, err := parseTicket(rw.Fields)
		if err != nil {
			return nil, &Error{Kind: MalformedRecord, Path: src, Line: rw.Line, Err: err}
		}
		out = append(out, t)
	}

	for err := range errCh {
		if err == nil {
			continue
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, &Error{Kind: MalformedRecord, Path: src, Line: pe.Line, Err: pe.Err}
		}
		return nil, err
	}
	return out, nil
}

func parseTicket(fields []string) (model.Ticket, error) {
	if len(fields) != fieldCount {
		return model.Ticket{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}

	num, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("ticket number %q: %w", fields[0], err)
	}
	cost, err := strconv.ParseInt(fields[1], 10, 32)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("cost %q: %w", fields[1], err)
	}
	if _, err := time.Parse(dateLayout, fields[2]); err != nil {
		return model.Ticket{}, fmt.Errorf("draw date %q: not YYYY-MM-DD", fields[2])
	}
	win, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("win amount %q: %w", fields[3], err)
	}

	return model.Ticket{
		TicketNumber: num,
		Cost:         int32(cost),
		DrawDate:     fields[2],
		WinAmount:    int32(win),
	}, nil
}

// SizePlaceholder is replaced by the dataset size in file name patterns.
const SizePlaceholder = "{size}"

// DatasetPath returns the path of the dataset for size under dir.
func DatasetPath(dir, pattern string, size int) string {
	return filepath.Join(dir, strings.ReplaceAll(pattern, SizePlaceholder, strconv.Itoa(size)))
}

// LoadSweep loads one dataset per size, up to workers files at a time. The
// result follows the order of sizes. Any error aborts the whole sweep.
func LoadSweep(ctx context.Context, dir, pattern string, sizes []int, workers int, opts Options) ([]model.Dataset, error) {
	if !strings.Contains(pattern, SizePlaceholder) {
		return nil, eris.Errorf("tickets: dataset pattern %q has no %s placeholder", pattern, SizePlaceholder)
	}
	if workers < 1 {
		workers = 1
	}

	out := make([]model.Dataset, len(sizes))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, size := range sizes {
		g.Go(func() error {
			path := DatasetPath(dir, pattern, size)
			ts, err := LoadFile(gCtx, path, opts)
			if err != nil {
				return err
			}
			if len(ts) != size {
				zap.L().Warn("tickets: dataset length differs from its size label",
					zap.String("path", path),
					zap.Int("size", size),
					zap.Int("records", len(ts)),
				)
			}
			zap.L().Debug("tickets: loaded dataset", zap.String("path", path), zap.Int("records", len(ts)))
			out[i] = model.Dataset{Size: size, Tickets: ts}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
