// Package bench times each sorting strategy against each dataset size and
// assembles the results table.
package bench

import (
	"context"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sortbench/internal/model"
	"github.com/sells-group/sortbench/internal/sorting"
)

// SortedSink receives each strategy's sorted output after timing has stopped.
type SortedSink interface {
	WriteSorted(ctx context.Context, algorithm model.Algorithm, size int, tickets []model.Ticket) error
}

// Result is the outcome of a full sweep.
type Result struct {
	Measurements []model.Measurement
}

// Table returns the measurements grouped into one row per size.
func (r *Result) Table() model.ResultTable {
	return model.BuildTable(r.Measurements)
}

// Harness runs the sweep. The zero value is not usable; construct with New.
type Harness struct {
	strategies []sorting.Strategy
	sink       SortedSink
	workers    int
	progress   func(model.Measurement)

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// Option configures a Harness.
type Option func(*Harness)

// WithClock replaces time.Now as the timing source.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) { h.nowFunc = now }
}

// WithSink hands every sorted copy to s once its timing is recorded.
func WithSink(s SortedSink) Option {
	return func(h *Harness) { h.sink = s }
}

// WithWorkers runs up to n measurement units at a time. Values below 1 are
// treated as 1.
func WithWorkers(n int) Option {
	return func(h *Harness) { h.workers = n }
}

// WithProgress registers a callback invoked after each measurement. It may be
// called from several goroutines when workers > 1.
func WithProgress(fn func(model.Measurement)) Option {
	return func(h *Harness) { h.progress = fn }
}

// New creates a Harness. Strategies are measured in benchmark column order
// (reference, bubble, selection, heap) regardless of the order given; ids
// outside that set follow in their given order.
func New(strategies []sorting.Strategy, opts ...Option) *Harness {
	ordered := slices.Clone(strategies)
	slices.SortStableFunc(ordered, func(a, b sorting.Strategy) int {
		return columnRank(a) - columnRank(b)
	})
	h := &Harness{
		strategies: ordered,
		workers:    1,
		nowFunc:    time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	if h.workers < 1 {
		h.workers = 1
	}
	return h
}

func columnRank(s sorting.Strategy) int {
	if i := model.ColumnIndex(s.ID()); i >= 0 {
		return i
	}
	return len(model.AllAlgorithms())
}

type unit struct {
	dataset  model.Dataset
	strategy sorting.Strategy
}

// Run measures every strategy against every dataset. The datasets' tickets
// are never mutated; every sort runs on a private copy. Datasets are processed
// in ascending size order and, within a size, in strategy order; the returned
// measurements follow that order regardless of the worker count.
func (h *Harness) Run(ctx context.Context, datasets []model.Dataset) (*Result, error) {
	if len(h.strategies) == 0 {
		return nil, eris.New("bench: no strategies configured")
	}
	seen := make(map[model.Algorithm]bool, len(h.strategies))
	for _, s := range h.strategies {
		if seen[s.ID()] {
			return nil, eris.Errorf("bench: strategy %q configured twice", s.ID())
		}
		seen[s.ID()] = true
	}

	ordered := slices.Clone(datasets)
	slices.SortStableFunc(ordered, func(a, b model.Dataset) int { return a.Size - b.Size })

	units := make([]unit, 0, len(ordered)*len(h.strategies))
	for _, ds := range ordered {
		for _, s := range h.strategies {
			units = append(units, unit{dataset: ds, strategy: s})
		}
	}

	log := zap.L().With(zap.Int("datasets", len(ordered)), zap.Int("workers", h.workers))
	log.Info("bench: starting sweep", zap.Int("units", len(units)))

	results := make([]model.Measurement, len(units))

	if h.workers == 1 {
		for i, u := range units {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "bench: sweep cancelled")
			}
			m, err := h.measure(ctx, u)
			if err != nil {
				return nil, err
			}
			results[i] = m
		}
	} else {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(h.workers)
		for i, u := range units {
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return eris.Wrap(err, "bench: sweep cancelled")
				}
				m, err := h.measure(gCtx, u)
				if err != nil {
					return err
				}
				results[i] = m
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	log.Info("bench: sweep complete")
	return &Result{Measurements: results}, nil
}

// measure times one strategy on a private copy of one dataset.
func (h *Harness) measure(ctx context.Context, u unit) (model.Measurement, error) {
	work := slices.Clone(u.dataset.Tickets)

	start := h.nowFunc()
	u.strategy.Sort(work)
	end := h.nowFunc()

	elapsed := end.Sub(start).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	m := model.Measurement{
		Size:      u.dataset.Size,
		Algorithm: u.strategy.ID(),
		ElapsedMS: elapsed,
	}

	zap.L().Debug("bench: measured",
		zap.Int("size", m.Size),
		zap.String("algorithm", string(m.Algorithm)),
		zap.Int64("elapsed_ms", m.ElapsedMS),
	)

	if h.sink != nil {
		if err := h.sink.WriteSorted(ctx, m.Algorithm, m.Size, work); err != nil {
			return model.Measurement{}, eris.Wrapf(err, "bench: write sorted %s/%d", m.Algorithm, m.Size)
		}
	}
	if h.progress != nil {
		h.progress(m)
	}
	return m, nil
}
