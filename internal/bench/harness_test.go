package bench

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sortbench/internal/model"
	"github.com/sells-group/sortbench/internal/sorting"
)

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var calls atomic.Int64
	return func() time.Time {
		n := calls.Add(1)
		return base.Add(time.Duration(n) * step)
	}
}

func makeDataset(size int) model.Dataset {
	ts := make([]model.Ticket, size)
	for i := range ts {
		ts[i] = model.Ticket{
			TicketNumber: int64(size - i),
			Cost:         int32(i),
			DrawDate:     "2024-03-01",
			WinAmount:    int32(i % 3),
		}
	}
	return model.Dataset{Size: size, Tickets: ts}
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

type spyStrategy struct {
	sorting.Strategy
	log *eventLog
}

func (s spyStrategy) Sort(ts []model.Ticket) {
	s.log.add("sort")
	s.Strategy.Sort(ts)
}

type recordingSink struct {
	mu    sync.Mutex
	log   *eventLog
	calls []model.Measurement
	err   error
}

func (r *recordingSink) WriteSorted(_ context.Context, a model.Algorithm, size int, ts []model.Ticket) error {
	if r.log != nil {
		r.log.add("sink")
	}
	r.mu.Lock()
	r.calls = append(r.calls, model.Measurement{Size: size, Algorithm: a})
	r.mu.Unlock()
	// Scribble over the copy; the caller's dataset must stay intact.
	for i := range ts {
		ts[i].TicketNumber = -1
	}
	return r.err
}

func TestHarness_SizesTable(t *testing.T) {
	h := New(sorting.Default(), WithClock(stepClock(3*time.Millisecond)))

	res, err := h.Run(context.Background(), []model.Dataset{makeDataset(0), makeDataset(1), makeDataset(5)})
	require.NoError(t, err)

	table := res.Table()
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []int{0, 1, 5}, []int{table.Rows[0].Size, table.Rows[1].Size, table.Rows[2].Size})
	for _, row := range table.Rows {
		assert.Empty(t, row.Missing)
		for _, a := range model.AllAlgorithms() {
			d, ok := row.Elapsed(a)
			require.True(t, ok, a)
			assert.Equal(t, int64(3), d)
		}
	}
}

func TestHarness_SubsetInColumnOrder(t *testing.T) {
	strategies := []sorting.Strategy{sorting.Heap{}, sorting.Reference{}}
	h := New(strategies, WithClock(stepClock(5*time.Millisecond)))

	res, err := h.Run(context.Background(), []model.Dataset{makeDataset(5)})
	require.NoError(t, err)
	require.Len(t, res.Measurements, 2)
	assert.Equal(t, model.AlgorithmReference, res.Measurements[0].Algorithm)
	assert.Equal(t, model.AlgorithmHeap, res.Measurements[1].Algorithm)
	assert.Equal(t, model.AlgorithmHeap, strategies[0].ID(), "caller's slice is not reordered")

	row := res.Table().Rows[0]
	assert.Equal(t, []model.Algorithm{model.AlgorithmBubble, model.AlgorithmSelection}, row.Missing)
	_, ok := row.Elapsed(model.AlgorithmBubble)
	assert.False(t, ok)
}

func TestHarness_DuplicateStrategy(t *testing.T) {
	h := New([]sorting.Strategy{sorting.Heap{}, sorting.Reference{}, sorting.Heap{}})

	_, err := h.Run(context.Background(), []model.Dataset{makeDataset(5)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configured twice")
}

func TestHarness_MeasurementOrder(t *testing.T) {
	h := New(sorting.Default(), WithClock(stepClock(time.Millisecond)))

	res, err := h.Run(context.Background(), []model.Dataset{makeDataset(50), makeDataset(10), makeDataset(20)})
	require.NoError(t, err)
	require.Len(t, res.Measurements, 12)

	var sizes []int
	var algos []model.Algorithm
	for _, m := range res.Measurements {
		sizes = append(sizes, m.Size)
		algos = append(algos, m.Algorithm)
	}
	assert.Equal(t, []int{10, 10, 10, 10, 20, 20, 20, 20, 50, 50, 50, 50}, sizes)
	assert.Equal(t, model.AllAlgorithms(), algos[:4])
	assert.Equal(t, model.AllAlgorithms(), algos[8:])
}

func TestHarness_ParallelKeepsOrder(t *testing.T) {
	datasets := []model.Dataset{makeDataset(30), makeDataset(0), makeDataset(200), makeDataset(7)}

	seq, err := New(sorting.Default(), WithClock(stepClock(time.Millisecond))).Run(context.Background(), datasets)
	require.NoError(t, err)

	par, err := New(sorting.Default(), WithWorkers(4), WithClock(stepClock(time.Millisecond))).Run(context.Background(), datasets)
	require.NoError(t, err)

	require.Len(t, par.Measurements, len(seq.Measurements))
	for i := range seq.Measurements {
		assert.Equal(t, seq.Measurements[i].Size, par.Measurements[i].Size)
		assert.Equal(t, seq.Measurements[i].Algorithm, par.Measurements[i].Algorithm)
	}
}

func TestHarness_SinkRunsOutsideTimedInterval(t *testing.T) {
	log := &eventLog{}
	clock := stepClock(time.Millisecond)
	timed := func() time.Time {
		log.add("tick")
		return clock()
	}
	strategies := []sorting.Strategy{
		spyStrategy{Strategy: sorting.Heap{}, log: log},
		spyStrategy{Strategy: sorting.Bubble{}, log: log},
	}
	sink := &recordingSink{log: log}

	_, err := New(strategies, WithClock(timed), WithSink(sink)).Run(context.Background(), []model.Dataset{makeDataset(4)})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"tick", "sort", "tick", "sink",
		"tick", "sort", "tick", "sink",
	}, log.events)
}

func TestHarness_PrivateCopies(t *testing.T) {
	ds := makeDataset(25)
	original := slices.Clone(ds.Tickets)
	sink := &recordingSink{}

	res, err := New(sorting.Default(), WithSink(sink)).Run(context.Background(), []model.Dataset{ds})
	require.NoError(t, err)

	assert.Equal(t, original, ds.Tickets)
	assert.Len(t, res.Measurements, 4)
	require.Len(t, sink.calls, 4)
	for i, a := range model.AllAlgorithms() {
		assert.Equal(t, a, sink.calls[i].Algorithm)
		assert.Equal(t, 25, sink.calls[i].Size)
	}
}

func TestHarness_SinkErrorAbortsRun(t *testing.T) {
	sink := &recordingSink{err: eris.New("disk full")}

	_, err := New(sorting.Default(), WithSink(sink)).Run(context.Background(), []model.Dataset{makeDataset(3), makeDataset(4)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, sink.calls, 1)
}

func TestHarness_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(sorting.Default()).Run(ctx, []model.Dataset{makeDataset(3)})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHarness_NoStrategies(t *testing.T) {
	_, err := New(nil).Run(context.Background(), []model.Dataset{makeDataset(3)})
	require.Error(t, err)
}

func TestHarness_ProgressCallback(t *testing.T) {
	var n atomic.Int64
	h := New(sorting.Default(), WithWorkers(3), WithProgress(func(model.Measurement) { n.Add(1) }))

	_, err := h.Run(context.Background(), []model.Dataset{makeDataset(10), makeDataset(20)})
	require.NoError(t, err)
	assert.Equal(t, int64(8), n.Load())
}

func TestHarness_NegativeClockClamped(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var calls atomic.Int64
	backwards := func() time.Time {
		return base.Add(-time.Duration(calls.Add(1)) * time.Second)
	}

	res, err := New([]sorting.Strategy{sorting.Reference{}}, WithClock(backwards)).Run(context.Background(), []model.Dataset{makeDataset(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Measurements[0].ElapsedMS)
}

func TestNew_WorkersFloor(t *testing.T) {
	h := New(sorting.Default(), WithWorkers(0))
	assert.Equal(t, 1, h.workers)
}
