package tickets

import (
	"bytes"
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sortbench/internal/model"
)

func TestWrite_Format(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []model.Ticket{
		{TicketNumber: 3, Cost: 5, DrawDate: "2024-04-01", WinAmount: 0},
		{TicketNumber: 2, Cost: 20, DrawDate: "2024-05-01", WinAmount: 100},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "3,5,2024-04-01,0\n2,20,2024-05-01,100\n", buf.String())
}

func TestWrite_InvalidDelimiter(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []model.Ticket{{TicketNumber: 1, DrawDate: "2024-04-01"}}, '\n')
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid delimiter")
	assert.Empty(t, buf.String())
}

func TestWrite_RoundTrip(t *testing.T) {
	in := Generate(rand.New(rand.NewPCG(1, 2)), 200)

	for _, delim := range []rune{',', '\t', '|'} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, in, delim))

		out, err := Parse(context.Background(), &buf, Options{Delimiter: delim})
		require.NoError(t, err)
		assert.Equal(t, in, out, "delimiter %q", delim)
	}
}

func TestFileSink_WriteSorted(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := &FileSink{Dir: dir, Pattern: "sorted_{algorithm}_{size}.txt"}
	ts := []model.Ticket{{TicketNumber: 1, Cost: 2, DrawDate: "2024-01-01", WinAmount: 3}}

	require.NoError(t, sink.WriteSorted(context.Background(), model.AlgorithmHeap, 1, ts))

	path := filepath.Join(dir, "sorted_heap_1.txt")
	assert.Equal(t, path, sink.Path(model.AlgorithmHeap, 1))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1,2,2024-01-01,3\n", string(data))

	back, err := LoadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, ts, back)
}

func TestFileSink_Unwritable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	// A regular file where a directory is expected.
	sink := &FileSink{Dir: file, Pattern: "x_{size}.txt"}
	err := sink.WriteSorted(context.Background(), model.AlgorithmBubble, 3, nil)
	require.Error(t, err)
	assert.True(t, IsSourceUnavailable(err))
}

func TestFileSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &FileSink{Dir: t.TempDir(), Pattern: "x_{size}.txt"}
	assert.Error(t, sink.WriteSorted(ctx, model.AlgorithmBubble, 3, nil))
}
