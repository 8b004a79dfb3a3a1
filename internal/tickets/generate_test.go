package tickets

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	ts := Generate(rand.New(rand.NewPCG(9, 9)), 500)
	require.Len(t, ts, 500)

	seen := make(map[int64]bool, len(ts))
	for _, tk := range ts {
		assert.False(t, seen[tk.TicketNumber], "duplicate ticket number %d", tk.TicketNumber)
		seen[tk.TicketNumber] = true

		assert.GreaterOrEqual(t, tk.Cost, int32(minCost))
		assert.LessOrEqual(t, tk.Cost, int32(maxCost))
		assert.GreaterOrEqual(t, tk.WinAmount, int32(0))
		assert.LessOrEqual(t, tk.WinAmount, int32(maxWin))

		_, err := time.Parse(dateLayout, tk.DrawDate)
		assert.NoError(t, err)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(rand.New(rand.NewPCG(3, 4)), 50)
	b := Generate(rand.New(rand.NewPCG(3, 4)), 50)
	assert.Equal(t, a, b)
}

func TestGenerate_Zero(t *testing.T) {
	assert.Empty(t, Generate(rand.New(rand.NewPCG(1, 1)), 0))
}
