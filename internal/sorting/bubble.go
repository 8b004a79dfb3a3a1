package sorting

import "github.com/sells-group/sortbench/internal/model"

// Bubble runs exactly n-1 passes of adjacent compare-and-swap. There is no
// early exit when a pass makes no swaps; the full pass count is what gets
// measured.
type Bubble struct{}

func (Bubble) ID() model.Algorithm { return model.AlgorithmBubble }

func (Bubble) Sort(tickets []model.Ticket) {
	n := len(tickets)
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-i-1; j++ {
			if model.Less(tickets[j+1], tickets[j]) {
				tickets[j], tickets[j+1] = tickets[j+1], tickets[j]
			}
		}
	}
}
