package sorting

import "github.com/sells-group/sortbench/internal/model"

// Selection moves the minimum of the unsorted remainder into each position in
// turn. Always O(n²) comparisons, at most n-1 swaps.
type Selection struct{}

func (Selection) ID() model.Algorithm { return model.AlgorithmSelection }

func (Selection) Sort(tickets []model.Ticket) {
	n := len(tickets)
	for i := 0; i < n-1; i++ {
		minIdx := i
		for j := i + 1; j < n; j++ {
			if model.Less(tickets[j], tickets[minIdx]) {
				minIdx = j
			}
		}
		if minIdx != i {
			tickets[i], tickets[minIdx] = tickets[minIdx], tickets[i]
		}
	}
}
