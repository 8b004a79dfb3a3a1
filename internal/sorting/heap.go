package sorting

import "github.com/sells-group/sortbench/internal/model"

// Heap is an in-place heapsort over an implicit binary max-heap.
type Heap struct{}

func (Heap) ID() model.Algorithm { return model.AlgorithmHeap }

func (Heap) Sort(tickets []model.Ticket) {
	n := len(tickets)
	for i := n/2 - 1; i >= 0; i-- {
		siftDown(tickets, n, i)
	}
	for end := n - 1; end > 0; end-- {
		tickets[0], tickets[end] = tickets[end], tickets[0]
		siftDown(tickets, end, 0)
	}
}

// siftDown restores the max-heap property for the subtree rooted at i within
// the first n elements.
func siftDown(h []model.Ticket, n, i int) {
	for {
		largest := i
		left, right := 2*i+1, 2*i+2
		if left < n && model.Less(h[largest], h[left]) {
			largest = left
		}
		if right < n && model.Less(h[largest], h[right]) {
			largest = right
		}
		if largest == i {
			return
		}
		h[i], h[largest] = h[largest], h[i]
		i = largest
	}
}
