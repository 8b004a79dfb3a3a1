package sorting

import (
	"slices"

	"github.com/sells-group/sortbench/internal/model"
)

// Reference is the library baseline: the standard library's pattern-defeating
// quicksort.
type Reference struct{}

func (Reference) ID() model.Algorithm { return model.AlgorithmReference }

func (Reference) Sort(tickets []model.Ticket) {
	slices.SortFunc(tickets, model.Compare)
}
