// Package sorting provides the in-place ticket sorting strategies measured by
// the benchmark.
package sorting

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sortbench/internal/model"
)

// Strategy sorts a slice of tickets in place into non-decreasing order under
// model.Compare. Implementations are stateless and not stable.
type Strategy interface {
	ID() model.Algorithm
	Sort(tickets []model.Ticket)
}

// Default returns one instance of every strategy in benchmark column order.
func Default() []Strategy {
	return []Strategy{
		Reference{},
		Bubble{},
		Selection{},
		Heap{},
	}
}

// ByID returns the strategy registered under id.
func ByID(id model.Algorithm) (Strategy, error) {
	for _, s := range Default() {
		if s.ID() == id {
			return s, nil
		}
	}
	return nil, eris.Errorf("sorting: unknown algorithm %q", id)
}

// ByIDs resolves ids and returns the strategies in benchmark column order,
// whatever order the ids were given in. Each id may appear once.
func ByIDs(ids []model.Algorithm) ([]Strategy, error) {
	out := make([]Strategy, 0, len(ids))
	seen := make(map[model.Algorithm]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, eris.Errorf("sorting: algorithm %q listed twice", id)
		}
		seen[id] = true
		s, err := ByID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Strategy) int {
		return model.ColumnIndex(a.ID()) - model.ColumnIndex(b.ID())
	})
	return out, nil
}
