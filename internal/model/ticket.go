package model

import (
	"cmp"
	"strings"
)

// Ticket is a single lottery ticket entry. Values are never mutated once
// loaded; sorting only moves them between positions.
type Ticket struct {
	TicketNumber int64  `json:"ticket_number"`
	Cost         int32  `json:"cost"`
	DrawDate     string `json:"draw_date"` // YYYY-MM-DD, compares lexicographically
	WinAmount    int32  `json:"win_amount"`
}

// Direction is the order applied to one sort key.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// SortKey compares a single field of two tickets in ascending order.
type SortKey struct {
	Name      string
	Direction Direction
	compare   func(a, b Ticket) int
}

// TicketOrder lists the keys that define the total order over tickets, in
// precedence order. The win amount is deliberately descending.
var TicketOrder = []SortKey{
	{
		Name:      "draw_date",
		Direction: Ascending,
		compare:   func(a, b Ticket) int { return strings.Compare(a.DrawDate, b.DrawDate) },
	},
	{
		Name:      "win_amount",
		Direction: Descending,
		compare:   func(a, b Ticket) int { return cmp.Compare(a.WinAmount, b.WinAmount) },
	},
	{
		Name:      "ticket_number",
		Direction: Ascending,
		compare:   func(a, b Ticket) int { return cmp.Compare(a.TicketNumber, b.TicketNumber) },
	},
}

// Compare returns -1 if a sorts before b, +1 if after, and 0 when every key
// in TicketOrder is equal.
func Compare(a, b Ticket) int {
	for _, k := range TicketOrder {
		c := k.compare(a, b)
		if c == 0 {
			continue
		}
		if k.Direction == Descending {
			return -c
		}
		return c
	}
	return 0
}

// Less reports whether a sorts strictly before b.
func Less(a, b Ticket) bool {
	return Compare(a, b) < 0
}
