package tickets

import (
	"math/rand/v2"
	"time"

	"github.com/sells-group/sortbench/internal/model"
)

const (
	firstTicketNumber = 100_000_000
	minCost           = 50
	maxCost           = 500
	maxWin            = 100_000
	drawDays          = 365
)

var drawEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Generate returns n synthetic tickets with unique ticket numbers in random
// order. Roughly half the tickets win nothing, so equal-date, equal-amount
// ties are common and exercise the ticket number tiebreak.
func Generate(rng *rand.Rand, n int) []model.Ticket {
	out := make([]model.Ticket, n)
	for i, p := range rng.Perm(n) {
		var win int32
		if rng.IntN(2) == 0 {
			win = int32(rng.IntN(maxWin + 1))
		}
		out[i] = model.Ticket{
			TicketNumber: int64(firstTicketNumber + p),
			Cost:         int32(minCost + rng.IntN(maxCost-minCost+1)),
			DrawDate:     drawEpoch.AddDate(0, 0, rng.IntN(drawDays)).Format(dateLayout),
			WinAmount:    win,
		}
	}
	return out
}
