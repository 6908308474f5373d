package alerts

import (
	"context"
	"sort"
	"time"

	"github.com/jcollis/arbwatch/internal/arb"
)

// Payload carries everything a channel needs to render an arbitrage alert.
// Monetary and percentage values are unrounded; senders round for display.
type Payload struct {
	OpportunityID    int64 // ledger ID, 0 if not persisted
	Event            string
	Sport            string
	CommenceTime     time.Time
	ProfitPercent    float64
	Odds             arb.OddsSet // best quotes, for per-chat re-allocation
	TotalStake       float64
	Stakes           []StakeLine
	GuaranteedProfit float64
	FoundAt          time.Time
	Environment      string
}

// StakeLine is one leg of the recommended stake split.
type StakeLine struct {
	Outcome         string
	Bookmaker       string
	Odds            float64
	Stake           float64
	PotentialReturn float64
}

// Lines flattens an allocation into display order, largest stake first.
func Lines(alloc arb.Allocation) []StakeLine {
	lines := make([]StakeLine, 0, len(alloc.Stakes))
	for _, s := range alloc.Stakes {
		lines = append(lines, StakeLine{
			Outcome:         s.Outcome,
			Bookmaker:       s.Bookmaker,
			Odds:            s.Odds,
			Stake:           s.Amount,
			PotentialReturn: s.PotentialReturn,
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Stake != lines[j].Stake {
			return lines[i].Stake > lines[j].Stake
		}
		return lines[i].Outcome < lines[j].Outcome
	})
	return lines
}

// Sender defines the interface for alert channels
type Sender interface {
	Send(ctx context.Context, payload *Payload) error
}
