package arb

import (
	"errors"
	"fmt"
	"math"
)

// DefaultThreshold is the implied-probability sum below which a set of
// quotes is an arbitrage. The comparison is a raw < against this value with
// no epsilon; tests probe the boundary at exactly 1.0.
const DefaultThreshold = 1.0

var (
	// ErrTooFewOutcomes is returned when an odds set has fewer than two
	// outcomes and cannot be evaluated.
	ErrTooFewOutcomes = errors.New("odds set needs at least 2 outcomes")

	// ErrInvalidPrice is returned for decimal odds at or below 1.0, which
	// would imply a certainty (or worse) and produce nonsense reciprocals.
	ErrInvalidPrice = errors.New("decimal odds must be greater than 1.0")

	// ErrInvalidStake is returned when the total stake is not positive.
	ErrInvalidStake = errors.New("total stake must be positive")
)

// Quote is the best available price for one outcome of an event.
type Quote struct {
	Outcome   string
	Price     float64 // decimal odds, > 1.0
	Bookmaker string
}

// OddsSet maps outcome label to its best quote for a single event.
type OddsSet map[string]Quote

// Verdict is the result of arbitrage detection. ProfitPercent is unrounded;
// callers round with Round2 at the display edge.
type Verdict struct {
	IsArbitrage   bool
	ProfitPercent float64
	ImpliedSum    float64
}

// Stake is the allocation for a single outcome. Amount and PotentialReturn
// are unrounded; by construction PotentialReturn is identical across every
// outcome of the same allocation.
type Stake struct {
	Outcome         string
	Bookmaker       string
	Odds            float64
	Amount          float64
	PotentialReturn float64
}

// Allocation is a proportional stake split across all outcomes of an event.
type Allocation struct {
	TotalStake float64
	Stakes     map[string]Stake
}

// GuaranteedProfit is the locked-in profit (or loss, when the set is not an
// arbitrage) regardless of which outcome occurs.
func (a Allocation) GuaranteedProfit() float64 {
	// All outcomes return the same amount, so any entry will do.
	for _, s := range a.Stakes {
		return s.PotentialReturn - a.TotalStake
	}
	return 0
}

// Calculator holds the detection threshold. Both methods are pure and safe
// for concurrent use.
type Calculator struct {
	Threshold float64
}

// New returns a Calculator with the default threshold of 1.0.
func New() *Calculator {
	return &Calculator{Threshold: DefaultThreshold}
}

// Detect sums the implied probabilities (reciprocals of the decimal odds)
// of every outcome. An arbitrage exists when the sum is strictly below the
// calculator's threshold. Structurally invalid input (fewer than 2 outcomes,
// a price at or below 1.0) yields a zero verdict and an error; the caller
// skips the event.
func (c *Calculator) Detect(set OddsSet) (Verdict, error) {
	sum, err := impliedSum(set)
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{
		IsArbitrage:   sum < c.Threshold,
		ProfitPercent: (1.0/sum - 1.0) * 100.0,
		ImpliedSum:    sum,
	}, nil
}

// Allocate splits totalStake across the outcomes so that every outcome pays
// the same return: stake_i = (total / price_i) / impliedSum. It does not
// require an arbitrage to exist; for a guaranteed-loss set the split is
// still proportional and GuaranteedProfit is negative. Values are unrounded.
func (c *Calculator) Allocate(totalStake float64, set OddsSet) (Allocation, error) {
	if totalStake <= 0 {
		return Allocation{}, fmt.Errorf("%w: got %.2f", ErrInvalidStake, totalStake)
	}

	sum, err := impliedSum(set)
	if err != nil {
		return Allocation{}, err
	}

	stakes := make(map[string]Stake, len(set))
	for name, q := range set {
		amount := (totalStake / q.Price) / sum
		stakes[name] = Stake{
			Outcome:         name,
			Bookmaker:       q.Bookmaker,
			Odds:            q.Price,
			Amount:          amount,
			PotentialReturn: amount * q.Price,
		}
	}

	return Allocation{TotalStake: totalStake, Stakes: stakes}, nil
}

func impliedSum(set OddsSet) (float64, error) {
	if len(set) < 2 {
		return 0, fmt.Errorf("%w: got %d", ErrTooFewOutcomes, len(set))
	}

	sum := 0.0
	for name, q := range set {
		if q.Price <= 1.0 {
			return 0, fmt.Errorf("%w: %q priced at %.4f", ErrInvalidPrice, name, q.Price)
		}
		sum += 1.0 / q.Price
	}
	return sum, nil
}

// Round2 rounds a monetary or percentage value to two decimal places.
// Detection and allocation keep full precision; rounding happens only at
// the display and persistence edges.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
