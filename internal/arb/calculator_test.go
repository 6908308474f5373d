package arb

import (
	"errors"
	"math"
	"testing"
)

func absDiff(a, b float64) float64 {
	return math.Abs(a - b)
}

func twoWay(priceA, priceB float64) OddsSet {
	return OddsSet{
		"A": {Outcome: "A", Price: priceA, Bookmaker: "bet365"},
		"B": {Outcome: "B", Price: priceB, Bookmaker: "williamhill"},
	}
}

func threeWay() OddsSet {
	return OddsSet{
		"Arsenal": {Outcome: "Arsenal", Price: 2.1, Bookmaker: "bet365"},
		"Draw":    {Outcome: "Draw", Price: 3.6, Bookmaker: "williamhill"},
		"Chelsea": {Outcome: "Chelsea", Price: 4.2, Bookmaker: "paddypower"},
	}
}

func TestDetect(t *testing.T) {
	calc := New()

	tests := []struct {
		name          string
		set           OddsSet
		wantArb       bool
		wantProfitPct float64 // pre-rounding, checked to 1e-9
	}{
		{
			name:          "three way arbitrage",
			set:           threeWay(),
			wantArb:       true,
			wantProfitPct: (1.0/(1.0/2.1+1.0/3.6+1.0/4.2) - 1.0) * 100.0,
		},
		{
			name:          "two way no arbitrage",
			set:           twoWay(1.8, 2.0),
			wantArb:       false,
			wantProfitPct: (1.0/(1.0/1.8+1.0/2.0) - 1.0) * 100.0,
		},
		{
			name:          "two way arbitrage across books",
			set:           twoWay(2.1, 2.1),
			wantArb:       true,
			wantProfitPct: (2.1/2.0 - 1.0) * 100.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := calc.Detect(tt.set)
			if err != nil {
				t.Fatalf("Detect returned error: %v", err)
			}
			if v.IsArbitrage != tt.wantArb {
				t.Errorf("IsArbitrage = %v, want %v (implied sum %.9f)", v.IsArbitrage, tt.wantArb, v.ImpliedSum)
			}
			if absDiff(v.ProfitPercent, tt.wantProfitPct) > 1e-9 {
				t.Errorf("ProfitPercent = %.12f, want %.12f", v.ProfitPercent, tt.wantProfitPct)
			}
		})
	}
}

func TestDetectWorkedExample(t *testing.T) {
	// Prices {2.1, 3.6, 4.2}: implied sum ~0.99868, profit ~0.13%.
	calc := New()

	v, err := calc.Detect(threeWay())
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if !v.IsArbitrage {
		t.Fatalf("expected arbitrage, implied sum %.9f", v.ImpliedSum)
	}
	if v.ImpliedSum >= 1.0 || v.ImpliedSum < 0.998 {
		t.Errorf("ImpliedSum = %.9f, want ~0.99868", v.ImpliedSum)
	}
	if got := Round2(v.ProfitPercent); got != 0.13 {
		t.Errorf("rounded ProfitPercent = %.2f, want 0.13", got)
	}
}

func TestDetectBoundary(t *testing.T) {
	// Odds of exactly {2.0, 2.0} make the implied sum exactly 1.0. The
	// comparison is a raw < with no epsilon, so this must not be flagged.
	calc := New()

	v, err := calc.Detect(twoWay(2.0, 2.0))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if v.ImpliedSum != 1.0 {
		t.Fatalf("ImpliedSum = %.17f, want exactly 1.0", v.ImpliedSum)
	}
	if v.IsArbitrage {
		t.Error("sum == threshold must not be an arbitrage")
	}

	// A raised threshold flips the verdict for the same input.
	loose := &Calculator{Threshold: 1.0 + 1e-9}
	v, err = loose.Detect(twoWay(2.0, 2.0))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if !v.IsArbitrage {
		t.Error("sum below a raised threshold should be an arbitrage")
	}
}

func TestDetectInvalidInput(t *testing.T) {
	calc := New()

	tests := []struct {
		name    string
		set     OddsSet
		wantErr error
	}{
		{
			name:    "empty set",
			set:     OddsSet{},
			wantErr: ErrTooFewOutcomes,
		},
		{
			name: "single outcome",
			set: OddsSet{
				"A": {Outcome: "A", Price: 5.0, Bookmaker: "bet365"},
			},
			wantErr: ErrTooFewOutcomes,
		},
		{
			name:    "price exactly 1.0",
			set:     twoWay(1.0, 2.0),
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "price below 1.0",
			set:     twoWay(0.5, 2.0),
			wantErr: ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := calc.Detect(tt.set)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Detect error = %v, want %v", err, tt.wantErr)
			}
			if v.IsArbitrage {
				t.Error("invalid input must not report an arbitrage")
			}
		})
	}
}

func TestAllocate(t *testing.T) {
	calc := New()

	tests := []struct {
		name       string
		totalStake float64
		set        OddsSet
		wantProfit bool
	}{
		{"three way arbitrage", 1000, threeWay(), true},
		{"two way loss set", 1000, twoWay(1.8, 2.0), false},
		{"small stake", 50, threeWay(), true},
		{"fractional stake", 123.45, twoWay(2.2, 2.3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc, err := calc.Allocate(tt.totalStake, tt.set)
			if err != nil {
				t.Fatalf("Allocate returned error: %v", err)
			}

			if len(alloc.Stakes) != len(tt.set) {
				t.Fatalf("got %d stakes, want %d", len(alloc.Stakes), len(tt.set))
			}

			// Stakes sum back to the total before any rounding.
			sum := 0.0
			for _, s := range alloc.Stakes {
				if s.Amount < 0 {
					t.Errorf("stake for %s is negative: %f", s.Outcome, s.Amount)
				}
				sum += s.Amount
			}
			if absDiff(sum, tt.totalStake) > 1e-6 {
				t.Errorf("stakes sum to %.9f, want %.9f", sum, tt.totalStake)
			}

			// Unrounded potential returns are identical across outcomes.
			var first float64
			i := 0
			for _, s := range alloc.Stakes {
				if i == 0 {
					first = s.PotentialReturn
				} else if absDiff(s.PotentialReturn, first) > 1e-6 {
					t.Errorf("return for %s = %.9f, differs from %.9f", s.Outcome, s.PotentialReturn, first)
				}
				i++
			}

			// Guaranteed profit is positive exactly when Detect flags the set.
			v, err := calc.Detect(tt.set)
			if err != nil {
				t.Fatalf("Detect returned error: %v", err)
			}
			profit := alloc.GuaranteedProfit()
			if v.IsArbitrage != (profit > 0) {
				t.Errorf("GuaranteedProfit = %.9f, IsArbitrage = %v; signs must agree", profit, v.IsArbitrage)
			}
			if tt.wantProfit != (profit > 0) {
				t.Errorf("GuaranteedProfit = %.9f, want positive = %v", profit, tt.wantProfit)
			}
		})
	}
}

func TestAllocateWorkedExample(t *testing.T) {
	// £1000 across {2.1, 3.6, 4.2} → stakes ≈ {476.35, 277.87, 238.26},
	// every outcome returning ≈ £1000.33.
	calc := New()

	alloc, err := calc.Allocate(1000, threeWay())
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}

	wantStakes := map[string]float64{
		"Arsenal": 476.35,
		"Draw":    277.87,
		"Chelsea": 238.26,
	}
	for outcome, want := range wantStakes {
		s, ok := alloc.Stakes[outcome]
		if !ok {
			t.Fatalf("missing stake for %s", outcome)
		}
		if got := Round2(s.Amount); absDiff(got, want) > 0.01 {
			t.Errorf("stake for %s = %.2f, want %.2f", outcome, got, want)
		}
		if got := Round2(s.PotentialReturn); absDiff(got, 1000.33) > 0.01 {
			t.Errorf("return for %s = %.2f, want 1000.33", outcome, got)
		}
	}

	if got := Round2(alloc.GuaranteedProfit()); absDiff(got, 0.33) > 0.01 {
		t.Errorf("GuaranteedProfit = %.2f, want 0.33", got)
	}
}

func TestAllocateNegativeCase(t *testing.T) {
	// {1.8, 2.0} sums to ~1.0556: the split is still proportional but the
	// locked-in result is a loss. Callers decide whether to act.
	calc := New()

	alloc, err := calc.Allocate(1000, twoWay(1.8, 2.0))
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if profit := alloc.GuaranteedProfit(); profit >= 0 {
		t.Errorf("GuaranteedProfit = %.9f, want negative", profit)
	}
}

func TestAllocateInvalidInput(t *testing.T) {
	calc := New()

	tests := []struct {
		name       string
		totalStake float64
		set        OddsSet
		wantErr    error
	}{
		{"zero stake", 0, threeWay(), ErrInvalidStake},
		{"negative stake", -100, threeWay(), ErrInvalidStake},
		{"single outcome", 1000, OddsSet{"A": {Outcome: "A", Price: 3.0}}, ErrTooFewOutcomes},
		{"degenerate odds", 1000, twoWay(1.0, 3.0), ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc, err := calc.Allocate(tt.totalStake, tt.set)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Allocate error = %v, want %v", err, tt.wantErr)
			}
			if len(alloc.Stakes) != 0 {
				t.Error("invalid input must not produce partial stakes")
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{476.3546, 476.35},
		{277.875, 277.88},
		{0.005, 0.01},
		{-1.005, -1.0}, // math.Round halves away from zero on the scaled value
		{1000.334, 1000.33},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); absDiff(got, tt.want) > 1e-9 {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
