package reports

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jcollis/arbwatch/internal/storage"
)

type fakeLedger struct {
	stats    map[storage.Period]*storage.Stats
	balances []storage.Balance
	err      error
}

func (f *fakeLedger) GetStats(ctx context.Context, period storage.Period) (*storage.Stats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats[period], nil
}

func (f *fakeLedger) Balances(ctx context.Context) ([]storage.Balance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.balances, nil
}

func TestDaily(t *testing.T) {
	ledger := &fakeLedger{
		stats: map[storage.Period]*storage.Stats{
			storage.PeriodDay: {
				Period:             storage.PeriodDay,
				TotalOpportunities: 3,
				BetsPlaced:         2,
				TotalProfit:        14.5,
				AverageROI:         1.45,
			},
			storage.PeriodWeek: {
				Period:             storage.PeriodWeek,
				TotalOpportunities: 12,
				BetsPlaced:         9,
				TotalProfit:        88.2,
				AverageROI:         1.3,
			},
		},
		balances: []storage.Balance{
			{Bookmaker: "bet365", AmountGBP: 420},
			{Bookmaker: "williamhill", AmountGBP: 180},
		},
	}

	text, err := Daily(context.Background(), ledger)
	if err != nil {
		t.Fatalf("Daily() error: %v", err)
	}

	for _, want := range []string{
		"Last 24 hours",
		"Last 7 days",
		"Opportunities: 3",
		"Opportunities: 12",
		"Profit: £14.50",
		"Profit: £88.20",
		"£600.00 across 2 bookmaker(s)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestDailyPropagatesErrors(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("database locked")}
	if _, err := Daily(context.Background(), ledger); err == nil {
		t.Error("Daily() error = nil, want ledger error")
	}
}

func TestRenderWithoutBalances(t *testing.T) {
	empty := &storage.Stats{Period: storage.PeriodDay}
	text := Render(time.Date(2026, 8, 23, 21, 0, 0, 0, time.UTC), empty, empty, nil)

	if strings.Contains(text, "Balances") {
		t.Errorf("report shows balances section with none tracked:\n%s", text)
	}
	if !strings.Contains(text, "Sun 23 Aug 2026") {
		t.Errorf("report missing date header:\n%s", text)
	}
}
