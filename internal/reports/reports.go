package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jcollis/arbwatch/internal/arb"
	"github.com/jcollis/arbwatch/internal/storage"
)

// Ledger is the slice of the storage layer the reports need; *storage.DB
// satisfies it.
type Ledger interface {
	GetStats(ctx context.Context, period storage.Period) (*storage.Stats, error)
	Balances(ctx context.Context) ([]storage.Balance, error)
}

// Daily builds the end-of-day summary: today's and the rolling week's ledger
// statistics plus current bookmaker balances.
func Daily(ctx context.Context, ledger Ledger) (string, error) {
	day, err := ledger.GetStats(ctx, storage.PeriodDay)
	if err != nil {
		return "", fmt.Errorf("day stats: %w", err)
	}
	week, err := ledger.GetStats(ctx, storage.PeriodWeek)
	if err != nil {
		return "", fmt.Errorf("week stats: %w", err)
	}
	balances, err := ledger.Balances(ctx)
	if err != nil {
		return "", fmt.Errorf("balances: %w", err)
	}
	return Render(time.Now(), day, week, balances), nil
}

// Render formats the daily summary. Pulled out of Daily so it can be tested
// without a database.
func Render(now time.Time, day, week *storage.Stats, balances []storage.Balance) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Daily summary, %s*\n\n", now.UTC().Format("Mon 2 Jan 2006"))

	b.WriteString("*Last 24 hours*\n")
	writeStats(&b, day)

	b.WriteString("\n*Last 7 days*\n")
	writeStats(&b, week)

	if len(balances) > 0 {
		var total float64
		for _, bal := range balances {
			total += bal.AmountGBP
		}
		fmt.Fprintf(&b, "\n*Balances:* £%.2f across %d bookmaker(s)\n", arb.Round2(total), len(balances))
	}

	return b.String()
}

func writeStats(b *strings.Builder, s *storage.Stats) {
	fmt.Fprintf(b, "Opportunities: %d\n", s.TotalOpportunities)
	fmt.Fprintf(b, "Bets placed: %d\n", s.BetsPlaced)
	fmt.Fprintf(b, "Profit: £%.2f\n", arb.Round2(s.TotalProfit))
	fmt.Fprintf(b, "Average ROI: %.2f%%\n", arb.Round2(s.AverageROI))
}
