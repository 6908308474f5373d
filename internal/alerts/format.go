package alerts

import (
	"fmt"
	"strings"
	"time"

	"github.com/jcollis/arbwatch/internal/arb"
)

// Text renders the alert as plain text, used by the SMTP channel.
func Text(p *Payload) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ARBITRAGE FOUND - %.2f%% profit\n", arb.Round2(p.ProfitPercent))
	b.WriteString("=======================================\n\n")
	fmt.Fprintf(&b, "Event:      %s\n", p.Event)
	fmt.Fprintf(&b, "Sport:      %s\n", p.Sport)
	fmt.Fprintf(&b, "Start time: %s\n\n", p.CommenceTime.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "YOUR BETS (total £%.2f):\n", p.TotalStake)
	b.WriteString("---------------------------------------\n")

	for i, line := range p.Stakes {
		fmt.Fprintf(&b, "BET %d: %s\n", i+1, line.Outcome)
		fmt.Fprintf(&b, "  Stake:     £%.2f\n", arb.Round2(line.Stake))
		fmt.Fprintf(&b, "  Odds:      %.2f\n", line.Odds)
		fmt.Fprintf(&b, "  Bookmaker: %s\n", strings.ToUpper(line.Bookmaker))
		fmt.Fprintf(&b, "  Returns:   £%.2f\n\n", arb.Round2(line.PotentialReturn))
	}

	fmt.Fprintf(&b, "GUARANTEED PROFIT: £%.2f\n\n", arb.Round2(p.GuaranteedProfit))
	b.WriteString("Act quickly - odds can change in 2-5 minutes.\n")
	b.WriteString("=======================================\n")
	fmt.Fprintf(&b, "Environment: %s\n", p.Environment)
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))

	return b.String()
}
