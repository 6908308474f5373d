package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/jcollis/arbwatch/internal/alerts"
	"github.com/jcollis/arbwatch/internal/arb"
	"github.com/jcollis/arbwatch/internal/oddsapi"
	"github.com/jcollis/arbwatch/internal/storage"
)

const parseModeMarkdown = "Markdown"

// formatAlert renders an arbitrage alert for Telegram.
func formatAlert(p *alerts.Payload) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*ARBITRAGE FOUND: %.2f%% profit*\n\n", arb.Round2(p.ProfitPercent))
	fmt.Fprintf(&b, "%s\n", p.Event)
	fmt.Fprintf(&b, "%s | starts %s\n\n", p.Sport, p.CommenceTime.UTC().Format("Mon 2 Jan 15:04 UTC"))
	fmt.Fprintf(&b, "*Your bets* (total £%.2f):\n", p.TotalStake)

	for _, line := range p.Stakes {
		fmt.Fprintf(&b, "• £%.2f on *%s* @ %.2f (%s) → £%.2f\n",
			arb.Round2(line.Stake), line.Outcome, line.Odds,
			line.Bookmaker, arb.Round2(line.PotentialReturn))
	}

	fmt.Fprintf(&b, "\n*Guaranteed profit: £%.2f*\n", arb.Round2(p.GuaranteedProfit))
	b.WriteString("\nOdds can move within minutes, act fast.")

	return b.String()
}

// formatStats renders ledger statistics for one period.
func formatStats(s *storage.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Stats (%s)*\n\n", s.Period)
	fmt.Fprintf(&b, "Opportunities found: %d\n", s.TotalOpportunities)
	fmt.Fprintf(&b, "Bets placed: %d\n", s.BetsPlaced)
	fmt.Fprintf(&b, "Total profit: £%.2f\n", arb.Round2(s.TotalProfit))
	fmt.Fprintf(&b, "Average ROI: %.2f%%", arb.Round2(s.AverageROI))
	return b.String()
}

// formatPending renders the opportunities still awaiting user action.
func formatPending(opps []storage.Opportunity) string {
	if len(opps) == 0 {
		return "No pending opportunities."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*Pending opportunities (%d)*\n\n", len(opps))
	for _, o := range opps {
		fmt.Fprintf(&b, "#%d %s\n    %.2f%% | £%.2f profit | starts %s\n",
			o.ID, o.Event, o.ProfitPercent, o.GuaranteedProfit,
			time.Unix(o.CommenceTS, 0).UTC().Format("2 Jan 15:04"))
	}
	return b.String()
}

// formatBalances renders tracked bookmaker balances.
func formatBalances(balances []storage.Balance) string {
	if len(balances) == 0 {
		return "No balances tracked yet. Use /setbalance <bookmaker> <amount>."
	}
	var b strings.Builder
	var total float64
	b.WriteString("*Bookmaker balances*\n\n")
	for _, bal := range balances {
		fmt.Fprintf(&b, "%s: £%.2f\n", bal.Bookmaker, bal.AmountGBP)
		total += bal.AmountGBP
	}
	fmt.Fprintf(&b, "\n*Total: £%.2f*", arb.Round2(total))
	return b.String()
}

// formatSettings renders a chat's current preferences.
func formatSettings(s Settings) string {
	notifs := "off"
	if s.Notifications {
		notifs = "on"
	}
	var b strings.Builder
	b.WriteString("*Your settings*\n\n")
	fmt.Fprintf(&b, "Min profit: %.2f%%\n", s.MinProfitPercent)
	fmt.Fprintf(&b, "Default stake: £%.2f\n", s.DefaultStake)
	fmt.Fprintf(&b, "Notifications: %s", notifs)
	return b.String()
}

// formatSports renders the sports catalog, grouped by sport group.
func formatSports(sports []oddsapi.Sport) string {
	if len(sports) == 0 {
		return "No active sports returned by the odds API."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*Active sports (%d)*\n\n", len(sports))
	lastGroup := ""
	for _, s := range sports {
		if s.Group != lastGroup {
			fmt.Fprintf(&b, "*%s*\n", s.Group)
			lastGroup = s.Group
		}
		fmt.Fprintf(&b, "  %s (`%s`)\n", s.Title, s.Key)
	}
	return b.String()
}

const helpText = `*arbwatch bot*

/scan - run a scan now
/pending - opportunities awaiting action
/stats [day|week|month|all] - ledger statistics
/balances - bookmaker balances
/setbalance <bookmaker> <amount> - set a balance
/report - today's summary
/sports - active sports on the odds API
/settings - show your preferences
/setprofit <percent> - minimum profit to alert you
/setstake <amount> - your default total stake
/togglenotifs - pause or resume alerts
/help - this message`
