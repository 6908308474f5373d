package oddsapi

import "github.com/jcollis/arbwatch/internal/arb"

// BestQuotes folds an event's bookmaker prices into one best quote per
// outcome. Only strictly higher prices replace an existing quote, so the
// first bookmaker seen wins ties. Prices at or below 1.0 are unusable and
// skipped here rather than poisoning the calculator input.
func BestQuotes(ev Event) arb.OddsSet {
	best := make(arb.OddsSet)

	for _, bk := range ev.Bookmakers {
		for _, market := range bk.Markets {
			if market.Key != MarketH2H {
				continue
			}
			for _, outcome := range market.Outcomes {
				if outcome.Price <= 1.0 {
					continue
				}
				current, seen := best[outcome.Name]
				if !seen || outcome.Price > current.Price {
					best[outcome.Name] = arb.Quote{
						Outcome:   outcome.Name,
						Price:     outcome.Price,
						Bookmaker: bk.Key,
					}
				}
			}
		}
	}

	return best
}
