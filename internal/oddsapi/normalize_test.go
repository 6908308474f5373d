package oddsapi

import (
	"testing"
	"time"
)

func h2hEvent(books ...Bookmaker) Event {
	return Event{
		ID:           "ev1",
		SportKey:     "soccer_epl",
		SportTitle:   "EPL",
		CommenceTime: time.Now().Add(24 * time.Hour),
		HomeTeam:     "Arsenal",
		AwayTeam:     "Chelsea",
		Bookmakers:   books,
	}
}

func book(key string, marketKey string, outcomes ...Outcome) Bookmaker {
	return Bookmaker{
		Key:     key,
		Markets: []Market{{Key: marketKey, Outcomes: outcomes}},
	}
}

func TestBestQuotes(t *testing.T) {
	ev := h2hEvent(
		book("bet365", "h2h",
			Outcome{Name: "Arsenal", Price: 2.05},
			Outcome{Name: "Draw", Price: 3.6},
			Outcome{Name: "Chelsea", Price: 4.0},
		),
		book("williamhill", "h2h",
			Outcome{Name: "Arsenal", Price: 2.1},
			Outcome{Name: "Draw", Price: 3.5},
			Outcome{Name: "Chelsea", Price: 4.2},
		),
	)

	best := BestQuotes(ev)

	if len(best) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(best))
	}

	tests := []struct {
		outcome   string
		price     float64
		bookmaker string
	}{
		{"Arsenal", 2.1, "williamhill"},
		{"Draw", 3.6, "bet365"},
		{"Chelsea", 4.2, "williamhill"},
	}
	for _, tt := range tests {
		q := best[tt.outcome]
		if q.Price != tt.price || q.Bookmaker != tt.bookmaker {
			t.Errorf("%s: got %.2f@%s, want %.2f@%s", tt.outcome, q.Price, q.Bookmaker, tt.price, tt.bookmaker)
		}
	}
}

func TestBestQuotesTieFirstSeen(t *testing.T) {
	ev := h2hEvent(
		book("bet365", "h2h", Outcome{Name: "Arsenal", Price: 2.1}, Outcome{Name: "Chelsea", Price: 3.0}),
		book("williamhill", "h2h", Outcome{Name: "Arsenal", Price: 2.1}, Outcome{Name: "Chelsea", Price: 3.0}),
	)

	best := BestQuotes(ev)

	for _, outcome := range []string{"Arsenal", "Chelsea"} {
		if got := best[outcome].Bookmaker; got != "bet365" {
			t.Errorf("%s: tie went to %s, want first-seen bet365", outcome, got)
		}
	}
}

func TestBestQuotesSkipsNonH2HAndBadPrices(t *testing.T) {
	ev := h2hEvent(
		book("bet365", "totals", Outcome{Name: "Over", Price: 1.9}, Outcome{Name: "Under", Price: 1.9}),
		book("williamhill", "h2h",
			Outcome{Name: "Arsenal", Price: 1.0}, // degenerate, skipped
			Outcome{Name: "Chelsea", Price: 0.5}, // degenerate, skipped
		),
		book("paddypower", "h2h",
			Outcome{Name: "Arsenal", Price: 2.2},
			Outcome{Name: "Chelsea", Price: 3.1},
		),
	)

	best := BestQuotes(ev)

	if len(best) != 2 {
		t.Fatalf("got %d outcomes, want 2: %v", len(best), best)
	}
	if _, ok := best["Over"]; ok {
		t.Error("non-h2h market leaked into best quotes")
	}
	for _, outcome := range []string{"Arsenal", "Chelsea"} {
		if got := best[outcome].Bookmaker; got != "paddypower" {
			t.Errorf("%s: got bookmaker %s, want paddypower", outcome, got)
		}
	}
}

func TestBestQuotesEmpty(t *testing.T) {
	if best := BestQuotes(h2hEvent()); len(best) != 0 {
		t.Errorf("got %d quotes for event with no bookmakers, want 0", len(best))
	}
}
