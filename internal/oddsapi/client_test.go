package oddsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcollis/arbwatch/internal/config"
)

func testClient(baseURL string) *Client {
	return NewClient(&config.Config{
		OddsAPIBaseURL:  baseURL,
		OddsAPIKey:      "test-key",
		OddsAPIRegion:   "uk",
		OddsAPIOddsRPS:  100,
		OddsAPISportRPS: 100,
		Bookmakers:      []string{"bet365", "williamhill"},
	})
}

func TestGetOdds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sports/soccer_epl/odds" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("apiKey") != "test-key" {
			t.Errorf("apiKey = %q", q.Get("apiKey"))
		}
		if q.Get("markets") != "h2h" || q.Get("oddsFormat") != "decimal" || q.Get("regions") != "uk" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("bookmakers") != "bet365,williamhill" {
			t.Errorf("bookmakers = %q", q.Get("bookmakers"))
		}

		w.Header().Set("X-Requests-Remaining", "482")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"id": "abc123",
				"sport_key": "soccer_epl",
				"sport_title": "EPL",
				"commence_time": "2026-09-01T15:00:00Z",
				"home_team": "Arsenal",
				"away_team": "Chelsea",
				"bookmakers": [
					{
						"key": "bet365",
						"title": "Bet365",
						"markets": [
							{"key": "h2h", "outcomes": [
								{"name": "Arsenal", "price": 2.1},
								{"name": "Draw", "price": 3.6},
								{"name": "Chelsea", "price": 4.2}
							]}
						]
					}
				]
			}
		]`))
	}))
	defer srv.Close()

	events, err := testClient(srv.URL).GetOdds(context.Background(), "soccer_epl")
	if err != nil {
		t.Fatalf("GetOdds returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	ev := events[0]
	if ev.Name() != "Arsenal vs Chelsea" {
		t.Errorf("Name() = %q", ev.Name())
	}
	if len(ev.Bookmakers) != 1 || len(ev.Bookmakers[0].Markets[0].Outcomes) != 3 {
		t.Errorf("unexpected event shape: %+v", ev)
	}
}

func TestGetOddsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).GetOdds(context.Background(), "soccer_epl"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestListSports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sports" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"key": "soccer_epl", "group": "Soccer", "title": "EPL", "active": true},
			{"key": "tennis_atp", "group": "Tennis", "title": "ATP", "active": false}
		]`))
	}))
	defer srv.Close()

	sports, err := testClient(srv.URL).ListSports(context.Background())
	if err != nil {
		t.Fatalf("ListSports returned error: %v", err)
	}
	if len(sports) != 2 {
		t.Fatalf("got %d sports, want 2", len(sports))
	}
	if !sports[0].Active || sports[1].Active {
		t.Errorf("active flags decoded wrong: %+v", sports)
	}
}
