package oddsapi

import (
	"fmt"
	"time"
)

// Event is one fixture with odds from every requested bookmaker.
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Name returns the display name for the event.
func (e Event) Name() string {
	return fmt.Sprintf("%s vs %s", e.HomeTeam, e.AwayTeam)
}

// Bookmaker is one bookmaker's markets for an event.
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Market is a priced market; this service only requests h2h.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is one priced outcome within a market.
type Outcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"` // decimal odds
}

// Sport is an entry from the sports catalog endpoint.
type Sport struct {
	Key         string `json:"key"`
	Group       string `json:"group"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	HasOutrights bool  `json:"has_outrights"`
}

// MarketH2H is the head-to-head (match winner) market key.
const MarketH2H = "h2h"
