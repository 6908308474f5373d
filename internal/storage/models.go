package storage

import (
	"time"

	"gorm.io/gorm"
)

// Opportunity statuses. An opportunity starts pending when alerted and
// moves to placed or skipped when the user acts on it.
const (
	StatusPending = "pending"
	StatusPlaced  = "placed"
	StatusSkipped = "skipped"
)

// Bet results.
const (
	ResultWon  = "won"
	ResultLost = "lost"
)

// Opportunity is an alerted arbitrage opportunity.
type Opportunity struct {
	ID               int64   `gorm:"primaryKey;autoIncrement"`
	Event            string  `gorm:"size:255;not null"`
	Sport            string  `gorm:"size:128;not null;index"`
	CommenceTS       int64   `gorm:"index"`
	ProfitPercent    float64 `gorm:"not null"`
	TotalStake       float64 `gorm:"not null"`
	GuaranteedProfit float64 `gorm:"not null"`
	Status           string  `gorm:"size:16;not null;default:pending;index"`
	CreatedTS        int64   `gorm:"not null;index"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// Bet is one leg of an opportunity: the stake on a single outcome at a
// single bookmaker.
type Bet struct {
	ID              int64   `gorm:"primaryKey;autoIncrement"`
	OpportunityID   int64   `gorm:"not null;index"`
	Outcome         string  `gorm:"size:255;not null"`
	Bookmaker       string  `gorm:"size:64;not null;index"`
	Odds            float64 `gorm:"not null"`
	Stake           float64 `gorm:"not null"`
	PotentialReturn float64 `gorm:"not null"`
	PlacedTS        int64   `gorm:"default:0"`
	SettledTS       int64   `gorm:"default:0"`
	Result          string  `gorm:"size:8"`
	ActualReturn    float64 `gorm:"default:0"`
	CreatedTS       int64   `gorm:"not null"`
}

func (Bet) TableName() string {
	return "bets"
}

// Balance is a manually maintained bookmaker account balance.
type Balance struct {
	Bookmaker string  `gorm:"primaryKey;size:64"`
	AmountGBP float64 `gorm:"not null"`
	UpdatedTS int64   `gorm:"not null"`
}

func (Balance) TableName() string {
	return "balances"
}

// BeforeCreate hooks for timestamps
func (o *Opportunity) BeforeCreate(tx *gorm.DB) error {
	if o.CreatedTS == 0 {
		o.CreatedTS = time.Now().Unix()
	}
	return nil
}

func (b *Bet) BeforeCreate(tx *gorm.DB) error {
	if b.CreatedTS == 0 {
		b.CreatedTS = time.Now().Unix()
	}
	return nil
}

func (b *Balance) BeforeCreate(tx *gorm.DB) error {
	if b.UpdatedTS == 0 {
		b.UpdatedTS = time.Now().Unix()
	}
	return nil
}
