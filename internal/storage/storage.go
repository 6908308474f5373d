package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jcollis/arbwatch/internal/metrics"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the GORM connection to the local SQLite ledger
type DB struct {
	conn *gorm.DB
	log  *logrus.Logger
}

// New opens (or creates) the SQLite database at path
func New(path string, log *logrus.Logger) (*DB, error) {
	gormLogger := logger.New(
		&gormLogAdapter{log: log},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	// SQLite file store: a single writer avoids SQLITE_BUSY churn.
	sqlDB.SetMaxOpenConns(1)

	return &DB{conn: conn, log: log}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates the ledger schema
func (db *DB) AutoMigrate() error {
	return db.conn.AutoMigrate(
		&Opportunity{},
		&Bet{},
		&Balance{},
	)
}

// LogOpportunity inserts an opportunity and its per-outcome bets in one
// transaction, returning the new opportunity ID.
func (db *DB) LogOpportunity(ctx context.Context, opp *Opportunity, bets []Bet) (int64, error) {
	err := db.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(opp).Error; err != nil {
			return err
		}
		for i := range bets {
			bets[i].OpportunityID = opp.ID
		}
		if len(bets) > 0 {
			if err := tx.Create(&bets).Error; err != nil {
				return err
			}
		}
		return nil
	})
	metrics.RecordDatabaseQuery("log_opportunity", err)
	if err != nil {
		return 0, err
	}
	return opp.ID, nil
}

// MarkPlaced records that the user placed every bet of an opportunity
func (db *DB) MarkPlaced(ctx context.Context, opportunityID int64) error {
	now := time.Now().Unix()
	err := db.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Bet{}).
			Where("opportunity_id = ?", opportunityID).
			Update("placed_ts", now).Error; err != nil {
			return err
		}
		return tx.Model(&Opportunity{}).
			Where("id = ?", opportunityID).
			Update("status", StatusPlaced).Error
	})
	metrics.RecordDatabaseQuery("mark_placed", err)
	return err
}

// MarkSkipped records that the user passed on an opportunity
func (db *DB) MarkSkipped(ctx context.Context, opportunityID int64) error {
	err := db.conn.WithContext(ctx).Model(&Opportunity{}).
		Where("id = ?", opportunityID).
		Update("status", StatusSkipped).Error
	metrics.RecordDatabaseQuery("mark_skipped", err)
	return err
}

// SettleBet records the outcome of a single bet
func (db *DB) SettleBet(ctx context.Context, betID int64, won bool, actualReturn float64) error {
	result := ResultLost
	if !won {
		actualReturn = 0
	} else {
		result = ResultWon
	}

	updates := map[string]interface{}{
		"settled_ts":    time.Now().Unix(),
		"result":        result,
		"actual_return": actualReturn,
	}
	err := db.conn.WithContext(ctx).Model(&Bet{}).
		Where("id = ?", betID).
		Updates(updates).Error
	metrics.RecordDatabaseQuery("settle_bet", err)
	return err
}

// GetOpportunity fetches a single opportunity by ID
func (db *DB) GetOpportunity(ctx context.Context, id int64) (*Opportunity, error) {
	var opp Opportunity
	result := db.conn.WithContext(ctx).First(&opp, id)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &opp, nil
}

// GetBets fetches the bets of an opportunity
func (db *DB) GetBets(ctx context.Context, opportunityID int64) ([]Bet, error) {
	var bets []Bet
	result := db.conn.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("id ASC").
		Find(&bets)
	return bets, result.Error
}

// PendingOpportunities lists opportunities awaiting user action, newest first
func (db *DB) PendingOpportunities(ctx context.Context) ([]Opportunity, error) {
	var opps []Opportunity
	result := db.conn.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_ts DESC").
		Find(&opps)
	metrics.RecordDatabaseQuery("pending_opportunities", result.Error)
	return opps, result.Error
}

// UpsertBalance sets a bookmaker's tracked balance
func (db *DB) UpsertBalance(ctx context.Context, bookmaker string, amount float64) error {
	bal := Balance{
		Bookmaker: bookmaker,
		AmountGBP: amount,
		UpdatedTS: time.Now().Unix(),
	}
	err := db.conn.WithContext(ctx).Save(&bal).Error
	metrics.RecordDatabaseQuery("upsert_balance", err)
	return err
}

// Balances lists tracked bookmaker balances, largest first
func (db *DB) Balances(ctx context.Context) ([]Balance, error) {
	var balances []Balance
	result := db.conn.WithContext(ctx).
		Order("amount_gbp DESC").
		Find(&balances)
	metrics.RecordDatabaseQuery("balances", result.Error)
	return balances, result.Error
}

// gormLogAdapter adapts logrus to GORM's logger interface
type gormLogAdapter struct {
	log *logrus.Logger
}

func (l *gormLogAdapter) Printf(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}
