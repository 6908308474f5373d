package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jcollis/arbwatch/internal/metrics"
)

// Period selects the reporting window for Stats and ExportCSV. Each period
// maps to a cutoff timestamp passed as a query parameter; the SQL text never
// varies with the period.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod validates a user-supplied period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodAll:
		return Period(s), nil
	}
	return "", fmt.Errorf("invalid period %q (valid: day, week, month, all)", s)
}

// Cutoff returns the inclusive lower bound timestamp for the period.
// PeriodAll returns 0, which matches every row.
func (p Period) Cutoff(now time.Time) int64 {
	switch p {
	case PeriodDay:
		return now.Add(-24 * time.Hour).Unix()
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour).Unix()
	case PeriodMonth:
		return now.Add(-30 * 24 * time.Hour).Unix()
	default:
		return 0
	}
}

// Stats summarizes tracked opportunities for a period
type Stats struct {
	Period             Period
	TotalOpportunities int64
	BetsPlaced         int64
	TotalProfit        float64
	AverageROI         float64
}

// GetStats computes ledger statistics for the given period
func (db *DB) GetStats(ctx context.Context, period Period) (*Stats, error) {
	cutoff := period.Cutoff(time.Now())
	stats := &Stats{Period: period}

	err := db.conn.WithContext(ctx).Model(&Opportunity{}).
		Where("created_ts >= ?", cutoff).
		Count(&stats.TotalOpportunities).Error
	if err != nil {
		metrics.RecordDatabaseQuery("get_stats", err)
		return nil, fmt.Errorf("count opportunities: %w", err)
	}

	err = db.conn.WithContext(ctx).Model(&Opportunity{}).
		Where("created_ts >= ? AND status = ?", cutoff, StatusPlaced).
		Count(&stats.BetsPlaced).Error
	if err != nil {
		metrics.RecordDatabaseQuery("get_stats", err)
		return nil, fmt.Errorf("count placed: %w", err)
	}

	type aggregates struct {
		TotalProfit float64
		AverageROI  float64
	}
	var agg aggregates
	err = db.conn.WithContext(ctx).Model(&Opportunity{}).
		Select("COALESCE(SUM(guaranteed_profit), 0) AS total_profit, COALESCE(AVG(profit_percent), 0) AS average_roi").
		Where("created_ts >= ? AND status = ?", cutoff, StatusPlaced).
		Scan(&agg).Error
	metrics.RecordDatabaseQuery("get_stats", err)
	if err != nil {
		return nil, fmt.Errorf("aggregate placed: %w", err)
	}

	stats.TotalProfit = agg.TotalProfit
	stats.AverageROI = agg.AverageROI
	return stats, nil
}
