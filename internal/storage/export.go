package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportCSV writes the bet history for a period as CSV, one row per bet
// joined with its opportunity, newest opportunities first.
func (db *DB) ExportCSV(ctx context.Context, w io.Writer, period Period) error {
	cutoff := period.Cutoff(time.Now())

	var opps []Opportunity
	if err := db.conn.WithContext(ctx).
		Where("created_ts >= ?", cutoff).
		Order("created_ts DESC").
		Find(&opps).Error; err != nil {
		return fmt.Errorf("load opportunities: %w", err)
	}

	cw := csv.NewWriter(w)
	header := []string{
		"Event", "Sport", "Start Time", "Profit %", "Guaranteed Profit",
		"Outcome", "Bookmaker", "Odds", "Stake", "Placed At", "Result",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, opp := range opps {
		bets, err := db.GetBets(ctx, opp.ID)
		if err != nil {
			return fmt.Errorf("load bets for opportunity %d: %w", opp.ID, err)
		}
		for _, bet := range bets {
			placedAt := ""
			if bet.PlacedTS > 0 {
				placedAt = time.Unix(bet.PlacedTS, 0).UTC().Format(time.RFC3339)
			}
			row := []string{
				opp.Event,
				opp.Sport,
				time.Unix(opp.CommenceTS, 0).UTC().Format(time.RFC3339),
				strconv.FormatFloat(opp.ProfitPercent, 'f', 2, 64),
				strconv.FormatFloat(opp.GuaranteedProfit, 'f', 2, 64),
				bet.Outcome,
				bet.Bookmaker,
				strconv.FormatFloat(bet.Odds, 'f', 2, 64),
				strconv.FormatFloat(bet.Stake, 'f', 2, 64),
				placedAt,
				bet.Result,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
