package alerts

import (
	"context"

	"github.com/jcollis/arbwatch/internal/arb"
	"github.com/jcollis/arbwatch/internal/metrics"
	"github.com/sirupsen/logrus"
)

// LogSender writes alerts to the logger
type LogSender struct {
	log *logrus.Logger
}

// NewLogSender creates a new log sender
func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the alert
func (s *LogSender) Send(ctx context.Context, payload *Payload) error {
	s.log.WithFields(logrus.Fields{
		"event":             payload.Event,
		"sport":             payload.Sport,
		"profit_percent":    arb.Round2(payload.ProfitPercent),
		"total_stake":       payload.TotalStake,
		"guaranteed_profit": arb.Round2(payload.GuaranteedProfit),
		"outcomes":          len(payload.Stakes),
		"opportunity_id":    payload.OpportunityID,
	}).Info("Arbitrage opportunity found")
	metrics.AlertsSent.WithLabelValues("success", "log").Inc()
	return nil
}
