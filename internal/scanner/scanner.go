package scanner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jcollis/arbwatch/internal/alerts"
	"github.com/jcollis/arbwatch/internal/arb"
	"github.com/jcollis/arbwatch/internal/config"
	"github.com/jcollis/arbwatch/internal/metrics"
	"github.com/jcollis/arbwatch/internal/oddsapi"
	"github.com/jcollis/arbwatch/internal/storage"
	"github.com/sirupsen/logrus"
)

// OddsSource supplies per-sport event odds; satisfied by *oddsapi.Client.
type OddsSource interface {
	GetOdds(ctx context.Context, sport string) ([]oddsapi.Event, error)
}

// Opportunity is a detected arbitrage for one event, before allocation.
type Opportunity struct {
	EventName    string
	Sport        string
	CommenceTime time.Time
	Odds         arb.OddsSet
	Verdict      arb.Verdict
	FoundAt      time.Time
}

// Scanner sweeps the configured sports for arbitrage opportunities and
// dispatches alerts for the best ones.
type Scanner struct {
	cfg    *config.Config
	source OddsSource
	calc   *arb.Calculator
	db     *storage.DB
	sender alerts.Sender
	log    *logrus.Logger
}

// New creates a scanner. The alert sender is wired separately via
// SetAlertSender because the Telegram bot is itself an alert channel and is
// constructed after the scanner.
func New(cfg *config.Config, source OddsSource, calc *arb.Calculator, db *storage.DB, log *logrus.Logger) *Scanner {
	return &Scanner{
		cfg:    cfg,
		source: source,
		calc:   calc,
		db:     db,
		log:    log,
	}
}

// SetAlertSender wires the alert channel used by Process.
func (s *Scanner) SetAlertSender(sender alerts.Sender) {
	s.sender = sender
}

// Sweep fetches every configured sport sequentially with a flat delay
// between requests, folds each event into best quotes, and returns the
// detected opportunities sorted by profit percentage, highest first.
// A sport that fails to fetch is logged and skipped; the sweep continues.
func (s *Scanner) Sweep(ctx context.Context) ([]Opportunity, error) {
	var found []Opportunity

	for i, sport := range s.cfg.Sports {
		if i > 0 && s.cfg.SportDelaySec > 0 {
			select {
			case <-ctx.Done():
				return found, ctx.Err()
			case <-time.After(s.cfg.SportDelay()):
			}
		}

		events, err := s.source.GetOdds(ctx, sport)
		if err != nil {
			if ctx.Err() != nil {
				return found, ctx.Err()
			}
			s.log.WithError(err).WithField("sport", sport).Error("Failed to fetch odds")
			continue
		}

		s.log.WithFields(logrus.Fields{
			"sport":  sport,
			"events": len(events),
		}).Debug("Fetched odds")

		for _, ev := range events {
			opp, ok := s.evaluate(ev)
			if !ok {
				continue
			}
			found = append(found, opp)
			metrics.OpportunitiesFound.WithLabelValues(sport).Inc()
			s.log.WithFields(logrus.Fields{
				"event":          opp.EventName,
				"sport":          sport,
				"profit_percent": arb.Round2(opp.Verdict.ProfitPercent),
			}).Info("Arbitrage detected")
		}
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Verdict.ProfitPercent > found[j].Verdict.ProfitPercent
	})

	return found, nil
}

func (s *Scanner) evaluate(ev oddsapi.Event) (Opportunity, bool) {
	// Events starting too soon leave no window to place every leg.
	if hoursToStart := time.Until(ev.CommenceTime).Hours(); hoursToStart < s.cfg.MinHoursBeforeStart {
		metrics.EventsEvaluated.WithLabelValues("skipped_commence").Inc()
		return Opportunity{}, false
	}

	set := oddsapi.BestQuotes(ev)
	if len(set) < 2 {
		metrics.EventsEvaluated.WithLabelValues("skipped_outcomes").Inc()
		return Opportunity{}, false
	}

	verdict, err := s.calc.Detect(set)
	if err != nil {
		metrics.EventsEvaluated.WithLabelValues("skipped_invalid").Inc()
		s.log.WithError(err).WithField("event", ev.Name()).Debug("Event not evaluable")
		return Opportunity{}, false
	}
	metrics.EventsEvaluated.WithLabelValues("evaluated").Inc()

	if !verdict.IsArbitrage || verdict.ProfitPercent < s.cfg.MinProfitPercent {
		return Opportunity{}, false
	}

	return Opportunity{
		EventName:    ev.Name(),
		Sport:        ev.SportTitle,
		CommenceTime: ev.CommenceTime,
		Odds:         set,
		Verdict:      verdict,
		FoundAt:      time.Now(),
	}, true
}

// Process runs one full cycle: sweep, then allocate, persist, and alert the
// top opportunities. It returns how many alerts went out.
func (s *Scanner) Process(ctx context.Context) (int, error) {
	start := time.Now()
	metrics.ScansTotal.Inc()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	s.log.WithField("sports", len(s.cfg.Sports)).Info("Scanning for arbitrage")

	opps, err := s.Sweep(ctx)
	if err != nil {
		return 0, err
	}

	if len(opps) == 0 {
		s.log.Info("No arbitrage opportunities found in this scan")
		return 0, nil
	}

	top := opps
	if len(top) > s.cfg.MaxAlertsPerScan {
		top = top[:s.cfg.MaxAlertsPerScan]
	}

	sent := 0
	for _, opp := range top {
		payload, err := s.dispatch(ctx, opp)
		if err != nil {
			s.log.WithError(err).WithField("event", opp.EventName).Error("Failed to dispatch alert")
			continue
		}
		s.log.WithFields(logrus.Fields{
			"event":          payload.Event,
			"opportunity_id": payload.OpportunityID,
		}).Debug("Alert dispatched")
		sent++
	}

	s.log.WithFields(logrus.Fields{
		"found":   len(opps),
		"alerted": sent,
	}).Info("Scan complete")

	return sent, nil
}

// dispatch allocates the default stake, records the opportunity in the
// ledger, and sends the alert.
func (s *Scanner) dispatch(ctx context.Context, opp Opportunity) (*alerts.Payload, error) {
	alloc, err := s.calc.Allocate(s.cfg.DefaultStake, opp.Odds)
	if err != nil {
		return nil, fmt.Errorf("allocate stakes: %w", err)
	}

	payload := &alerts.Payload{
		Event:            opp.EventName,
		Sport:            opp.Sport,
		CommenceTime:     opp.CommenceTime,
		ProfitPercent:    opp.Verdict.ProfitPercent,
		Odds:             opp.Odds,
		TotalStake:       alloc.TotalStake,
		Stakes:           alerts.Lines(alloc),
		GuaranteedProfit: alloc.GuaranteedProfit(),
		FoundAt:          opp.FoundAt,
		Environment:      s.cfg.Environment,
	}

	if s.db != nil {
		record := &storage.Opportunity{
			Event:            opp.EventName,
			Sport:            opp.Sport,
			CommenceTS:       opp.CommenceTime.Unix(),
			ProfitPercent:    arb.Round2(opp.Verdict.ProfitPercent),
			TotalStake:       alloc.TotalStake,
			GuaranteedProfit: arb.Round2(alloc.GuaranteedProfit()),
			Status:           storage.StatusPending,
		}
		bets := make([]storage.Bet, 0, len(payload.Stakes))
		for _, line := range payload.Stakes {
			bets = append(bets, storage.Bet{
				Outcome:         line.Outcome,
				Bookmaker:       line.Bookmaker,
				Odds:            line.Odds,
				Stake:           arb.Round2(line.Stake),
				PotentialReturn: arb.Round2(line.PotentialReturn),
			})
		}
		id, err := s.db.LogOpportunity(ctx, record, bets)
		if err != nil {
			return nil, fmt.Errorf("log opportunity: %w", err)
		}
		payload.OpportunityID = id
	}

	if s.sender != nil {
		if err := s.sender.Send(ctx, payload); err != nil {
			return payload, fmt.Errorf("send alert: %w", err)
		}
	}

	return payload, nil
}
