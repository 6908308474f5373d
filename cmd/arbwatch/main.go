package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jcollis/arbwatch/internal/alerts"
	"github.com/jcollis/arbwatch/internal/arb"
	"github.com/jcollis/arbwatch/internal/bot"
	"github.com/jcollis/arbwatch/internal/config"
	"github.com/jcollis/arbwatch/internal/metrics"
	"github.com/jcollis/arbwatch/internal/oddsapi"
	"github.com/jcollis/arbwatch/internal/reports"
	"github.com/jcollis/arbwatch/internal/scanner"
	"github.com/jcollis/arbwatch/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	log.Info("Starting arbwatch service...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	log.WithFields(logrus.Fields{
		"environment":        cfg.Environment,
		"sports":             len(cfg.Sports),
		"bookmakers":         len(cfg.Bookmakers),
		"min_profit_percent": cfg.MinProfitPercent,
		"scan_interval_sec":  cfg.ScanIntervalSec,
		"alert_mode":         cfg.AlertMode,
	}).Info("Configuration loaded")

	// Initialize database
	db, err := storage.New(cfg.DatabasePath, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	log.WithField("path", cfg.DatabasePath).Info("Database opened")

	// Run auto-migration
	if err := db.AutoMigrate(); err != nil {
		log.WithError(err).Fatal("Failed to run database migrations")
	}

	log.Info("Database migrations complete")

	// Initialize odds API client and arbitrage calculator
	oddsClient := oddsapi.NewClient(cfg)
	calc := &arb.Calculator{Threshold: cfg.ArbSumThreshold}

	log.Info("Odds API client initialized")

	// Initialize scanner; its alert sender is wired below once the
	// Telegram bot exists.
	scan := scanner.New(cfg, oddsClient, calc, db, log)

	// Initialize the Telegram bot when telegram alerting is enabled
	var tgBot *bot.Bot
	sessions := bot.NewSessions(bot.Settings{
		MinProfitPercent: cfg.MinProfitPercent,
		DefaultStake:     cfg.DefaultStake,
		Notifications:    true,
	})
	if hasAlertMode(cfg.AlertMode, "telegram") {
		if cfg.TelegramChatID != "" {
			if chatID, err := strconv.ParseInt(cfg.TelegramChatID, 10, 64); err == nil {
				sessions.Get(chatID)
				log.WithField("chat_id", chatID).Info("Broadcast chat registered")
			} else {
				log.WithField("chat_id", cfg.TelegramChatID).Warn("TELEGRAM_CHAT_ID is not a valid chat ID")
			}
		}
		tgBot = bot.New(cfg, bot.NewAPI(cfg.TelegramBotToken), calc, db, scan, oddsClient, sessions, log)
	}

	// Initialize alert sender
	alertSender := createAlertSender(cfg, tgBot, log)
	scan.SetAlertSender(alertSender)

	log.WithField("alert_mode", cfg.AlertMode).Info("Alert sender initialized")

	// Start HTTP server (health + metrics)
	go startHTTPServer(cfg.HealthPort, log)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start the Telegram bot update loop
	if tgBot != nil {
		go func() {
			if err := tgBot.Run(ctx); err != nil && err != context.Canceled {
				log.WithError(err).Error("Telegram bot stopped with error")
			}
		}()
	}

	// Start polling loop
	ticker := time.NewTicker(cfg.ScanInterval())
	defer ticker.Stop()

	// Daily summary timer, armed for the next configured hour
	reportTimer := time.NewTimer(untilNextHour(time.Now(), cfg.DailyReportHour))
	defer reportTimer.Stop()

	log.Info("Starting scan loop")

	// Scan immediately on startup
	if _, err := scan.Process(ctx); err != nil {
		log.WithError(err).Error("Error processing scan")
	}

	for {
		select {
		case <-ticker.C:
			if _, err := scan.Process(ctx); err != nil {
				log.WithError(err).Error("Error processing scan")
			}
		case <-reportTimer.C:
			go sendDailyReport(ctx, db, tgBot, log)
			reportTimer.Reset(untilNextHour(time.Now(), cfg.DailyReportHour))
		case sig := <-sigChan:
			log.WithField("signal", sig).Info("Received shutdown signal")
			cancel()
			log.Info("Graceful shutdown complete")
			return
		case <-ctx.Done():
			log.Info("Context cancelled, shutting down")
			return
		}
	}
}

// untilNextHour returns the wait until the next occurrence of the given
// local hour.
func untilNextHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

func sendDailyReport(ctx context.Context, db *storage.DB, tgBot *bot.Bot, log *logrus.Logger) {
	text, err := reports.Daily(ctx, db)
	if err != nil {
		log.WithError(err).Error("Failed to build daily report")
		return
	}
	if tgBot == nil {
		log.WithField("report", text).Info("Daily report")
		return
	}
	if err := tgBot.Broadcast(ctx, text); err != nil {
		log.WithError(err).Error("Failed to broadcast daily report")
	}
}

func hasAlertMode(alertMode, want string) bool {
	for _, mode := range strings.Split(alertMode, ",") {
		if strings.TrimSpace(mode) == want {
			return true
		}
	}
	return false
}

func createAlertSender(cfg *config.Config, tgBot *bot.Bot, log *logrus.Logger) alerts.Sender {
	var senders []alerts.Sender

	for _, mode := range strings.Split(cfg.AlertMode, ",") {
		switch strings.TrimSpace(mode) {
		case "log":
			senders = append(senders, alerts.NewLogSender(log))
		case "telegram":
			if tgBot != nil {
				senders = append(senders, tgBot)
			} else {
				log.Warn("Telegram mode specified but bot not initialized")
			}
		case "smtp":
			if cfg.SMTPHost != "" {
				senders = append(senders, alerts.NewSMTPSender(
					cfg.SMTPHost,
					cfg.SMTPPort,
					cfg.SMTPUser,
					cfg.SMTPPassword,
					cfg.SMTPFrom,
					cfg.SMTPTo,
				))
			} else {
				log.Warn("SMTP mode specified but SMTP_HOST not set")
			}
		default:
			log.WithField("mode", mode).Warn("Unknown alert mode, skipping")
		}
	}

	if len(senders) == 0 {
		log.Warn("No valid alert senders configured, using log")
		return alerts.NewLogSender(log)
	}
	if len(senders) == 1 {
		return senders[0]
	}
	return alerts.NewMultiSender(senders...)
}

func startHTTPServer(port int, log *logrus.Logger) {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordHealthCheck(true)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy"}`)
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordHealthCheck(true)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ready"}`)
	})

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	log.WithField("port", port).Info("Starting HTTP server (health + metrics)")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("HTTP server failed")
	}
}
