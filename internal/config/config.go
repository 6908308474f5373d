package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jcollis/arbwatch/internal/secrets"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string

	// Database (local SQLite ledger)
	DatabasePath string

	// Odds API
	OddsAPIBaseURL  string
	OddsAPIKey      string
	OddsAPIRegion   string
	OddsAPIOddsRPS  float64
	OddsAPISportRPS float64
	Bookmakers      []string
	Sports          []string

	// Arbitrage settings
	MinProfitPercent    float64 // minimum profit % to alert on
	DefaultStake        float64 // default total stake for calculations (GBP)
	ArbSumThreshold     float64 // implied-sum boundary, normally 1.0
	MinHoursBeforeStart float64 // skip events commencing sooner than this
	MaxAlertsPerScan    int

	// Polling
	ScanIntervalSec int
	SportDelaySec   int // flat sleep between sports within a scan

	// Telegram
	TelegramBotToken      string
	TelegramChatID        string // optional fixed broadcast chat
	TelegramPollTimeout   int    // getUpdates long-poll timeout (seconds)
	TelegramSendDelayMsec int    // flat delay between per-chat sends

	// Alerts
	AlertMode    string // comma-separated: log, telegram, smtp
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPTo       []string

	// Reports
	DailyReportHour int // local hour (0-23) the daily summary goes out

	// Metrics/Health
	HealthPort int
}

// UK bookmakers monitored by default.
var defaultBookmakers = []string{
	"bet365", "williamhill", "paddypower", "betfair", "skybet",
	"ladbrokes", "coral", "betvictor", "unibet", "betfred",
	"boylesports", "betway", "virginbet", "spreadex", "livescorebet",
}

// Head-to-head markets scanned by default.
var defaultSports = []string{
	"soccer_epl",
	"soccer_uefa_champs_league",
	"soccer_england_league1",
	"soccer_england_league2",
	"soccer_fa_cup",
	"tennis_atp",
	"tennis_wta",
	"basketball_nba",
	"cricket_test_match",
	"americanfootball_nfl",
	"icehockey_nhl",
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment:           getEnv("ENVIRONMENT", "production"),
		DatabasePath:          getEnv("DATABASE_PATH", "bets.db"),
		OddsAPIBaseURL:        getEnv("ODDS_API_BASE_URL", "https://api.the-odds-api.com/v4"),
		OddsAPIKey:            secrets.GetOptionalSecret("ODDS_API_KEY", ""),
		OddsAPIRegion:         getEnv("ODDS_API_REGION", "uk"),
		OddsAPIOddsRPS:        getEnvFloat("ODDS_API_ODDS_RPS", 1.0),
		OddsAPISportRPS:       getEnvFloat("ODDS_API_SPORTS_RPS", 0.5),
		Bookmakers:            getEnvList("BOOKMAKERS", defaultBookmakers),
		Sports:                getEnvList("SPORTS", defaultSports),
		MinProfitPercent:      getEnvFloat("MIN_PROFIT_PERCENT", 2.0),
		DefaultStake:          getEnvFloat("DEFAULT_STAKE", 1000.0),
		ArbSumThreshold:       getEnvFloat("ARB_SUM_THRESHOLD", 1.0),
		MinHoursBeforeStart:   getEnvFloat("MIN_HOURS_BEFORE_EVENT", 2.0),
		MaxAlertsPerScan:      getEnvInt("MAX_ALERTS_PER_SCAN", 5),
		ScanIntervalSec:       getEnvInt("SCAN_INTERVAL_SEC", 300),
		SportDelaySec:         getEnvInt("SPORT_DELAY_SEC", 1),
		TelegramBotToken:      secrets.GetOptionalSecret("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:        getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramPollTimeout:   getEnvInt("TELEGRAM_POLL_TIMEOUT_SEC", 30),
		TelegramSendDelayMsec: getEnvInt("TELEGRAM_SEND_DELAY_MSEC", 1000),
		AlertMode:             getEnv("ALERT_MODE", "log,telegram"),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              getEnvInt("SMTP_PORT", 587),
		SMTPUser:              getEnv("SMTP_USER", ""),
		SMTPPassword:          secrets.GetOptionalSecret("SMTP_PASSWORD", ""),
		SMTPFrom:              getEnv("SMTP_FROM", "arbwatch@example.com"),
		SMTPTo:                getEnvList("SMTP_TO", nil),
		DailyReportHour:       getEnvInt("DAILY_REPORT_HOUR", 21),
		HealthPort:            getEnvInt("HEALTH_PORT", 8080),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.OddsAPIKey == "" {
		return fmt.Errorf("ODDS_API_KEY is required")
	}

	if c.ArbSumThreshold <= 0 {
		return fmt.Errorf("ARB_SUM_THRESHOLD must be positive, got %f", c.ArbSumThreshold)
	}

	if c.DefaultStake <= 0 {
		return fmt.Errorf("DEFAULT_STAKE must be positive, got %f", c.DefaultStake)
	}

	if c.MinProfitPercent < 0 {
		return fmt.Errorf("MIN_PROFIT_PERCENT must not be negative, got %f", c.MinProfitPercent)
	}

	if len(c.Sports) == 0 {
		return fmt.Errorf("SPORTS must list at least one sport key")
	}

	if len(c.Bookmakers) < 2 {
		return fmt.Errorf("BOOKMAKERS must list at least two bookmakers")
	}

	if c.DailyReportHour < 0 || c.DailyReportHour > 23 {
		return fmt.Errorf("DAILY_REPORT_HOUR must be 0-23, got %d", c.DailyReportHour)
	}

	hasTelegram := false
	hasSMTP := false
	for _, mode := range strings.Split(c.AlertMode, ",") {
		switch strings.TrimSpace(mode) {
		case "log":
		case "telegram":
			hasTelegram = true
		case "smtp":
			hasSMTP = true
		default:
			return fmt.Errorf("invalid ALERT_MODE value: %s (valid values: log, telegram, smtp)", mode)
		}
	}

	if hasTelegram && c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required when telegram is in ALERT_MODE")
	}

	if hasSMTP && (c.SMTPHost == "" || len(c.SMTPTo) == 0) {
		return fmt.Errorf("SMTP_HOST and SMTP_TO are required when smtp is in ALERT_MODE")
	}

	return nil
}

// ScanInterval returns the polling interval as a duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.ScanIntervalSec) * time.Second
}

// SportDelay returns the flat inter-sport sleep as a duration.
func (c *Config) SportDelay() time.Duration {
	return time.Duration(c.SportDelaySec) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
