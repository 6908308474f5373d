package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		OddsAPIKey:       "test-key",
		ArbSumThreshold:  1.0,
		DefaultStake:     1000,
		MinProfitPercent: 2.0,
		Sports:           []string{"soccer_epl"},
		Bookmakers:       []string{"bet365", "williamhill"},
		AlertMode:        "log",
		DailyReportHour:  21,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing api key", func(c *Config) { c.OddsAPIKey = "" }, "ODDS_API_KEY"},
		{"zero threshold", func(c *Config) { c.ArbSumThreshold = 0 }, "ARB_SUM_THRESHOLD"},
		{"zero stake", func(c *Config) { c.DefaultStake = 0 }, "DEFAULT_STAKE"},
		{"negative min profit", func(c *Config) { c.MinProfitPercent = -1 }, "MIN_PROFIT_PERCENT"},
		{"no sports", func(c *Config) { c.Sports = nil }, "SPORTS"},
		{"one bookmaker", func(c *Config) { c.Bookmakers = []string{"bet365"} }, "BOOKMAKERS"},
		{"bad alert mode", func(c *Config) { c.AlertMode = "carrier-pigeon" }, "ALERT_MODE"},
		{"telegram without token", func(c *Config) { c.AlertMode = "telegram" }, "TELEGRAM_BOT_TOKEN"},
		{"smtp without host", func(c *Config) { c.AlertMode = "smtp" }, "SMTP_HOST"},
		{"bad report hour", func(c *Config) { c.DailyReportHour = 24 }, "DAILY_REPORT_HOUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate returned unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "test-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.MinProfitPercent != 2.0 {
		t.Errorf("MinProfitPercent = %f, want 2.0", cfg.MinProfitPercent)
	}
	if cfg.ArbSumThreshold != 1.0 {
		t.Errorf("ArbSumThreshold = %f, want 1.0", cfg.ArbSumThreshold)
	}
	if cfg.ScanIntervalSec != 300 {
		t.Errorf("ScanIntervalSec = %d, want 300", cfg.ScanIntervalSec)
	}
	if len(cfg.Bookmakers) != 15 {
		t.Errorf("got %d default bookmakers, want 15", len(cfg.Bookmakers))
	}
	if cfg.AlertMode != "log,telegram" {
		t.Errorf("AlertMode = %s, want log,telegram", cfg.AlertMode)
	}
}

func TestLoadTelegramRequiresToken(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "test-key")
	t.Setenv("ALERT_MODE", "telegram")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail when telegram mode is set without a token")
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	if _, err := Load(); err != nil {
		t.Fatalf("Load returned error with token set: %v", err)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("SPORTS", " soccer_epl, tennis_atp ,,basketball_nba ")

	got := getEnvList("SPORTS", nil)
	want := []string{"soccer_epl", "tennis_atp", "basketball_nba"}
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
}
