package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Pair:            "BTC/MXN",
		Exchange:        "sim",
		Strategy:        "crossover",
		Interval:        30 * time.Second,
		FastWindow:      5,
		SlowWindow:      20,
		BaseRisk:        0.25,
		AdaptiveRisk:    0.15,
		MinTrade:        10,
		MaxTrade:        100,
		TakerFee:        0.003,
		ExpectedMargin:  0.01,
		StartingBalance: 1000,
		RestartHour:     4,
		RestartWindow:   5 * time.Minute,
		SummaryHour:     21,
		SummaryMinute:   30,
		UTCOffsetHours:  -6,
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := validate(validConfig()); err != nil {
		t.Fatalf("expected config to be valid, got %v", err)
	}
}

func TestValidateRejectsMissingBitsoCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Exchange = "bitso"
	cfg.APIKey = ""
	cfg.APISecret = ""

	if err := validate(cfg); err == nil {
		t.Fatalf("expected missing credentials to be fatal")
	}
}

func TestValidateRejectsInvertedWindows(t *testing.T) {
	cfg := validConfig()
	cfg.FastWindow = 20
	cfg.SlowWindow = 5

	if err := validate(cfg); err == nil {
		t.Fatalf("expected window validation error")
	}
}

func TestValidateRejectsAdaptiveRiskAboveBase(t *testing.T) {
	cfg := validConfig()
	cfg.AdaptiveRisk = 0.5

	if err := validate(cfg); err == nil {
		t.Fatalf("expected risk validation error")
	}
}

func TestLoadReadsFileAndEnvCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	contents := `{
  "pair": "ETH/MXN",
  "exchange": "bitso",
  "interval": "45s",
  "summary_hour": 23
}`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BITSO_API_KEY", "key")
	t.Setenv("BITSO_API_SECRET", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Pair != "ETH/MXN" {
		t.Fatalf("expected pair from file, got %q", cfg.Pair)
	}
	if cfg.Interval != 45*time.Second {
		t.Fatalf("expected interval from file, got %v", cfg.Interval)
	}
	if cfg.SummaryHour != 23 {
		t.Fatalf("expected summary hour from file, got %d", cfg.SummaryHour)
	}
	if cfg.SlowWindow != 20 {
		t.Fatalf("expected default slow window, got %d", cfg.SlowWindow)
	}
	if cfg.APIKey != "key" || cfg.APISecret != "secret" {
		t.Fatalf("expected credentials from env")
	}
}

func TestZoneUsesFixedOffset(t *testing.T) {
	cfg := validConfig()
	zone := cfg.Zone()

	at := time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC).In(zone)
	if at.Hour() != 21 || at.Day() != 1 {
		t.Fatalf("expected 21:00 on May 1 in UTC-6, got %v", at)
	}
}
