package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Pair      string        `mapstructure:"pair"`
	Exchange  string        `mapstructure:"exchange"`
	Strategy  string        `mapstructure:"strategy"`
	Interval  time.Duration `mapstructure:"interval"`
	Timeframe string        `mapstructure:"timeframe"`

	FastWindow int `mapstructure:"fast_window"`
	SlowWindow int `mapstructure:"slow_window"`

	BaseRisk        float64 `mapstructure:"base_risk"`
	AdaptiveRisk    float64 `mapstructure:"adaptive_risk"`
	MinTrade        float64 `mapstructure:"min_trade"`
	MaxTrade        float64 `mapstructure:"max_trade"`
	MakerFee        float64 `mapstructure:"maker_fee"`
	TakerFee        float64 `mapstructure:"taker_fee"`
	ExpectedMargin  float64 `mapstructure:"expected_margin"`
	StartingBalance float64 `mapstructure:"starting_balance"`

	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	IdleThreshold     time.Duration `mapstructure:"idle_threshold"`
	RestartHour       int           `mapstructure:"restart_hour"`
	RestartWindow     time.Duration `mapstructure:"restart_window"`
	SummaryHour       int           `mapstructure:"summary_hour"`
	SummaryMinute     int           `mapstructure:"summary_minute"`
	UTCOffsetHours    int           `mapstructure:"utc_offset_hours"`

	ErrorBackoff     time.Duration `mapstructure:"error_backoff"`
	RateLimitBackoff time.Duration `mapstructure:"rate_limit_backoff"`

	LedgerPath     string `mapstructure:"ledger_path"`
	CheckpointPath string `mapstructure:"checkpoint_path"`
	DecisionsPath  string `mapstructure:"decisions_path"`
	MetricsAddr    string `mapstructure:"metrics_addr"`

	// Credentials come from the environment only, never the config file.
	APIKey     string `mapstructure:"-"`
	APISecret  string `mapstructure:"-"`
	WebhookURL string `mapstructure:"-"`
}

// Load reads the optional config file, applies defaults, and pulls
// credentials from the environment (a .env file is honored if present).
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.APIKey = os.Getenv("BITSO_API_KEY")
	cfg.APISecret = os.Getenv("BITSO_API_SECRET")
	cfg.WebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pair", "BTC/MXN")
	v.SetDefault("exchange", "bitso")
	v.SetDefault("strategy", "crossover")
	v.SetDefault("interval", "30s")
	v.SetDefault("timeframe", "1m")
	v.SetDefault("fast_window", 5)
	v.SetDefault("slow_window", 20)
	v.SetDefault("base_risk", 0.25)
	v.SetDefault("adaptive_risk", 0.15)
	v.SetDefault("min_trade", 10.0)
	v.SetDefault("max_trade", 100.0)
	v.SetDefault("maker_fee", 0.001)
	v.SetDefault("taker_fee", 0.003)
	v.SetDefault("expected_margin", 0.01)
	v.SetDefault("starting_balance", 1000.0)
	v.SetDefault("heartbeat_interval", "1h")
	v.SetDefault("idle_threshold", "2h")
	v.SetDefault("restart_hour", 4)
	v.SetDefault("restart_window", "5m")
	v.SetDefault("summary_hour", 21)
	v.SetDefault("summary_minute", 30)
	v.SetDefault("utc_offset_hours", -6)
	v.SetDefault("error_backoff", "10s")
	v.SetDefault("rate_limit_backoff", "60s")
	v.SetDefault("ledger_path", "bitso_trades.db")
	v.SetDefault("checkpoint_path", "checkpoint.json")
	v.SetDefault("decisions_path", "decisions.ndjson")
	v.SetDefault("metrics_addr", ":9090")
}

func validate(cfg Config) error {
	if cfg.Exchange != "bitso" && cfg.Exchange != "sim" {
		return fmt.Errorf("invalid exchange: %s", cfg.Exchange)
	}
	if cfg.Exchange == "bitso" && (cfg.APIKey == "" || cfg.APISecret == "") {
		return fmt.Errorf("BITSO_API_KEY and BITSO_API_SECRET are required for the bitso exchange")
	}
	if cfg.Strategy != "crossover" && cfg.Strategy != "alternator" {
		return fmt.Errorf("invalid strategy: %s", cfg.Strategy)
	}
	if cfg.Pair == "" {
		return fmt.Errorf("pair must be set")
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be > 0")
	}
	if cfg.FastWindow <= 0 {
		return fmt.Errorf("fast_window must be > 0")
	}
	if cfg.SlowWindow <= cfg.FastWindow {
		return fmt.Errorf("slow_window must be > fast_window")
	}
	if cfg.BaseRisk <= 0 || cfg.BaseRisk > 1 {
		return fmt.Errorf("base_risk must be in (0, 1]")
	}
	if cfg.AdaptiveRisk <= 0 || cfg.AdaptiveRisk > cfg.BaseRisk {
		return fmt.Errorf("adaptive_risk must be in (0, base_risk]")
	}
	if cfg.MinTrade < 0 || cfg.MaxTrade <= 0 || cfg.MaxTrade < cfg.MinTrade {
		return fmt.Errorf("trade bounds must satisfy 0 <= min_trade <= max_trade")
	}
	if cfg.MakerFee < 0 || cfg.TakerFee < 0 {
		return fmt.Errorf("fee rates must be >= 0")
	}
	if cfg.ExpectedMargin <= 0 {
		return fmt.Errorf("expected_margin must be > 0")
	}
	if cfg.StartingBalance <= 0 {
		return fmt.Errorf("starting_balance must be > 0")
	}
	if cfg.RestartHour < 0 || cfg.RestartHour > 23 {
		return fmt.Errorf("restart_hour must be in [0, 23]")
	}
	if cfg.SummaryHour < 0 || cfg.SummaryHour > 23 || cfg.SummaryMinute < 0 || cfg.SummaryMinute > 59 {
		return fmt.Errorf("summary time must be a valid hour and minute")
	}
	if cfg.UTCOffsetHours < -12 || cfg.UTCOffsetHours > 14 {
		return fmt.Errorf("utc_offset_hours must be in [-12, 14]")
	}
	if cfg.RestartWindow <= 0 {
		return fmt.Errorf("restart_window must be > 0")
	}
	return nil
}

// Zone is the fixed-offset clock all daily triggers are evaluated against.
func (c Config) Zone() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.UTCOffsetHours), c.UTCOffsetHours*3600)
}
