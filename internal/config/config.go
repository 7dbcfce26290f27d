package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"PriceForecaster/internal/model"
	"PriceForecaster/internal/predictor"
	"PriceForecaster/internal/window"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Input struct {
		Path         string `yaml:"path"`
		Start        string `yaml:"start"` // YYYY-MM-DD, empty = earliest
		End          string `yaml:"end"`   // YYYY-MM-DD, empty = latest
		SingleTicker string `yaml:"single_ticker"`
	} `yaml:"input"`
	Indicators model.IndicatorConfig `yaml:"indicators"`
	Forecast   struct {
		Enabled   bool `yaml:"enabled"`
		SeqLength int  `yaml:"seq_length"`
	} `yaml:"forecast"`
	Models struct {
		Artifacts  map[string]string `yaml:"artifacts"` // ticker -> artifact path
		Default    string            `yaml:"default"`
		SQLitePath string            `yaml:"sqlite_path"`
	} `yaml:"models"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	cfg := &Config{}
	cfg.Indicators = model.DefaultIndicatorConfig()
	cfg.Forecast.Enabled = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("INPUT_PATH"); v != "" {
		cfg.Input.Path = v
	}
	if v := os.Getenv("INPUT_START"); v != "" {
		cfg.Input.Start = v
	}
	if v := os.Getenv("INPUT_END"); v != "" {
		cfg.Input.End = v
	}
	if v := os.Getenv("SEQ_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Forecast.SeqLength = n
		}
	}
	if v := os.Getenv("FORECAST_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Forecast.Enabled = b
		}
	}
	if v := os.Getenv("MODEL_DEFAULT"); v != "" {
		cfg.Models.Default = v
	}
	if v := os.Getenv("MODEL_SQLITE_PATH"); v != "" {
		cfg.Models.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Input.Path == "" {
		cfg.Input.Path = "data/portfolio_data.csv"
	}
	if cfg.Forecast.SeqLength == 0 {
		cfg.Forecast.SeqLength = 60
	}
	cfg.Indicators = cfg.Indicators.WithDefaults()

	return cfg, nil
}

// Validate checks field consistency. Model paths are checked later, when the registry is built.
func (c *Config) Validate() error {
	if c.Input.Path == "" {
		return fmt.Errorf("input.path is required")
	}
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("input.end %s is before input.start %s", c.Input.End, c.Input.Start)
	}
	if c.Forecast.SeqLength <= 0 || c.Forecast.SeqLength > window.MaxSeqLength {
		return fmt.Errorf("forecast.seq_length must be in [1, %d]", window.MaxSeqLength)
	}
	ind := c.Indicators
	for name, p := range map[string]int{
		"sma_period": ind.SMAPeriod, "ema_period": ind.EMAPeriod, "rsi_period": ind.RSIPeriod,
		"macd_fast": ind.MACDFast, "macd_slow": ind.MACDSlow, "macd_signal": ind.MACDSignal,
	} {
		if p <= 0 {
			return fmt.Errorf("indicators.%s must be positive", name)
		}
	}
	if ind.MACDFast >= ind.MACDSlow {
		return fmt.Errorf("indicators.macd_fast must be below indicators.macd_slow")
	}
	if c.Forecast.Enabled {
		if len(c.Models.Artifacts) == 0 && c.Models.Default == "" && c.Models.SQLitePath == "" {
			return fmt.Errorf("forecast enabled but no models configured (models.artifacts, models.default or models.sqlite_path)")
		}
		for ticker := range c.Models.Artifacts {
			if err := predictor.ValidateTicker(ticker); err != nil {
				return fmt.Errorf("models.artifacts: %w", err)
			}
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// DateRange parses input.start and input.end; empty values come back as zero times.
func (c *Config) DateRange() (start, end time.Time, err error) {
	if c.Input.Start != "" {
		if start, err = time.Parse("2006-01-02", c.Input.Start); err != nil {
			return start, end, fmt.Errorf("input.start: %w", err)
		}
	}
	if c.Input.End != "" {
		if end, err = time.Parse("2006-01-02", c.Input.End); err != nil {
			return start, end, fmt.Errorf("input.end: %w", err)
		}
	}
	return start, end, nil
}

// RegistryConfig returns the model registry settings.
func (c *Config) RegistryConfig() predictor.RegistryConfig {
	return predictor.RegistryConfig{
		Artifacts:  c.Models.Artifacts,
		Default:    c.Models.Default,
		SQLitePath: c.Models.SQLitePath,
	}
}
