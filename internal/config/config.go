package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Provider struct {
		Name      string        `yaml:"name" validate:"oneof=yahoo rest mock"`
		BaseURL   string        `yaml:"base_url" validate:"required_if=Name rest"`
		APIKey    string        `yaml:"api_key"`
		Proxy     string        `yaml:"proxy" validate:"omitempty,url"`
		Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
		RateLimit float64       `yaml:"rate_limit" validate:"gte=0"`
	} `yaml:"provider"`
	Cache struct {
		Driver       string        `yaml:"driver" validate:"oneof=sqlite postgres memory"`
		SQLitePath   string        `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
		PostgresDSN  string        `yaml:"postgres_dsn" validate:"required_if=Driver postgres"`
		TTL          time.Duration `yaml:"ttl" validate:"gt=0"`
		Retention    time.Duration `yaml:"retention" validate:"gte=0"`
		EvictionCron string        `yaml:"eviction_cron"`
	} `yaml:"cache"`
	Scoring struct {
		Profile        string  `yaml:"profile" validate:"oneof=basic extended"`
		MissingDefault float64 `yaml:"missing_default" validate:"gte=0,lte=100"`
	} `yaml:"scoring"`
	Risk struct {
		Benchmark    string  `yaml:"benchmark"`
		RiskFreeRate float64 `yaml:"risk_free_rate" validate:"gte=0,lt=1"`
		TradingDays  int     `yaml:"trading_days" validate:"gt=0"`
	} `yaml:"risk"`
	Server struct {
		Addr string `yaml:"addr" validate:"required"`
	} `yaml:"server"`
	Schedule struct {
		RefreshCron   string   `yaml:"refresh_cron"`
		Watchlist     []string `yaml:"watchlist"`
		RefreshPeriod string   `yaml:"refresh_period" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y max"`
	} `yaml:"schedule"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=console json"`
	} `yaml:"log"`

	// explicit records numeric keys present in the file or environment, so an
	// explicit 0 survives applyDefaults.
	explicit map[string]bool
}

const (
	keyRateLimit      = "provider.rate_limit"
	keyMissingDefault = "scoring.missing_default"
	keyRiskFreeRate   = "risk.risk_free_rate"
)

func (c *Config) markExplicit(key string) {
	if c.explicit == nil {
		c.explicit = make(map[string]bool)
	}
	c.explicit[key] = true
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		var probe struct {
			Provider map[string]interface{} `yaml:"provider"`
			Scoring  map[string]interface{} `yaml:"scoring"`
			Risk     map[string]interface{} `yaml:"risk"`
		}
		if err := yaml.Unmarshal(data, &probe); err == nil {
			if _, ok := probe.Provider["rate_limit"]; ok {
				cfg.markExplicit(keyRateLimit)
			}
			if _, ok := probe.Scoring["missing_default"]; ok {
				cfg.markExplicit(keyMissingDefault)
			}
			if _, ok := probe.Risk["risk_free_rate"]; ok {
				cfg.markExplicit(keyRiskFreeRate)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PROVIDER"); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("PROVIDER_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Provider.Proxy = v
	}
	if v := os.Getenv("CACHE_DRIVER"); v != "" {
		c.Cache.Driver = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Cache.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Cache.PostgresDSN = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Cache.TTL = d
	}
	if v := os.Getenv("SCORING_PROFILE"); v != "" {
		c.Scoring.Profile = v
	}
	if v := os.Getenv("SCORING_MISSING_DEFAULT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SCORING_MISSING_DEFAULT: %w", err)
		}
		c.Scoring.MissingDefault = f
		c.markExplicit(keyMissingDefault)
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Schedule.Watchlist = splitList(v)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Provider.Name == "" {
		c.Provider.Name = "yahoo"
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 15 * time.Second
	}
	if !c.explicit[keyRateLimit] {
		c.Provider.RateLimit = 5
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "sqlite"
	}
	if c.Cache.SQLitePath == "" {
		c.Cache.SQLitePath = "data/marketlens.db"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Cache.EvictionCron == "" {
		c.Cache.EvictionCron = "0 30 3 * * *"
	}
	if c.Scoring.Profile == "" {
		c.Scoring.Profile = "basic"
	}
	if !c.explicit[keyMissingDefault] {
		c.Scoring.MissingDefault = 50
	}
	if c.Risk.Benchmark == "" {
		c.Risk.Benchmark = "^GSPC"
	}
	if !c.explicit[keyRiskFreeRate] {
		c.Risk.RiskFreeRate = 0.02
	}
	if c.Risk.TradingDays == 0 {
		c.Risk.TradingDays = 252
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 22 * * 1-5"
	}
	if c.Schedule.RefreshPeriod == "" {
		c.Schedule.RefreshPeriod = "1y"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	for i, s := range c.Schedule.Watchlist {
		c.Schedule.Watchlist[i] = strings.ToUpper(strings.TrimSpace(s))
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
