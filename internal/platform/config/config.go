package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Holds contains hold lifecycle tunables.
type Holds struct {
	CheckoutTTLMinutes      int `toml:"checkout_ttl_minutes"`
	AdminBlockTTLMinutes    int `toml:"admin_block_ttl_minutes"`
	WaitlistOfferTTLMinutes int `toml:"waitlist_offer_ttl_minutes"`
	MaxActivePerSession     int `toml:"max_active_per_session"`
	SweepIntervalSeconds    int `toml:"sweep_interval_seconds"`
	SweepBatchSize          int `toml:"sweep_batch_size"`
}

// Availability contains stock classification thresholds.
type Availability struct {
	LowStockThreshold      int `toml:"low_stock_threshold"`
	CriticalStockThreshold int `toml:"critical_stock_threshold"`
}

// Server contains HTTP listener settings.
type Server struct {
	Addr string `toml:"addr"`
}

// Logging contains log output settings.
type Logging struct {
	Level string `toml:"level"`
}

type Config struct {
	Holds        Holds        `toml:"holds"`
	Availability Availability `toml:"availability"`
	Server       Server       `toml:"server"`
	Logging      Logging      `toml:"logging"`
}

func Default() *Config {
	return &Config{
		Holds: Holds{
			CheckoutTTLMinutes:      15,
			AdminBlockTTLMinutes:    1440,
			WaitlistOfferTTLMinutes: 30,
			MaxActivePerSession:     5,
			SweepIntervalSeconds:    30,
			SweepBatchSize:          100,
		},
		Availability: Availability{
			LowStockThreshold:      10,
			CriticalStockThreshold: 5,
		},
		Server:  Server{Addr: ":8080"},
		Logging: Logging{Level: "info"},
	}
}

// Load reads the TOML config at path on top of defaults, then applies
// environment overrides. A missing file is not an error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	envInt("HOLD_CHECKOUT_TTL_MINUTES", &cfg.Holds.CheckoutTTLMinutes)
	envInt("HOLD_ADMIN_BLOCK_TTL_MINUTES", &cfg.Holds.AdminBlockTTLMinutes)
	envInt("HOLD_WAITLIST_OFFER_TTL_MINUTES", &cfg.Holds.WaitlistOfferTTLMinutes)
	envInt("HOLD_MAX_ACTIVE_PER_SESSION", &cfg.Holds.MaxActivePerSession)
	envInt("SWEEP_INTERVAL_SECONDS", &cfg.Holds.SweepIntervalSeconds)
	envInt("SWEEP_BATCH_SIZE", &cfg.Holds.SweepBatchSize)
	envInt("LOW_STOCK_THRESHOLD", &cfg.Availability.LowStockThreshold)
	envInt("CRITICAL_STOCK_THRESHOLD", &cfg.Availability.CriticalStockThreshold)

	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func envInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func (c *Config) validate() error {
	if c.Holds.CheckoutTTLMinutes <= 0 || c.Holds.AdminBlockTTLMinutes <= 0 || c.Holds.WaitlistOfferTTLMinutes <= 0 {
		return fmt.Errorf("hold TTLs must be positive")
	}
	if c.Holds.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	if c.Holds.SweepBatchSize <= 0 {
		return fmt.Errorf("sweep batch size must be positive")
	}
	if c.Availability.CriticalStockThreshold > c.Availability.LowStockThreshold {
		return fmt.Errorf("critical stock threshold must not exceed low stock threshold")
	}
	return nil
}

// SampleConfig returns the embedded annotated sample file.
func SampleConfig() string {
	return sampleConfig
}

// HoldTTL returns the configured TTL for a hold type.
func (c *Config) HoldTTL(t string) time.Duration {
	switch t {
	case "admin-block":
		return time.Duration(c.Holds.AdminBlockTTLMinutes) * time.Minute
	case "waitlist-offer":
		return time.Duration(c.Holds.WaitlistOfferTTLMinutes) * time.Minute
	default:
		return time.Duration(c.Holds.CheckoutTTLMinutes) * time.Minute
	}
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Holds.SweepIntervalSeconds) * time.Second
}
