package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TTL       time.Duration `yaml:"ttl"`
}

// RenewalPolicy decides what a successful payment does to an unexpired term.
type RenewalPolicy string

const (
	// RenewalReset starts a fresh term from the moment of verification. This
	// is the behavior the mobile client has always seen.
	RenewalReset RenewalPolicy = "reset"
	// RenewalExtend stacks the new term on top of any remaining one.
	RenewalExtend RenewalPolicy = "extend"
)

type PlanConfig struct {
	Price        int64 `yaml:"price"` // minor currency units
	DurationDays int   `yaml:"duration_days"`
}

type PaymentConfig struct {
	KeyID          string        `yaml:"key_id"`
	KeySecret      string        `yaml:"key_secret"`
	Currency       string        `yaml:"currency"`
	Environment    string        `yaml:"environment"` // production|staging|development
	RenewalPolicy  RenewalPolicy `yaml:"renewal_policy"`
	BridgeTimeout  time.Duration `yaml:"bridge_timeout"`
	MonthlyPremium PlanConfig    `yaml:"monthly_premium"`
	YearlyPremium  PlanConfig    `yaml:"yearly_premium"`
}

// Production reports whether the simulated purchase path must be refused.
func (p PaymentConfig) Production() bool { return p.Environment == "production" }

type Config struct {
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Payment  PaymentConfig  `yaml:"payment"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Auth.TTL <= 0 {
		cfg.Auth.TTL = 24 * time.Hour
	}
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "INR"
	}
	if cfg.Payment.Environment == "" {
		cfg.Payment.Environment = "development"
	}
	if cfg.Payment.RenewalPolicy == "" {
		cfg.Payment.RenewalPolicy = RenewalReset
	}
	if cfg.Payment.BridgeTimeout <= 0 {
		cfg.Payment.BridgeTimeout = 10 * time.Second
	}
	if cfg.Payment.MonthlyPremium.Price == 0 {
		cfg.Payment.MonthlyPremium = PlanConfig{Price: 9900, DurationDays: 30}
	}
	if cfg.Payment.MonthlyPremium.DurationDays == 0 {
		cfg.Payment.MonthlyPremium.DurationDays = 30
	}
	if cfg.Payment.YearlyPremium.Price == 0 {
		cfg.Payment.YearlyPremium = PlanConfig{Price: 99900, DurationDays: 365}
	}
	if cfg.Payment.YearlyPremium.DurationDays == 0 {
		cfg.Payment.YearlyPremium.DurationDays = 365
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	switch cfg.Payment.RenewalPolicy {
	case RenewalReset, RenewalExtend:
	default:
		return nil, fmt.Errorf("payment.renewal_policy must be reset or extend, got %q", cfg.Payment.RenewalPolicy)
	}
	if cfg.Payment.Production() && cfg.Payment.KeySecret == "" {
		return nil, errors.New("payment.key_secret is required in production")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
