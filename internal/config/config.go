package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/robfig/cron/v3"
)

type Config struct {
	LeadFilePath      string   `env:"LEAD_FILE_PATH,default=csv/leads.csv"`
	DatabasePath      string   `env:"DATABASE_PATH,default=db/leads.db"`
	APIEndpoints      []string `env:"API_ENDPOINTS,required=true"`
	CountryCode       string   `env:"COUNTRY_CODE,default=55"`
	MaxSendDelayMS    int      `env:"MAX_SEND_DELAY_MS,default=200000"`
	HoursMonitorSpec  string   `env:"HOURS_MONITOR_SPEC,default=*/5 * * * *"`
	Timezone          string   `env:"TIMEZONE,default=Local"`
	OpsPort           int      `env:"OPS_PORT,default=8080"`
	LogLevel          string   `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.APIEndpoints) == 0 {
		return fmt.Errorf("at least one API endpoint is required")
	}
	if c.MaxSendDelayMS <= 0 {
		return fmt.Errorf("max send delay must be positive, got %d", c.MaxSendDelayMS)
	}
	if _, err := cron.ParseStandard(c.HoursMonitorSpec); err != nil {
		return fmt.Errorf("invalid hours monitor spec %q: %w", c.HoursMonitorSpec, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// MaxSendDelay returns the inter-send pacing ceiling as a duration.
func (c *Config) MaxSendDelay() time.Duration {
	return time.Duration(c.MaxSendDelayMS) * time.Millisecond
}

// Location resolves the configured timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
