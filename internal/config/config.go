package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API        *APIConfig        `mapstructure:"api"`
	Gin        *GinConfig        `mapstructure:"gin"`
	Postgres   *PostgresConfig   `mapstructure:"postgres"`
	Stripe     *StripeConfig     `mapstructure:"stripe"`
	Allocation *AllocationConfig `mapstructure:"allocation"`
	Sweeper    *SweeperConfig    `mapstructure:"sweeper"`
	Winners    *WinnersConfig    `mapstructure:"winners"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type StripeConfig struct {
	Key      string `mapstructure:"key"`
	Currency string `mapstructure:"currency"`
}

type AllocationConfig struct {
	// ReservationTTL has no default: overselling exposure under client
	// failures is bounded by this value, so it must be an explicit
	// operational decision.
	ReservationTTL time.Duration `mapstructure:"reservation_ttl"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
}

type SweeperConfig struct {
	Schedule string `mapstructure:"schedule"`
}

type WinnersConfig struct {
	ClaimWindow    time.Duration `mapstructure:"claim_window"`
	ExpirySchedule string        `mapstructure:"expiry_schedule"`
}

func Load(configFile string) (*AppConfig, error) {
	viper.SetConfigFile(configFile)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := viper.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Info("config file changed", zap.String("file", e.Name))
	})

	return conf, nil
}

func (c *AppConfig) validate() error {
	if c.Allocation == nil || c.Allocation.ReservationTTL <= 0 {
		return errors.New("allocation.reservation_ttl is required")
	}
	if c.Sweeper == nil || c.Sweeper.Schedule == "" {
		return errors.New("sweeper.schedule is required")
	}

	return nil
}
