package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Supported values of DB_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the process configuration.
type Config struct {
	AppPort      string
	DBDriver     string
	DatabaseDSN  string
	RabbitMQURL  string
	AuthEnabled  bool
	JWTSecret    string
	SeedProducts bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverMemory)
	v.SetDefault("DATABASE_DSN", "catalog.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("SEED_PRODUCTS", false)
}

// Load reads the configuration from v, falling back to the defaults for unset keys.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:      v.GetString("APP_PORT"),
		DBDriver:     strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseDSN:  v.GetString("DATABASE_DSN"),
		RabbitMQURL:  v.GetString("RABBITMQ_URL"),
		AuthEnabled:  v.GetBool("AUTH_ENABLED"),
		JWTSecret:    v.GetString("JWT_SECRET"),
		SeedProducts: v.GetBool("SEED_PRODUCTS"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for DB_DRIVER=%s", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s, %s or %s)", c.DBDriver, DriverMemory, DriverSQLite, DriverPostgres)
	}

	if c.AuthEnabled && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is set")
	}
	return nil
}
