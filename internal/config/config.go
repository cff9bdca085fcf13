// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds all configuration values for the server.
type Config struct {
	AppPort      string // Listen address, e.g. ":8080"
	PublicOrigin string // Origin used to build share URLs

	StoreDriver      string
	DatabaseDSN      string // sqlite path or postgres DSN
	MongoURI         string
	MongoDatabase    string
	DatastoreTimeout time.Duration

	RabbitMQURL          string // Empty disables store events
	ConsumeStoreEvents   bool   // Log store events from the queue in-process
	RejectSlugCollisions bool

	LogLevel  string
	LogFormat string // text or json
	LogFile   string // Optional rotating log file
}

// SetDefaults registers the default of every optional key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("PUBLIC_ORIGIN", "http://localhost:8080")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("DATASTORE_TIMEOUT", "10s")
	v.SetDefault("REJECT_SLUG_COLLISIONS", false)
	v.SetDefault("CONSUME_STORE_EVENTS", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// New returns a viper instance reading the process environment with defaults.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

// Load reads a Config from v. It returns an error naming every required key
// that is missing for the selected store driver.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:              v.GetString("APP_PORT"),
		PublicOrigin:         strings.TrimRight(v.GetString("PUBLIC_ORIGIN"), "/"),
		StoreDriver:          strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		MongoURI:             v.GetString("MONGODB_URI"),
		MongoDatabase:        v.GetString("MONGODB_DATABASE"),
		DatastoreTimeout:     v.GetDuration("DATASTORE_TIMEOUT"),
		RabbitMQURL:          v.GetString("RABBITMQ_URL"),
		ConsumeStoreEvents:   v.GetBool("CONSUME_STORE_EVENTS"),
		RejectSlugCollisions: v.GetBool("REJECT_SLUG_COLLISIONS"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            v.GetString("LOG_FORMAT"),
		LogFile:              v.GetString("LOG_FILE"),
	}

	var missing []string
	require := func(key, value string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	switch cfg.StoreDriver {
	case DriverSQLite:
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = "microstore.db"
		}
	case DriverPostgres:
		require("DATABASE_DSN", cfg.DatabaseDSN)
	case DriverMongo:
		require("MONGODB_URI", cfg.MongoURI)
		require("MONGODB_DATABASE", cfg.MongoDatabase)
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q (want %s, %s, %s or %s)",
			cfg.StoreDriver, DriverSQLite, DriverPostgres, DriverMongo, DriverMemory)
	}
	require("PUBLIC_ORIGIN", cfg.PublicOrigin)

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required configuration not set: %s", strings.Join(missing, ", "))
	}
	if cfg.DatastoreTimeout < 0 {
		return Config{}, fmt.Errorf("DATASTORE_TIMEOUT must not be negative")
	}
	return cfg, nil
}
