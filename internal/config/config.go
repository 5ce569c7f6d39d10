package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Supported storage drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	// Storage settings
	DBDriver           string `envconfig:"DB_DRIVER" default:"postgres"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING"`
	DBConnectionSecret string `envconfig:"DB_CONNECTION_SECRET"`
	SQLitePath         string `envconfig:"SQLITE_PATH" default:"tutorials.db"`

	// Google Cloud settings
	GCPProjectID        string `envconfig:"GCP_PROJECT_ID"`
	PubSubTutorialTopic string `envconfig:"PUBSUB_TUTORIAL_TOPIC" default:"tutorial-events"`
	GoogleCredentials   string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS_FILE"`

	// Local development only
	PubSubEmulatorHost         string `envconfig:"PUBSUB_EMULATOR_HOST"`
	PubSubTutorialSubscription string `envconfig:"PUBSUB_TUTORIAL_SUBSCRIPTION" default:"tutorial-events-sub"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

func Load() (*Config, error) {
	cfg, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv reads the environment without Validate. Tools that never open the
// store use it.
func LoadEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings envconfig cannot express with struct tags.
func (c *Config) Validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverPostgres:
		if c.DBConnectionString == "" && c.DBConnectionSecret == "" {
			return fmt.Errorf("postgres driver requires DB_CONNECTION_STRING or DB_CONNECTION_SECRET")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite driver requires SQLITE_PATH")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// EventsEnabled reports whether tutorial change events should be published.
func (c *Config) EventsEnabled() bool {
	return c.GCPProjectID != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
