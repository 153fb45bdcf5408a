package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Startup failure policies.
const (
	PolicyContinue = "continue"
	PolicyAbort    = "abort"
)

// Environments that allow destructive development resets.
const (
	EnvLocal = "local"
	EnvDev   = "development"
	EnvProd  = "production"
)

// MaxStartupConcurrency bounds how many initializer tasks may run at once.
const MaxStartupConcurrency = 4

// configFileEnv names the environment variable pointing at an optional YAML config file.
const configFileEnv = "PROXIMITY_CONFIG"

// ErrInvalidConfig is returned when loaded values fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the configuration settings for the proximity service.
type Config struct {
	Env        string           `mapstructure:"env"`        // Env is the current environment: local, development, production.
	HTTP       HTTPConfig       `mapstructure:"http"`       // HTTP configures the public API server.
	Monitoring MonitoringConfig `mapstructure:"monitoring"` // Monitoring configures the health and metrics server.
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   PostgresConfig   `mapstructure:"database"` // Database holds the postgres database configuration.
	Startup    StartupConfig    `mapstructure:"startup"`
	Geocoder   GeocoderConfig   `mapstructure:"geocoder"`
}

// HTTPConfig configures the public API server.
type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MonitoringConfig configures the server exposing /healthz and /metrics.
type MonitoringConfig struct {
	Port int `mapstructure:"port"`
}

// StorageConfig selects the business storage backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // Driver is either postgres or memory.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host         string `mapstructure:"host"`           // Host is the database server address.
	Port         string `mapstructure:"port"`           // Port is the database server port.
	User         string `mapstructure:"user"`           // User is the database user.
	Password     string `mapstructure:"password"`       // Password is the database user's password.
	Name         string `mapstructure:"name"`           // Name is the name of the database.
	SSLMode      string `mapstructure:"sslmode"`        // SSLMode is passed to the driver as is.
	MaxConns     int    `mapstructure:"max_conns"`      // MaxConns caps the connection pool size.
	SeedData     bool   `mapstructure:"seed_data"`      // SeedData enables loading SeedFile at startup.
	SeedFile     string `mapstructure:"seed_file"`      // SeedFile is a JSON array of businesses.
	ResetOnStart bool   `mapstructure:"reset_on_start"` // ResetOnStart drops the businesses table in local and development.
}

// StartupConfig controls the initializer pipeline.
type StartupConfig struct {
	Concurrency     int    `mapstructure:"concurrency"`
	FailurePolicy   string `mapstructure:"failure_policy"`
	BlockUntilReady bool   `mapstructure:"block_until_ready"`
	IndexRetries    int    `mapstructure:"index_retries"`
}

// GeocoderConfig configures the optional address geocoder used when a business is created without coordinates.
type GeocoderConfig struct {
	Provider  string `mapstructure:"provider"` // Provider is empty (disabled), google or nominatim.
	APIKey    string `mapstructure:"api_key"`
	RateLimit int    `mapstructure:"rate_limit"` // RateLimit is in requests per second.
}

// ResetAllowed reports whether a development reset may run in the configured environment.
func (c *Config) ResetAllowed() bool {
	return c.Database.ResetOnStart && (c.Env == EnvLocal || c.Env == EnvDev)
}

// Load reads the configuration from defaults, an optional YAML file and the environment.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PROXIMITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"database.host":     "DB_HOST",
		"database.port":     "DB_PORT",
		"database.user":     "DB_USERNAME",
		"database.password": "DB_PASSWORD",
		"database.name":     "DB_NAME",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path, ok := os.LookupEnv(configFileEnv); ok && path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad loads the configuration and panics if it cannot be loaded or is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvProd)

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)

	v.SetDefault("monitoring.port", 9090)

	v.SetDefault("storage.driver", DriverPostgres)

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.seed_data", false)
	v.SetDefault("database.seed_file", "")
	v.SetDefault("database.reset_on_start", false)

	v.SetDefault("startup.concurrency", MaxStartupConcurrency)
	v.SetDefault("startup.failure_policy", PolicyContinue)
	v.SetDefault("startup.block_until_ready", false)
	v.SetDefault("startup.index_retries", 3)

	v.SetDefault("geocoder.provider", "")
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("geocoder.rate_limit", 1)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(validPort(c.HTTP.Port), "http.port %d is out of range", c.HTTP.Port)
	check(validPort(c.Monitoring.Port), "monitoring.port %d is out of range", c.Monitoring.Port)
	check(c.HTTP.Port != c.Monitoring.Port, "http.port and monitoring.port must differ")
	check(slices.Contains([]string{DriverPostgres, DriverMemory}, c.Storage.Driver),
		"storage.driver %q must be postgres or memory", c.Storage.Driver)
	if c.Storage.Driver == DriverPostgres {
		check(c.Database.Host != "", "database.host is required")
		check(c.Database.Name != "", "database.name is required")
		check(c.Database.MaxConns > 0, "database.max_conns must be positive")
	}
	check(!c.Database.SeedData || c.Database.SeedFile != "", "database.seed_file is required when seed_data is set")
	check(c.Startup.Concurrency > 0 && c.Startup.Concurrency <= MaxStartupConcurrency,
		"startup.concurrency must be between 1 and %d", MaxStartupConcurrency)
	check(slices.Contains([]string{PolicyContinue, PolicyAbort}, c.Startup.FailurePolicy),
		"startup.failure_policy %q must be continue or abort", c.Startup.FailurePolicy)
	check(c.Startup.IndexRetries > 0, "startup.index_retries must be positive")
	check(slices.Contains([]string{"", "google", "nominatim"}, c.Geocoder.Provider),
		"geocoder.provider %q is not supported", c.Geocoder.Provider)
	check(c.Geocoder.Provider != "google" || c.Geocoder.APIKey != "", "geocoder.api_key is required for google")
	check(c.Geocoder.RateLimit > 0, "geocoder.rate_limit must be positive")

	return errors.Join(errs...)
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}
