// Package config loads the service configuration from the environment.
//
// Variables are read with the EVENTSCHEDULER_ prefix (a `.env` file is loaded
// first when present), mapped onto nested structs with "." as the key delimiter
// and validated so the process fails fast on bad or missing values.
//
//	EVENTSCHEDULER_PRIMARY.ENV=production
//	EVENTSCHEDULER_SERVER.PORT=8080
//	EVENTSCHEDULER_DATABASE.URI=mongodb://localhost:27017
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "EVENTSCHEDULER_"

// ServiceName tags logs, traces and the New Relic application.
const ServiceName = "event-scheduler"

type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Jobs          JobsConfig           `koanf:"jobs"`
	Validation    ValidationConfig     `koanf:"validation"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups the HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig holds the MongoDB connection settings.
type DatabaseConfig struct {
	URI              string        `koanf:"uri" validate:"required"`
	Name             string        `koanf:"name" validate:"required"`
	EventsCollection string        `koanf:"events_collection" validate:"required"`
	ConnectTimeout   time.Duration `koanf:"connect_timeout" validate:"min=1s"`
	OperationTimeout time.Duration `koanf:"operation_timeout" validate:"min=100ms"`
	MaxPoolSize      uint64        `koanf:"max_pool_size" validate:"min=1"`
}

// RedisConfig is used by the job queue and the notification publisher.
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// JobsConfig controls the background worker.
type JobsConfig struct {
	Concurrency int `koanf:"concurrency" validate:"min=1"`
}

// ValidationConfig controls how request validation failures are answered.
//
// FailureStatus defaults to 400. 500 reproduces the status older clients of
// this API were written against.
type ValidationConfig struct {
	FailureStatus int `koanf:"failure_status" validate:"oneof=400 422 500"`
}

// RateLimitConfig configures the per-IP limiter on the API routes.
// A zero RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"min=0"`
	Burst             int     `koanf:"burst" validate:"min=0"`
}

func defaults() map[string]interface{} {
	obs := DefaultObservabilityConfig()

	return map[string]interface{}{
		"server.port":                 "8080",
		"server.read_timeout":         15,
		"server.write_timeout":        15,
		"server.idle_timeout":         60,
		"server.cors_allowed_origins": []string{"*"},

		"database.uri":               "mongodb://localhost:27017",
		"database.name":              "eventscheduler",
		"database.events_collection": "events",
		"database.connect_timeout":   "10s",
		"database.operation_timeout": "5s",
		"database.max_pool_size":     100,

		"redis.address":             "localhost:6379",
		"jobs.concurrency":          10,
		"validation.failure_status": http.StatusBadRequest,

		"rate_limit.requests_per_second": 20,
		"rate_limit.burst":               40,

		"observability.logging.level":                          obs.Logging.Level,
		"observability.logging.format":                         obs.Logging.Format,
		"observability.logging.slow_query_threshold":           obs.Logging.SlowQueryThreshold.String(),
		"observability.new_relic.app_log_forwarding_enabled":   obs.NewRelic.AppLogForwardingEnabled,
		"observability.new_relic.distributed_tracing_enabled":  obs.NewRelic.DistributedTracingEnabled,
		"observability.new_relic.debug_logging":                obs.NewRelic.DebugLogging,
		"observability.health_checks.enabled":                  obs.HealthChecks.Enabled,
		"observability.health_checks.interval":                 obs.HealthChecks.Interval.String(),
		"observability.health_checks.timeout":                  obs.HealthChecks.Timeout.String(),
		"observability.health_checks.checks":                   obs.HealthChecks.Checks,
	}
}

// LoadConfig reads defaults, overlays EVENTSCHEDULER_* environment variables,
// validates the result and fills in the observability block.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("could not load config defaults: %w", err)
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
