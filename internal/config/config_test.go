package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("EVENTSCHEDULER_PRIMARY.ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Primary.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "events", cfg.Database.EventsCollection)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 5*time.Second, cfg.Database.OperationTimeout)
	assert.Equal(t, uint64(100), cfg.Database.MaxPoolSize)

	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 10, cfg.Jobs.Concurrency)
	assert.Equal(t, http.StatusBadRequest, cfg.Validation.FailureStatus)
	assert.Equal(t, float64(20), cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 40, cfg.RateLimit.Burst)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "test", cfg.Observability.Environment)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, 100*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
	assert.Empty(t, cfg.Observability.NewRelic.LicenseKey)
	assert.Equal(t, []string{"database", "redis"}, cfg.Observability.HealthChecks.Checks)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("EVENTSCHEDULER_PRIMARY.ENV", "production")
	t.Setenv("EVENTSCHEDULER_SERVER.PORT", "9090")
	t.Setenv("EVENTSCHEDULER_DATABASE.OPERATION_TIMEOUT", "2s")
	t.Setenv("EVENTSCHEDULER_VALIDATION.FAILURE_STATUS", "500")
	t.Setenv("EVENTSCHEDULER_OBSERVABILITY.LOGGING.LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Database.OperationTimeout)
	assert.Equal(t, http.StatusInternalServerError, cfg.Validation.FailureStatus)
	assert.Equal(t, "debug", cfg.Observability.GetLogLevel())
	assert.True(t, cfg.Observability.IsProduction())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing environment",
			env:  map[string]string{},
		},
		{
			name: "unsupported validation status",
			env: map[string]string{
				"EVENTSCHEDULER_PRIMARY.ENV":               "test",
				"EVENTSCHEDULER_VALIDATION.FAILURE_STATUS": "418",
			},
		},
		{
			name: "unknown log level",
			env: map[string]string{
				"EVENTSCHEDULER_PRIMARY.ENV":                  "test",
				"EVENTSCHEDULER_OBSERVABILITY.LOGGING.LEVEL": "verbose",
			},
		},
		{
			name: "operation timeout too small",
			env: map[string]string{
				"EVENTSCHEDULER_PRIMARY.ENV":                 "test",
				"EVENTSCHEDULER_DATABASE.OPERATION_TIMEOUT": "1ms",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestObservabilityConfig_HealthCheckEnabled(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	assert.True(t, cfg.HealthCheckEnabled("database"))
	assert.False(t, cfg.HealthCheckEnabled("queue"))

	cfg.HealthChecks.Enabled = false
	assert.False(t, cfg.HealthCheckEnabled("database"))
}
