package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-engine/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Engine.LockTimeout)
	assert.Equal(t, config.StoragePostgres, cfg.Engine.StorageDriver)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.Telemetry.Enabled())
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("ENGINE_LOCK_TIMEOUT", "750ms")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Engine.LockTimeout)
	assert.Equal(t, config.StorageMemory, cfg.Engine.StorageDriver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Telemetry.Enabled())
}

func TestLoad_TimeoutEnMilisegundos(t *testing.T) {
	t.Setenv("ENGINE_LOCK_TIMEOUT", "200")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, cfg.Engine.LockTimeout)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/w", DBName: "inv", SSLMode: "disable"}

	assert.Equal(t, "postgres://app:p%40ss%2Fw@db:5432/inv?sslmode=disable", c.DSN())
}
