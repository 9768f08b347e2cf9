package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-engine/pkg/config"
)

func TestNewPoolConfig_DesdeCampos(t *testing.T) {
	cfg := config.DBConfig{Host: "db", Port: 5433, User: "app", Password: "s3cret", DBName: "inventario", SSLMode: "disable"}

	pc, err := newPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "inventario", pc.ConnConfig.Database)
	assert.Equal(t, int32(defaultMaxConns), pc.MaxConns)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
	assert.NotNil(t, pc.AfterConnect)
}

func TestNewPoolConfig_DatabaseURLYMaxConns(t *testing.T) {
	cfg := config.DBConfig{
		DatabaseURL: "postgres://app:pw@pg.internal:5432/stock?sslmode=disable",
		Host:        "ignorado",
		MaxConns:    4,
	}

	pc, err := newPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "pg.internal", pc.ConnConfig.Host)
	assert.Equal(t, "stock", pc.ConnConfig.Database)
	assert.Equal(t, int32(4), pc.MaxConns)
}

func TestNewPoolConfig_DSNInvalido(t *testing.T) {
	_, err := newPoolConfig(config.DBConfig{DatabaseURL: "postgres://app:pw@host:notaport/db"})
	assert.Error(t, err)
}
