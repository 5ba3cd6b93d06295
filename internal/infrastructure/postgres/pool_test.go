package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/config"
)

func TestPoolConfig_LimitesDesdeConfig(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{
		Host: "db", Port: 5432, User: "app", Password: "x", DBName: "inv", SSLMode: "disable",
		MaxConns: 12, MinConns: 3, MaxConnLifetime: 40 * time.Minute, ConnectTimeout: 2 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, int32(12), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
	assert.Equal(t, 40*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 20*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, 2*time.Second, pc.ConnConfig.ConnectTimeout)
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, "UTC", pc.ConnConfig.RuntimeParams["timezone"])
	assert.Equal(t, appName, pc.ConnConfig.RuntimeParams["application_name"])
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfig_DatabaseURLTienePrioridad(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{
		DatabaseURL: "postgres://u:p@remoto:6543/prod?sslmode=disable&application_name=reportes",
		Host:        "local", Port: 5432, MaxConns: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, "remoto", pc.ConnConfig.Host)
	assert.Equal(t, uint16(6543), pc.ConnConfig.Port)
	assert.Equal(t, "reportes", pc.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://%zz"})
	assert.Error(t, err)
}
