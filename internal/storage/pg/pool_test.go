package pg

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	cfgpkg "github.com/taoyao-code/walkpad-gateway/internal/config"
	"github.com/taoyao-code/walkpad-gateway/internal/migrate"
)

func TestPoolConfigDefaults(t *testing.T) {
	pc, err := PoolConfig(cfgpkg.DatabaseConfig{DSN: "postgres://u:p@localhost:5432/walkpad"}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 10, pc.MaxConns)
	assert.EqualValues(t, 1, pc.MinConns)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
	assert.Nil(t, pc.ConnConfig.Tracer)
}

func TestPoolConfigOverrides(t *testing.T) {
	pc, err := PoolConfig(cfgpkg.DatabaseConfig{
		DSN:             "postgres://u:p@localhost:5432/walkpad",
		MaxOpenConns:    3,
		MaxIdleConns:    8,
		ConnMaxLifetime: time.Minute,
		TraceSQL:        true,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.EqualValues(t, 3, pc.MaxConns)
	assert.EqualValues(t, 3, pc.MinConns, "min clamps to max")
	assert.Equal(t, time.Minute, pc.MaxConnLifetime)
	assert.NotNil(t, pc.ConnConfig.Tracer)
}

func TestPoolConfigBadDSN(t *testing.T) {
	_, err := PoolConfig(cfgpkg.DatabaseConfig{DSN: "::not a dsn"}, nil)
	assert.Error(t, err)
}

func TestPgxZapLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &pgxZapLogger{logger: zap.New(core)}

	l.Log(context.Background(), tracelog.LogLevelTrace, "Query", map[string]interface{}{"sql": "select 1"})
	l.Log(context.Background(), tracelog.LogLevelError, "Query", nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "[SQL] Query", entries[0].Message)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := migrate.Runner{FS: Migrations()}.Discover()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.EqualValues(t, 1, files[0].Version)
	assert.Equal(t, "0001_workout_records_up.sql", files[0].Path)
	assert.EqualValues(t, 2, files[1].Version)
}
