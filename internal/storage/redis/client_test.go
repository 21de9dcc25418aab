package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/taoyao-code/walkpad-gateway/internal/config"
)

func TestNewClientDisabled(t *testing.T) {
	_, err := NewClient(context.Background(), cfgpkg.RedisConfig{Enabled: false})
	assert.Error(t, err)
}

func TestNewClientLocal(t *testing.T) {
	c, err := NewClient(context.Background(), cfgpkg.RedisConfig{
		Enabled:     true,
		Addr:        "localhost:6379",
		DB:          15,
		DialTimeout: time.Second,
	})
	if err != nil {
		t.Skip("Redis not available, skipping test")
	}
	defer c.Close()

	require.NoError(t, c.Ping(context.Background()))
	assert.NotNil(t, c.Stats())
}
