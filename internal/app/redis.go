package app

import (
	"context"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/walkpad-gateway/internal/config"
	"github.com/taoyao-code/walkpad-gateway/internal/health"
	"github.com/taoyao-code/walkpad-gateway/internal/prefs"
	redisstorage "github.com/taoyao-code/walkpad-gateway/internal/storage/redis"
	"github.com/taoyao-code/walkpad-gateway/internal/supervisor"
)

// NewRedisClient 创建Redis客户端，未启用时返回 nil
func NewRedisClient(ctx context.Context, cfg cfgpkg.RedisConfig, logger *zap.Logger) (*redisstorage.Client, error) {
	if !cfg.Enabled {
		logger.Info("redis is disabled, skipping initialization")
		return nil, nil
	}

	client, err := redisstorage.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("redis client initialized",
		zap.String("addr", cfg.Addr),
		zap.Int("pool_size", cfg.PoolSize))

	return client, nil
}

// NewPreferences 有 Redis 时偏好落 Redis，否则仅保存在内存
func NewPreferences(client *redisstorage.Client, keyPrefix string, logger *zap.Logger) supervisor.Preferences {
	if client != nil {
		logger.Info("using redis preference store", zap.String("prefix", keyPrefix))
		return prefs.NewRedisStore(client.Client, keyPrefix)
	}
	logger.Info("using memory preference store")
	return prefs.NewMemoryStore()
}

// AddRedisChecker 添加Redis检查器到聚合器
func AddRedisChecker(aggregator *health.Aggregator, redisClient *redisstorage.Client) {
	if redisClient != nil {
		aggregator.AddChecker(health.NewRedisChecker(redisClient))
	}
}
