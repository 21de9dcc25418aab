package app

import (
	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	cfgpkg "github.com/taoyao-code/walkpad-gateway/internal/config"
	"github.com/taoyao-code/walkpad-gateway/internal/metrics"
	"github.com/taoyao-code/walkpad-gateway/internal/records"
	"github.com/taoyao-code/walkpad-gateway/internal/session"
	"github.com/taoyao-code/walkpad-gateway/internal/state"
	redisstorage "github.com/taoyao-code/walkpad-gateway/internal/storage/redis"
	"github.com/taoyao-code/walkpad-gateway/internal/supervisor"
)

// SupervisorConfig 由配置与设备规则组装重连策略与会话时序
func SupervisorConfig(cfg *cfgpkg.Config, profile cfgpkg.DeviceProfile) supervisor.Config {
	sc := supervisor.DefaultConfig()
	sc.AutoReconnect = cfg.Reconnect.AutoReconnect
	sc.ReconnectDelay = cfg.Reconnect.Delay
	sc.MaxReconnectAttempts = cfg.Reconnect.MaxAttempts
	sc.PersistentInterval = cfg.Reconnect.PersistentInterval
	sc.StartupDelay = cfg.Reconnect.StartupDelay
	if cfg.BLE.ScanTimeout > 0 {
		sc.ScanTimeout = cfg.BLE.ScanTimeout
	}
	sc.NamePrefixes = profile.NamePrefixes
	sc.BondedHints = profile.BondedHints
	sc.Session = session.Config{
		SettleDelay:   cfg.Device.SettleDelay,
		ActivateDelay: cfg.Device.ActivateDelay,
		DrainInterval: cfg.Device.DrainInterval,
		PollInterval:  cfg.Device.PollInterval,
		RetryBackoff:  cfg.Device.RetryBackoff,
		MaxRetries:    cfg.Device.MaxRetries,
		Coalesce:      cfg.Device.CoalesceCommands,
		NotifyBuffer:  cfg.Device.NotifyBuffer,
	}
	return sc
}

// NewSupervisor 构造会话监督者
// recorder 为 nil 时不挂载记录去向
func NewSupervisor(
	cfg supervisor.Config,
	transport ble.Transport,
	store *state.Store,
	registry *session.Registry,
	p supervisor.Preferences,
	recorder *records.Recorder,
	appm *metrics.AppMetrics,
	logger *zap.Logger,
) *supervisor.Supervisor {
	opts := []supervisor.Option{
		supervisor.WithLogger(logger),
		supervisor.WithMetrics(appm),
		supervisor.WithRegistry(registry),
		supervisor.WithPreferences(p),
	}
	if recorder != nil {
		opts = append(opts, supervisor.WithRecordSink(recorder))
	}
	return supervisor.New(cfg, transport, store, opts...)
}

// NewRegistry 会话登记表；有 Redis 时同时把会话在线情况镜像到 Redis
func NewRegistry(cfg *cfgpkg.Config, redisClient *redisstorage.Client, logger *zap.Logger) (*session.Registry, *session.RedisPresence) {
	registry := session.NewRegistry(cfg.Device.OnlineTimeout)
	if redisClient == nil {
		return registry, nil
	}
	presence := session.NewRedisPresence(redisClient.Client, cfg.Redis.KeyPrefix, "", cfg.Device.OnlineTimeout, logger)
	registry.SetPresence(presence)
	logger.Info("session presence mirrored to redis", zap.String("instance_id", presence.InstanceID()))
	return registry, presence
}
