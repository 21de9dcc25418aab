package supervisor

import (
	"time"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/session"
)

// Config 重连策略
type Config struct {
	AutoReconnect        bool
	ReconnectDelay       time.Duration // 断链后首次重连等待，第 n 次为 n 倍
	MaxReconnectAttempts int
	PersistentInterval   time.Duration // 持续重连轮询间隔
	StartupDelay         time.Duration // 启动后尝试自动重连前的等待
	ScanTimeout          time.Duration
	NamePrefixes         []string
	BondedHints          []string
	Session              session.Config
}

func DefaultConfig() Config {
	return Config{
		AutoReconnect:        true,
		ReconnectDelay:       2 * time.Second,
		MaxReconnectAttempts: 5,
		PersistentInterval:   5 * time.Second,
		StartupDelay:         time.Second,
		ScanTimeout:          30 * time.Second,
		NamePrefixes:         ble.DefaultNamePrefixes,
		BondedHints:          ble.DefaultBondedHints,
		Session:              session.DefaultConfig(),
	}
}
