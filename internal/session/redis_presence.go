package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Presence 活动会话的外部镜像，Registry 在登记、收到通知、注销时调用
type Presence interface {
	Bind(address, sessionID string, t time.Time)
	Heartbeat(address string, t time.Time)
	Unbind(address, sessionID string)
}

// PresenceInfo Redis 中保存的会话信息
type PresenceInfo struct {
	Address    string    `json:"address"`
	SessionID  string    `json:"session_id"`
	InstanceID string    `json:"instance_id"`
	BoundAt    time.Time `json:"bound_at"`
	LastSeen   time.Time `json:"last_seen"`
}

// Redis Key设计
const (
	// {prefix}session:device:{address} -> PresenceInfo JSON
	keyDevicePrefix = "session:device:"

	// {prefix}session:instance:{instanceID}:devices -> Set[address]
	keyInstancePrefix = "session:instance:"
)

// unbindScript 仅当登记的仍是同一会话时删除
var unbindScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v and cjson.decode(v).session_id == ARGV[1] then
  redis.call('DEL', KEYS[1])
  redis.call('SREM', KEYS[2], ARGV[2])
  return 1
end
return 0
`)

// RedisPresence 把会话在线情况写入 Redis，供其他网关实例或外部工具查看外设被谁占用
type RedisPresence struct {
	client     *redis.Client
	instanceID string
	prefix     string
	timeout    time.Duration // 在线超时，key 过期时间为其 2 倍
	opTimeout  time.Duration
	logger     *zap.Logger

	mu        sync.Mutex
	sessions  map[string]PresenceInfo // address -> 本实例登记的会话
	lastWrite map[string]time.Time
}

// NewRedisPresence instanceID 为空时生成随机 ID
func NewRedisPresence(client *redis.Client, prefix, instanceID string, timeout time.Duration, logger *zap.Logger) *RedisPresence {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if instanceID == "" {
		instanceID = uuid.New().String()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPresence{
		client:     client,
		instanceID: instanceID,
		prefix:     prefix,
		timeout:    timeout,
		opTimeout:  500 * time.Millisecond,
		logger:     logger.Named("presence"),
		sessions:   make(map[string]PresenceInfo),
		lastWrite:  make(map[string]time.Time),
	}
}

func (p *RedisPresence) InstanceID() string { return p.instanceID }

func (p *RedisPresence) deviceKey(address string) string {
	return p.prefix + keyDevicePrefix + address
}

func (p *RedisPresence) instanceKey() string {
	return fmt.Sprintf("%s%s%s:devices", p.prefix, keyInstancePrefix, p.instanceID)
}

// Bind 登记会话
func (p *RedisPresence) Bind(address, sessionID string, t time.Time) {
	info := PresenceInfo{
		Address:    address,
		SessionID:  sessionID,
		InstanceID: p.instanceID,
		BoundAt:    t,
		LastSeen:   t,
	}
	p.mu.Lock()
	p.sessions[address] = info
	p.lastWrite[address] = t
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.opTimeout)
	defer cancel()
	if err := p.write(ctx, info); err != nil {
		p.logger.Warn("presence bind failed", zap.String("device", address), zap.Error(err))
		return
	}
	if err := p.client.SAdd(ctx, p.instanceKey(), address).Err(); err != nil {
		p.logger.Warn("presence index failed", zap.String("device", address), zap.Error(err))
	}
}

// Heartbeat 刷新最近通知时间；写入频率限制为超时的 1/4
func (p *RedisPresence) Heartbeat(address string, t time.Time) {
	p.mu.Lock()
	info, ok := p.sessions[address]
	if !ok || t.Sub(p.lastWrite[address]) < p.timeout/4 {
		p.mu.Unlock()
		return
	}
	info.LastSeen = t
	p.sessions[address] = info
	p.lastWrite[address] = t
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.opTimeout)
	defer cancel()
	if err := p.write(ctx, info); err != nil {
		p.logger.Debug("presence heartbeat failed", zap.String("device", address), zap.Error(err))
	}
}

// Unbind 注销会话；Redis 中已被其他会话覆盖时保留
func (p *RedisPresence) Unbind(address, sessionID string) {
	p.mu.Lock()
	if info, ok := p.sessions[address]; ok && info.SessionID == sessionID {
		delete(p.sessions, address)
		delete(p.lastWrite, address)
	}
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.opTimeout)
	defer cancel()
	keys := []string{p.deviceKey(address), p.instanceKey()}
	if err := unbindScript.Run(ctx, p.client, keys, sessionID, address).Err(); err != nil {
		p.logger.Warn("presence unbind failed", zap.String("device", address), zap.Error(err))
	}
}

// Lookup 查询外设当前被哪个实例的哪个会话占用
func (p *RedisPresence) Lookup(ctx context.Context, address string) (PresenceInfo, bool, error) {
	val, err := p.client.Get(ctx, p.deviceKey(address)).Result()
	if errors.Is(err, redis.Nil) {
		return PresenceInfo{}, false, nil
	}
	if err != nil {
		return PresenceInfo{}, false, err
	}
	var info PresenceInfo
	if err := json.Unmarshal([]byte(val), &info); err != nil {
		return PresenceInfo{}, false, fmt.Errorf("decode presence: %w", err)
	}
	return info, true, nil
}

// Cleanup 删除本实例登记的全部会话（优雅关闭时调用）
func (p *RedisPresence) Cleanup(ctx context.Context) error {
	p.mu.Lock()
	sessions := make([]PresenceInfo, 0, len(p.sessions))
	for _, info := range p.sessions {
		sessions = append(sessions, info)
	}
	p.sessions = make(map[string]PresenceInfo)
	p.lastWrite = make(map[string]time.Time)
	p.mu.Unlock()

	keys := []string{"", p.instanceKey()}
	for _, info := range sessions {
		keys[0] = p.deviceKey(info.Address)
		if err := unbindScript.Run(ctx, p.client, keys, info.SessionID, info.Address).Err(); err != nil {
			return err
		}
	}
	return p.client.Del(ctx, p.instanceKey()).Err()
}

func (p *RedisPresence) write(ctx context.Context, info PresenceInfo) error {
	b, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, p.deviceKey(info.Address), b, p.timeout*2).Err()
}
