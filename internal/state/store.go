package state

import (
	"sync"
	"time"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

// MaxRecords 内存中保留的运动记录上限
const MaxRecords = 500

// Snapshot 对外可观察的设备快照
type Snapshot struct {
	Status               Status       `json:"status"`
	Params               Params       `json:"params"`
	ParamsReceived       bool         `json:"params_received"`
	SessionState         SessionState `json:"session_state"`
	LastError            string       `json:"last_error,omitempty"`
	Device               *ble.Handle  `json:"device,omitempty"`
	AutoReconnect        bool         `json:"auto_reconnect"`
	ReconnectAttempt     int          `json:"reconnect_attempt"`
	MaxReconnectAttempts int          `json:"max_reconnect_attempts"`
	Support              ble.Support  `json:"support"`
	RecordCount          int          `json:"record_count"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// Store 设备快照的唯一持有者，变更后推送给订阅者
type Store struct {
	mu      sync.RWMutex
	snap    Snapshot
	records []walkpad.Record
	subs    map[int]chan Snapshot
	nextID  int
}

func NewStore() *Store {
	return &Store{
		snap: Snapshot{
			Status:       DefaultStatus(),
			Params:       DefaultParams(),
			SessionState: Disconnected,
			UpdatedAt:    time.Now(),
		},
		subs: make(map[int]chan Snapshot),
	}
}

// Snapshot 当前快照的拷贝
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Records 已收到的运动记录（按到达顺序）
func (s *Store) Records() []walkpad.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]walkpad.Record(nil), s.records...)
}

func (s *Store) ApplyInfo(i *walkpad.Info) {
	s.update(func(snap *Snapshot) { snap.Status = statusFromInfo(i) })
}

func (s *Store) ApplyParams(p *walkpad.Params) {
	s.update(func(snap *Snapshot) {
		snap.Params = paramsFrom(p)
		snap.ParamsReceived = true
	})
}

// AddRecord 时长为 0 的记录丢弃，返回是否保存
func (s *Store) AddRecord(r walkpad.Record) bool {
	if r.Duration <= 0 {
		return false
	}
	s.update(func(snap *Snapshot) {
		s.records = append(s.records, r)
		if len(s.records) > MaxRecords {
			s.records = append([]walkpad.Record(nil), s.records[len(s.records)-MaxRecords:]...)
		}
		snap.RecordCount = len(s.records)
	})
	return true
}

// ResetDevice 断开后状态回到默认值，参数保留上次结果
func (s *Store) ResetDevice() {
	s.update(func(snap *Snapshot) { snap.Status = DefaultStatus() })
}

func (s *Store) SetSessionState(st SessionState) {
	s.update(func(snap *Snapshot) { snap.SessionState = st })
}

// SetError 记录最近一次用户可见错误，nil 清除
func (s *Store) SetError(err error) {
	s.update(func(snap *Snapshot) {
		if err == nil {
			snap.LastError = ""
			return
		}
		snap.LastError = err.Error()
	})
}

func (s *Store) SetDevice(h ble.Handle) {
	s.update(func(snap *Snapshot) { snap.Device = &h })
}

func (s *Store) SetAutoReconnect(enabled bool) {
	s.update(func(snap *Snapshot) { snap.AutoReconnect = enabled })
}

func (s *Store) SetReconnectAttempt(attempt, max int) {
	s.update(func(snap *Snapshot) {
		snap.ReconnectAttempt = attempt
		snap.MaxReconnectAttempts = max
	})
}

func (s *Store) SetSupport(sup ble.Support) {
	s.update(func(snap *Snapshot) { snap.Support = sup })
}

// Subscribe 订阅快照变更；慢订阅者只会拿到最新一份
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Snapshot, 1)
	ch <- s.copyLocked()
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
		})
	}
}

func (s *Store) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.snap)
	s.snap.UpdatedAt = time.Now()
	snap := s.copyLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Store) copyLocked() Snapshot {
	snap := s.snap
	if s.snap.Device != nil {
		d := *s.snap.Device
		snap.Device = &d
	}
	return snap
}
