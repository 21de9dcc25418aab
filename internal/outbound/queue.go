package outbound

import (
	"sync"

	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

// Queue 会话内的下行命令队列，严格 FIFO
// 入队永不阻塞、永不丢弃；只有 Worker 出队
type Queue struct {
	mu       sync.Mutex
	items    []walkpad.Frame
	coalesce bool
}

// NewQueue 创建队列
// coalesce 为 true 时，同一 (消息类型, 命令) 的待发命令原位替换为最新值
func NewQueue(coalesce bool) *Queue {
	return &Queue{coalesce: coalesce}
}

// Enqueue 追加命令，返回是否替换了已有的同类命令
func (q *Queue) Enqueue(f walkpad.Frame) (coalesced bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.coalesce {
		for i, pending := range q.items {
			if pending.Kind() == f.Kind() && pending.Command() == f.Command() {
				q.items[i] = f
				return true
			}
		}
	}
	q.items = append(q.items, f)
	return false
}

// DrainOne 取出队首命令
func (q *Queue) DrainOne() (walkpad.Frame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	f := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return f, true
}

// Clear 丢弃所有待发命令，返回丢弃数量
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	q.items = nil
	return n
}

// Len 待发命令数
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
