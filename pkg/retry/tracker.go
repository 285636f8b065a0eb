package retry

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Operation 在途重试操作的观测快照
type Operation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Attempt   int       `json:"attempt"`
	StartedAt time.Time `json:"started_at"`
	LastError string    `json:"last_error,omitempty"`
}

// Tracker 在途重试操作注册表。
// 由调用方持有并注入，仅用于观测；CancelAll 只清空注册表，
// 不会中断已发出的网络调用。
type Tracker struct {
	mu  sync.Mutex
	ops map[string]*Operation
}

// NewTracker 创建注册表
func NewTracker() *Tracker {
	return &Tracker{
		ops: make(map[string]*Operation),
	}
}

func (t *Tracker) begin(name string) string {
	if t == nil {
		return ""
	}
	id := uuid.NewString()
	t.mu.Lock()
	t.ops[id] = &Operation{
		ID:        id,
		Name:      name,
		Attempt:   0,
		StartedAt: time.Now(),
	}
	t.mu.Unlock()
	return id
}

func (t *Tracker) update(id string, attempt int, lastErr error) {
	if t == nil || id == "" {
		return
	}
	t.mu.Lock()
	if op, ok := t.ops[id]; ok {
		op.Attempt = attempt
		if lastErr != nil {
			op.LastError = lastErr.Error()
		}
	}
	t.mu.Unlock()
}

func (t *Tracker) finish(id string) {
	if t == nil || id == "" {
		return
	}
	t.mu.Lock()
	delete(t.ops, id)
	t.mu.Unlock()
}

// InFlight 返回当前在途操作快照
func (t *Tracker) InFlight() []Operation {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Operation, 0, len(t.ops))
	for _, op := range t.ops {
		out = append(out, *op)
	}
	return out
}

// CancelAll 清空在途注册表
func (t *Tracker) CancelAll() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.ops = make(map[string]*Operation)
	t.mu.Unlock()
}
