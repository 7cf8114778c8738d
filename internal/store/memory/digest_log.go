package memory

import (
	"context"
	"sync"
)

// DigestLog keeps sent-digest dates in process memory.
type DigestLog struct {
	mu   sync.RWMutex
	sent map[string]struct{}
}

// NewDigestLog creates an empty in-memory digest log.
func NewDigestLog() *DigestLog {
	return &DigestLog{sent: make(map[string]struct{})}
}

func (d *DigestLog) Sent(_ context.Context, date string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.sent[date]
	return ok, nil
}

func (d *DigestLog) MarkSent(_ context.Context, date string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent[date] = struct{}{}
	return nil
}
