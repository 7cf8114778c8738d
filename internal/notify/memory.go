package notify

import (
	"context"
	"sync"
)

// Memory records sent messages, for tests and dry runs.
type Memory struct {
	mu       sync.Mutex
	messages []string
}

// NewMemory creates an empty recorder.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Send(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, text)
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *Memory) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// Noop discards every message.
type Noop struct{}

func (Noop) Send(context.Context, string) error { return nil }

// Fanout delivers to every provider, stopping at the first failure so the
// caller's retry covers the remainder.
type Fanout []Provider

func (f Fanout) Send(ctx context.Context, text string) error {
	for _, p := range f {
		if err := p.Send(ctx, text); err != nil {
			return err
		}
	}
	return nil
}
