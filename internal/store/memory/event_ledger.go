package memory

import (
	"context"
	"sync"
)

// EventLedger keeps fired event identifiers in process memory.
type EventLedger struct {
	mu    sync.RWMutex
	fired map[string]struct{}
}

// NewEventLedger creates an empty in-memory ledger.
func NewEventLedger() *EventLedger {
	return &EventLedger{fired: make(map[string]struct{})}
}

func (l *EventLedger) HasFired(_ context.Context, eventID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.fired[eventID]
	return ok, nil
}

func (l *EventLedger) MarkFired(_ context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fired[eventID] = struct{}{}
	return nil
}

// Size reports how many identifiers the ledger holds.
func (l *EventLedger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fired)
}
