package postgres

import (
	"context"
	"fmt"
)

// EventLedger is the append-only fired-event set.
type EventLedger struct {
	pool querier
}

// NewEventLedger wraps a pool; pass pgxmock in tests.
func NewEventLedger(pool querier) (*EventLedger, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &EventLedger{pool: pool}, nil
}

func (l *EventLedger) HasFired(ctx context.Context, eventID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM fired_events WHERE event_id = $1);`
	var fired bool
	if err := l.pool.QueryRow(ctx, query, eventID).Scan(&fired); err != nil {
		return false, fmt.Errorf("check fired event: %w", err)
	}
	return fired, nil
}

func (l *EventLedger) MarkFired(ctx context.Context, eventID string) error {
	query := `
		INSERT INTO fired_events (event_id, fired_at)
		VALUES ($1, now())
		ON CONFLICT (event_id) DO NOTHING;
	`
	if _, err := l.pool.Exec(ctx, query, eventID); err != nil {
		return fmt.Errorf("mark fired event: %w", err)
	}
	return nil
}
