package match

import (
	"context"
	"errors"
	"time"
)

// ErrNotTracked is returned by TrackingStore mutations on an unknown match.
var ErrNotTracked = errors.New("match not tracked")

// StateStore persists the per-match classifier state. Absence of a row is
// normal, not exceptional: Load returns a zero-value state and existed=false
// for a match never seen before.
type StateStore interface {
	Load(ctx context.Context, matchID string) (MatchState, bool, error)
	Save(ctx context.Context, matchID string, state MatchState) error
}

// EventLedger is the append-only set of fired event identifiers used purely
// for idempotent emission. MarkFired is idempotent: inserting a present id
// is a no-op, not an error.
type EventLedger interface {
	HasFired(ctx context.Context, eventID string) (bool, error)
	MarkFired(ctx context.Context, eventID string) error
}

// TrackedMatch is an operator-visible tracking row.
type TrackedMatch struct {
	MatchID string
	Name    string
	Active  bool
}

// TrackingStore persists which matches the poller may process. The engine
// never reads it; the caller gates on it before invoking the driver.
type TrackingStore interface {
	Upsert(ctx context.Context, m TrackedMatch) error
	SetActive(ctx context.Context, matchID string, active bool) error
	IsActive(ctx context.Context, matchID string) (bool, error)
	List(ctx context.Context) ([]TrackedMatch, error)
}

// DigestLog records which calendar dates already received the daily digest.
type DigestLog interface {
	Sent(ctx context.Context, date string) (bool, error)
	MarkSent(ctx context.Context, date string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
