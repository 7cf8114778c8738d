// Package engine drives the classifier against persistent state, serializing
// access per match and keeping the fired-event ledger ahead of the state so
// a crash can lose an alert but never duplicate one.
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mkotecha/crickwatch/internal/match"
	"github.com/mkotecha/crickwatch/internal/metrics"
)

// Driver owns the load/classify/persist cycle for snapshots.
type Driver struct {
	states match.StateStore
	ledger match.EventLedger
	log    *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Driver over the given stores.
func New(states match.StateStore, ledger match.EventLedger, log *zap.Logger) *Driver {
	return &Driver{
		states: states,
		ledger: ledger,
		log:    log.Named("engine"),
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing one match's ticks. Different matches
// proceed concurrently.
func (d *Driver) lockFor(matchID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		d.locks[matchID] = l
	}
	return l
}

// Process runs one snapshot through the classifier and persists the outcome.
// It returns the event to deliver (nil when the tick is silent) and whether
// the match is now terminally over, so the caller can stop polling it. On any
// persistence failure the tick is abandoned whole: no event, state untouched.
func (d *Driver) Process(ctx context.Context, snap match.Snapshot) (*match.Event, bool, error) {
	if snap.MatchID == "" {
		return nil, false, fmt.Errorf("snapshot without match id")
	}

	l := d.lockFor(snap.MatchID)
	l.Lock()
	defer l.Unlock()

	state, existed, err := d.states.Load(ctx, snap.MatchID)
	if err != nil {
		return nil, false, fmt.Errorf("load state for %s: %w", snap.MatchID, err)
	}
	if existed && state.Ended {
		d.log.Debug("snapshot for finished match ignored", zap.String("match_id", snap.MatchID))
		return nil, true, nil
	}
	coldStart := !existed
	if coldStart {
		state = match.NewMatchState()
	}

	adjusted, reset := match.PhaseAdjust(state, snap.Balls())
	if reset {
		d.log.Info("phase reset",
			zap.String("match_id", snap.MatchID),
			zap.Int("phase", adjusted.Phase),
		)
	}

	// The classifier reads the ledger through a predicate; an error during a
	// read answers "already fired" so the tick errs toward silence, and the
	// recorded error abandons the tick afterwards.
	var ledgerErr error
	fired := func(eventID string) bool {
		if ledgerErr != nil {
			return true
		}
		has, err := d.ledger.HasFired(ctx, eventID)
		if err != nil {
			ledgerErr = err
			return true
		}
		if has {
			metrics.ObserveDedupSuppression()
		}
		return has
	}

	out := match.Classify(snap, adjusted, coldStart, fired)
	if ledgerErr != nil {
		return nil, false, fmt.Errorf("ledger read for %s: %w", snap.MatchID, ledgerErr)
	}

	// Ledger before state. If marking or saving fails the caller retries the
	// whole tick next poll; a marked-but-unsaved id only suppresses the one
	// event, never corrupts the counters.
	for _, id := range out.SeedIDs {
		if err := d.ledger.MarkFired(ctx, id); err != nil {
			return nil, false, fmt.Errorf("seed ledger for %s: %w", snap.MatchID, err)
		}
	}
	if out.Event != nil {
		if err := d.ledger.MarkFired(ctx, out.Event.ID); err != nil {
			return nil, false, fmt.Errorf("mark fired %s: %w", out.Event.ID, err)
		}
	}
	if err := d.states.Save(ctx, snap.MatchID, out.Next); err != nil {
		return nil, false, fmt.Errorf("save state for %s: %w", snap.MatchID, err)
	}

	if coldStart {
		d.log.Info("match seeded",
			zap.String("match_id", snap.MatchID),
			zap.String("name", snap.Name),
			zap.Int("seeded_ids", len(out.SeedIDs)),
		)
	}
	if out.Event != nil {
		d.log.Info("event detected",
			zap.String("match_id", snap.MatchID),
			zap.String("kind", string(out.Event.Kind)),
			zap.String("event_id", out.Event.ID),
		)
	}
	return out.Event, out.Next.Ended, nil
}
