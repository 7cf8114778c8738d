// Package memory provides map-backed implementations of the persistence
// interfaces, used for tests and for running without a database.
package memory

import (
	"context"
	"sync"

	"github.com/mkotecha/crickwatch/internal/match"
)

// StateStore keeps classifier state in process memory.
type StateStore struct {
	mu     sync.RWMutex
	states map[string]match.MatchState
}

// NewStateStore creates an empty in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string]match.MatchState)}
}

func (s *StateStore) Load(_ context.Context, matchID string) (match.MatchState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[matchID]
	return state, ok, nil
}

func (s *StateStore) Save(_ context.Context, matchID string, state match.MatchState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[matchID] = state
	return nil
}
