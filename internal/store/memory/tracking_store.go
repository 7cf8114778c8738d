package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mkotecha/crickwatch/internal/match"
)

// TrackingStore keeps tracked matches in process memory.
type TrackingStore struct {
	mu      sync.RWMutex
	tracked map[string]match.TrackedMatch
}

// NewTrackingStore creates an empty in-memory tracking store.
func NewTrackingStore() *TrackingStore {
	return &TrackingStore{tracked: make(map[string]match.TrackedMatch)}
}

func (s *TrackingStore) Upsert(_ context.Context, m match.TrackedMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tracked[m.MatchID]; ok {
		// A re-discovered match keeps its mute toggle, only the name refreshes.
		cur.Name = m.Name
		s.tracked[m.MatchID] = cur
		return nil
	}
	s.tracked[m.MatchID] = m
	return nil
}

func (s *TrackingStore) SetActive(_ context.Context, matchID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tracked[matchID]
	if !ok {
		return match.ErrNotTracked
	}
	cur.Active = active
	s.tracked[matchID] = cur
	return nil
}

func (s *TrackingStore) IsActive(_ context.Context, matchID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur, ok := s.tracked[matchID]
	if !ok {
		return false, nil
	}
	return cur.Active, nil
}

func (s *TrackingStore) List(_ context.Context) ([]match.TrackedMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]match.TrackedMatch, 0, len(s.tracked))
	for _, m := range s.tracked {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out, nil
}
