package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mkotecha/crickwatch/internal/match"
)

// StateStore persists classifier state per match.
type StateStore struct {
	pool querier
}

// NewStateStore wraps a pool; pass pgxmock in tests.
func NewStateStore(pool querier) (*StateStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &StateStore{pool: pool}, nil
}

func (s *StateStore) Load(ctx context.Context, matchID string) (match.MatchState, bool, error) {
	query := `
		SELECT last_balls, last_wickets, last_wicket_balls, toss_announced, phase, ended
		FROM match_states
		WHERE match_id = $1;
	`
	var state match.MatchState
	err := s.pool.QueryRow(ctx, query, matchID).Scan(
		&state.LastBalls,
		&state.LastWickets,
		&state.LastWicketBalls,
		&state.TossAnnounced,
		&state.Phase,
		&state.Ended,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return match.MatchState{}, false, nil
		}
		return match.MatchState{}, false, fmt.Errorf("load match state: %w", err)
	}
	return state, true, nil
}

func (s *StateStore) Save(ctx context.Context, matchID string, state match.MatchState) error {
	query := `
		INSERT INTO match_states (match_id, last_balls, last_wickets, last_wicket_balls, toss_announced, phase, ended, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (match_id) DO UPDATE
		SET last_balls = EXCLUDED.last_balls,
			last_wickets = EXCLUDED.last_wickets,
			last_wicket_balls = EXCLUDED.last_wicket_balls,
			toss_announced = EXCLUDED.toss_announced,
			phase = EXCLUDED.phase,
			ended = EXCLUDED.ended,
			updated_at = now();
	`
	_, err := s.pool.Exec(ctx, query,
		matchID,
		state.LastBalls,
		state.LastWickets,
		state.LastWicketBalls,
		state.TossAnnounced,
		state.Phase,
		state.Ended,
	)
	if err != nil {
		return fmt.Errorf("save match state: %w", err)
	}
	return nil
}
