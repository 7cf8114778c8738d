package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mkotecha/crickwatch/internal/match"
)

// TrackingStore persists which matches the poller may process.
type TrackingStore struct {
	pool querier
}

// NewTrackingStore wraps a pool; pass pgxmock in tests.
func NewTrackingStore(pool querier) (*TrackingStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &TrackingStore{pool: pool}, nil
}

// Upsert registers a match, refreshing the name but never touching the
// operator's mute toggle on an existing row.
func (s *TrackingStore) Upsert(ctx context.Context, m match.TrackedMatch) error {
	query := `
		INSERT INTO tracked_matches (match_id, name, active, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (match_id) DO UPDATE
		SET name = EXCLUDED.name,
			updated_at = now();
	`
	if _, err := s.pool.Exec(ctx, query, m.MatchID, m.Name, m.Active); err != nil {
		return fmt.Errorf("upsert tracked match: %w", err)
	}
	return nil
}

func (s *TrackingStore) SetActive(ctx context.Context, matchID string, active bool) error {
	query := `UPDATE tracked_matches SET active = $1, updated_at = now() WHERE match_id = $2;`
	res, err := s.pool.Exec(ctx, query, active, matchID)
	if err != nil {
		return fmt.Errorf("set tracked match active: %w", err)
	}
	if res.RowsAffected() == 0 {
		return match.ErrNotTracked
	}
	return nil
}

func (s *TrackingStore) IsActive(ctx context.Context, matchID string) (bool, error) {
	query := `SELECT active FROM tracked_matches WHERE match_id = $1;`
	var active bool
	err := s.pool.QueryRow(ctx, query, matchID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check tracked match: %w", err)
	}
	return active, nil
}

func (s *TrackingStore) List(ctx context.Context) ([]match.TrackedMatch, error) {
	query := `SELECT match_id, name, active FROM tracked_matches ORDER BY match_id;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tracked matches: %w", err)
	}
	defer rows.Close()

	var out []match.TrackedMatch
	for rows.Next() {
		var m match.TrackedMatch
		if err := rows.Scan(&m.MatchID, &m.Name, &m.Active); err != nil {
			return nil, fmt.Errorf("scan tracked match row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
