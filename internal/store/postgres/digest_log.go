package postgres

import (
	"context"
	"fmt"
)

// DigestLog records which calendar dates already got the daily digest.
type DigestLog struct {
	pool querier
}

// NewDigestLog wraps a pool; pass pgxmock in tests.
func NewDigestLog(pool querier) (*DigestLog, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &DigestLog{pool: pool}, nil
}

func (d *DigestLog) Sent(ctx context.Context, date string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM digest_log WHERE digest_date = $1);`
	var sent bool
	if err := d.pool.QueryRow(ctx, query, date).Scan(&sent); err != nil {
		return false, fmt.Errorf("check digest log: %w", err)
	}
	return sent, nil
}

func (d *DigestLog) MarkSent(ctx context.Context, date string) error {
	query := `
		INSERT INTO digest_log (digest_date, sent_at)
		VALUES ($1, now())
		ON CONFLICT (digest_date) DO NOTHING;
	`
	if _, err := d.pool.Exec(ctx, query, date); err != nil {
		return fmt.Errorf("mark digest sent: %w", err)
	}
	return nil
}
