package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestEventLedgerHasFired(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger, err := NewEventLedger(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("m42|OV|10|66").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	fired, err := ledger.HasFired(context.Background(), "m42|OV|10|66")
	require.NoError(t, err)
	require.True(t, fired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventLedgerMarkFiredIdempotent(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger, err := NewEventLedger(mock)
	require.NoError(t, err)

	// Second insert conflicts away to zero rows; still no error.
	mock.ExpectExec("INSERT INTO fired_events").
		WithArgs("m42|TOSS").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO fired_events").
		WithArgs("m42|TOSS").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, ledger.MarkFired(context.Background(), "m42|TOSS"))
	require.NoError(t, ledger.MarkFired(context.Background(), "m42|TOSS"))
	require.NoError(t, mock.ExpectationsWereMet())
}
