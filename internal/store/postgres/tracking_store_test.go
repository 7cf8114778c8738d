package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/mkotecha/crickwatch/internal/match"
)

func TestTrackingStoreSetActiveUnknownMatch(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTrackingStore(mock)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE tracked_matches").
		WithArgs(false, "nope").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = store.SetActive(context.Background(), "nope", false)
	require.ErrorIs(t, err, match.ErrNotTracked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackingStoreList(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTrackingStore(mock)
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"match_id", "name", "active"}).
		AddRow("m1", "IND vs AUS, 1st Test", true).
		AddRow("m2", "ENG vs SA, 2nd ODI", false)

	mock.ExpectQuery("SELECT match_id, name, active").
		WillReturnRows(rows)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "m1", list[0].MatchID)
	require.False(t, list[1].Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackingStoreIsActiveMissingRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTrackingStore(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT active").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"active"}))

	active, err := store.IsActive(context.Background(), "ghost")
	require.NoError(t, err)
	require.False(t, active)
	require.NoError(t, mock.ExpectationsWereMet())
}
