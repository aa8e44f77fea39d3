package results

import (
	"database/sql"
	"testing"

	"github.com/clydesc/sailscore/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrInt64(v int64) *int64       { return &v }
func ptrFloat64(v float64) *float64 { return &v }

func newTestService(store *fakeStore) *Service {
	return NewService(store, 14)
}

func TestIngestEvent(t *testing.T) {
	setup := func() (*fakeStore, *Service) {
		store := newFakeStore()
		store.addRace(1, sql.NullInt64{}, database.RaceScheduled)
		store.addEntry(10, 1, 100, "Ada", sql.NullInt64{}, "", 1100)
		return store, newTestService(store)
	}

	t.Run("accepts a valid lap event", func(t *testing.T) {
		_, svc := setup()

		res, err := svc.IngestEvent(1, 7, 1, database.EventLap, ptrInt64(10), ptrFloat64(300))
		require.NoError(t, err)
		assert.False(t, res.Duplicate)
	})

	t.Run("duplicate device seq is a success with the flag set", func(t *testing.T) {
		_, svc := setup()

		first, err := svc.IngestEvent(1, 7, 1, database.EventLap, ptrInt64(10), ptrFloat64(300))
		require.NoError(t, err)
		assert.False(t, first.Duplicate)

		retry, err := svc.IngestEvent(1, 7, 1, database.EventLap, ptrInt64(10), ptrFloat64(300))
		require.NoError(t, err)
		assert.True(t, retry.Duplicate)
	})

	t.Run("duplicate does not append a second event", func(t *testing.T) {
		store, svc := setup()

		_, err := svc.IngestEvent(1, 7, 1, database.EventLap, ptrInt64(10), ptrFloat64(300))
		require.NoError(t, err)
		_, err = svc.IngestEvent(1, 7, 1, database.EventLap, ptrInt64(10), ptrFloat64(300))
		require.NoError(t, err)

		events, err := store.EventsByRace(1)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("unknown race", func(t *testing.T) {
		_, svc := setup()

		_, err := svc.IngestEvent(99, 7, 1, database.EventStart, nil, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, svc := setup()

		_, err := svc.IngestEvent(1, 7, 1, "teleport", nil, nil)
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("lap without an entry", func(t *testing.T) {
		_, svc := setup()

		_, err := svc.IngestEvent(1, 7, 1, database.EventLap, nil, ptrFloat64(300))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("unknown entry", func(t *testing.T) {
		_, svc := setup()

		_, err := svc.IngestEvent(1, 7, 1, database.EventLap, ptrInt64(999), ptrFloat64(300))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("entry from another race", func(t *testing.T) {
		store, svc := setup()
		store.addRace(2, sql.NullInt64{}, database.RaceScheduled)
		store.addEntry(20, 2, 200, "Ben", sql.NullInt64{}, "", 1140)

		_, err := svc.IngestEvent(1, 7, 1, database.EventLap, ptrInt64(20), ptrFloat64(300))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("start event moves a scheduled race to started", func(t *testing.T) {
		store, svc := setup()

		_, err := svc.IngestEvent(1, 7, 1, database.EventStart, nil, nil)
		require.NoError(t, err)

		race, err := store.Race(1)
		require.NoError(t, err)
		assert.Equal(t, database.RaceStarted, race.Status)
	})

	t.Run("late start does not regress a finished race", func(t *testing.T) {
		store, svc := setup()
		store.races[1].Status = database.RaceFinished

		_, err := svc.IngestEvent(1, 7, 1, database.EventStart, nil, nil)
		require.NoError(t, err)

		race, err := store.Race(1)
		require.NoError(t, err)
		assert.Equal(t, database.RaceFinished, race.Status)
	})
}

func TestRaceState(t *testing.T) {
	store := newFakeStore()
	store.addRace(1, sql.NullInt64{}, database.RaceStarted)
	store.addEntry(10, 1, 100, "Ada", sql.NullInt64{}, "", 1100)
	store.addEntry(11, 1, 101, "Ben", sql.NullInt64{}, "", 1140)
	svc := newTestService(store)

	_, err := svc.IngestEvent(1, 7, 1, database.EventStart, nil, nil)
	require.NoError(t, err)
	_, err = svc.IngestEvent(1, 7, 2, database.EventLap, ptrInt64(10), ptrFloat64(300))
	require.NoError(t, err)
	_, err = svc.IngestEvent(1, 7, 3, database.EventLap, ptrInt64(11), ptrFloat64(320))
	require.NoError(t, err)

	state, err := svc.RaceState(1, 0)
	require.NoError(t, err)

	assert.True(t, state.Started)
	assert.Equal(t, 1, state.Boats[10].Laps)
	assert.Equal(t, 1, state.Boats[11].Laps)
	assert.Equal(t, 1, state.Boats[10].Position)
	assert.Equal(t, 2, state.Boats[11].Position)

	t.Run("unknown race", func(t *testing.T) {
		_, err := svc.RaceState(42, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
