package results

import (
	"database/sql"
	"testing"

	"github.com/clydesc/sailscore/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workflowFixture is a race with two entries, ready for scoring.
func workflowFixture(t *testing.T) (*fakeStore, *Service) {
	t.Helper()
	store := newFakeStore()
	store.addRace(1, sql.NullInt64{}, database.RaceStarted)
	store.addEntry(10, 1, 100, "Ada", sql.NullInt64{}, "", 1100)
	store.addEntry(11, 1, 101, "Ben", sql.NullInt64{}, "", 1140)
	return store, newTestService(store)
}

func TestGetOrCreateResultSet(t *testing.T) {
	t.Run("first access creates a draft with blank rows", func(t *testing.T) {
		_, svc := workflowFixture(t)

		view, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualTime)
		require.NoError(t, err)

		assert.Equal(t, database.StateDraft, view.Set.State)
		require.Len(t, view.Rows, 2)
		for _, row := range view.Rows {
			assert.False(t, row.Position.Valid)
			assert.False(t, row.Points.Valid)
		}
	})

	t.Run("second access returns the same set", func(t *testing.T) {
		_, svc := workflowFixture(t)

		first, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualTime)
		require.NoError(t, err)
		second, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualTime)
		require.NoError(t, err)

		assert.Equal(t, first.Set.ID, second.Set.ID)
	})

	t.Run("manual time seeds from the member's timed set", func(t *testing.T) {
		_, svc := workflowFixture(t)

		timed, err := svc.GetOrCreateResultSet(1, 100, database.SourceTimed)
		require.NoError(t, err)
		_, err = svc.SaveManualTime(timed.Set.ID, nil)
		require.ErrorIs(t, err, ErrInvalidState) // wrong source, sanity check

		// Put real rows on the timed set via its own save path.
		_, err = svc.IngestEvent(1, 7, 1, database.EventLap, ptrInt64(10), ptrFloat64(300))
		require.NoError(t, err)
		_, err = svc.SaveTimed(timed.Set.ID)
		require.NoError(t, err)

		view, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualTime)
		require.NoError(t, err)

		require.Len(t, view.Rows, 2)
		byEntry := rowsByEntry(view.Rows)
		assert.True(t, byEntry[10].ElapsedSeconds.Valid)
		assert.InDelta(t, 300, byEntry[10].ElapsedSeconds.Float64, 0.001)
	})

	t.Run("manual position seeds from manual time before timed", func(t *testing.T) {
		_, svc := workflowFixture(t)

		mt, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualTime)
		require.NoError(t, err)
		_, err = svc.SaveManualTime(mt.Set.ID, []ManualTimeRow{
			{EntryID: 10, Laps: 3, Elapsed: 600},
			{EntryID: 11, Laps: 3, Elapsed: 650},
		})
		require.NoError(t, err)

		view, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualPosition)
		require.NoError(t, err)

		byEntry := rowsByEntry(view.Rows)
		require.Contains(t, byEntry, int64(10))
		assert.True(t, byEntry[10].Position.Valid)
	})

	t.Run("sets are per member", func(t *testing.T) {
		_, svc := workflowFixture(t)

		mine, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualTime)
		require.NoError(t, err)
		theirs, err := svc.GetOrCreateResultSet(1, 101, database.SourceManualTime)
		require.NoError(t, err)

		assert.NotEqual(t, mine.Set.ID, theirs.Set.ID)
	})

	t.Run("unknown source", func(t *testing.T) {
		_, svc := workflowFixture(t)

		_, err := svc.GetOrCreateResultSet(1, 100, "oracle")
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("unknown race", func(t *testing.T) {
		_, svc := workflowFixture(t)

		_, err := svc.GetOrCreateResultSet(99, 100, database.SourceManualTime)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func rowsByEntry(rows []*database.ResultSetEntry) map[int64]*database.ResultSetEntry {
	out := make(map[int64]*database.ResultSetEntry, len(rows))
	for _, r := range rows {
		out[r.EntryID] = r
	}
	return out
}

func TestManualTimeScoring(t *testing.T) {
	_, svc := workflowFixture(t)

	view, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualTime)
	require.NoError(t, err)

	t.Run("preview ranks by corrected time without saving", func(t *testing.T) {
		// Ben is slower on the water but corrects ahead on his higher
		// yardstick: 612*1000/1140 < 600*1000/1100.
		rows, err := svc.PreviewManualTime(view.Set.ID, []ManualTimeRow{
			{EntryID: 10, Laps: 3, Elapsed: 600},
			{EntryID: 11, Laps: 3, Elapsed: 612},
		})
		require.NoError(t, err)

		byEntry := rowsByEntry(rows)
		assert.EqualValues(t, 2, byEntry[10].Position.Int64)
		assert.EqualValues(t, 1, byEntry[11].Position.Int64)
		assert.EqualValues(t, 13, byEntry[10].Points.Int64)
		assert.EqualValues(t, 14, byEntry[11].Points.Int64)

		set, err := svc.store.ResultSetByID(view.Set.ID)
		require.NoError(t, err)
		assert.Equal(t, database.StateDraft, set.State)
	})

	t.Run("rows without times do not compete", func(t *testing.T) {
		rows, err := svc.PreviewManualTime(view.Set.ID, []ManualTimeRow{
			{EntryID: 10, Laps: 3, Elapsed: 600},
			{EntryID: 11},
		})
		require.NoError(t, err)

		byEntry := rowsByEntry(rows)
		assert.True(t, byEntry[10].Position.Valid)
		assert.False(t, byEntry[11].Position.Valid)
		assert.False(t, byEntry[11].Points.Valid)
	})

	t.Run("fewer laps corrects against the fleet distance", func(t *testing.T) {
		rows, err := svc.PreviewManualTime(view.Set.ID, []ManualTimeRow{
			{EntryID: 10, Laps: 3, Elapsed: 600},
			{EntryID: 11, Laps: 2, Elapsed: 400},
		})
		require.NoError(t, err)

		byEntry := rowsByEntry(rows)
		// 400*1000/1140*(3/2) ≈ 526.3 beats 600*1000/1100 ≈ 545.5.
		assert.EqualValues(t, 1, byEntry[11].Position.Int64)
		assert.EqualValues(t, 2, byEntry[10].Position.Int64)
	})

	t.Run("save persists rows and moves the set to saved", func(t *testing.T) {
		saved, err := svc.SaveManualTime(view.Set.ID, []ManualTimeRow{
			{EntryID: 10, Laps: 3, Elapsed: 600},
			{EntryID: 11, Laps: 3, Elapsed: 612},
		})
		require.NoError(t, err)

		assert.Equal(t, database.StateSaved, saved.Set.State)
		require.Len(t, saved.Rows, 2)

		stored, err := svc.store.ResultRows(view.Set.ID)
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})
}

func TestManualPositionScoring(t *testing.T) {
	_, svc := workflowFixture(t)

	view, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualPosition)
	require.NoError(t, err)

	t.Run("dead heat compacts positions and shares points", func(t *testing.T) {
		rows, err := svc.PreviewManualPositions(view.Set.ID, []ManualPositionRow{
			{EntryID: 10, Position: 1},
			{EntryID: 11, Position: 2, Tied: true},
		})
		require.NoError(t, err)

		byEntry := rowsByEntry(rows)
		assert.EqualValues(t, 1, byEntry[10].Position.Int64)
		assert.EqualValues(t, 1, byEntry[11].Position.Int64)
		assert.EqualValues(t, 14, byEntry[10].Points.Int64)
		assert.EqualValues(t, 14, byEntry[11].Points.Int64)
		assert.True(t, byEntry[11].Tied)
	})

	t.Run("row after a tie block skips past it", func(t *testing.T) {
		store, svc := workflowFixture(t)
		store.addEntry(12, 1, 102, "Cat", sql.NullInt64{}, "", 1100)

		view, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualPosition)
		require.NoError(t, err)

		rows, err := svc.PreviewManualPositions(view.Set.ID, []ManualPositionRow{
			{EntryID: 10, Position: 1},
			{EntryID: 11, Position: 2, Tied: true},
			{EntryID: 12, Position: 3},
		})
		require.NoError(t, err)

		byEntry := rowsByEntry(rows)
		assert.EqualValues(t, 1, byEntry[10].Position.Int64)
		assert.EqualValues(t, 1, byEntry[11].Position.Int64)
		assert.EqualValues(t, 3, byEntry[12].Position.Int64)
		assert.EqualValues(t, 12, byEntry[12].Points.Int64)
	})

	t.Run("save moves the set to saved", func(t *testing.T) {
		saved, err := svc.SaveManualPositions(view.Set.ID, []ManualPositionRow{
			{EntryID: 10, Position: 1},
			{EntryID: 11, Position: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, database.StateSaved, saved.Set.State)
	})
}

func TestTimedScoring(t *testing.T) {
	_, svc := workflowFixture(t)

	_, err := svc.IngestEvent(1, 7, 1, database.EventStart, nil, nil)
	require.NoError(t, err)
	_, err = svc.IngestEvent(1, 7, 2, database.EventLap, ptrInt64(10), ptrFloat64(600))
	require.NoError(t, err)
	_, err = svc.IngestEvent(1, 7, 3, database.EventLap, ptrInt64(11), ptrFloat64(612))
	require.NoError(t, err)

	view, err := svc.GetOrCreateResultSet(1, 100, database.SourceTimed)
	require.NoError(t, err)

	saved, err := svc.SaveTimed(view.Set.ID)
	require.NoError(t, err)

	assert.Equal(t, database.StateSaved, saved.Set.State)
	byEntry := rowsByEntry(saved.Rows)
	require.Contains(t, byEntry, int64(10))
	require.Contains(t, byEntry, int64(11))
	assert.EqualValues(t, 2, byEntry[10].Position.Int64)
	assert.EqualValues(t, 1, byEntry[11].Position.Int64)
	assert.InDelta(t, 600, byEntry[10].ElapsedSeconds.Float64, 0.001)
}

func TestPublishWorkflow(t *testing.T) {
	saveSet := func(t *testing.T, svc *Service, memberID int64) *database.ResultSet {
		t.Helper()
		view, err := svc.GetOrCreateResultSet(1, memberID, database.SourceManualTime)
		require.NoError(t, err)
		saved, err := svc.SaveManualTime(view.Set.ID, []ManualTimeRow{
			{EntryID: 10, Laps: 3, Elapsed: 600},
			{EntryID: 11, Laps: 3, Elapsed: 650},
		})
		require.NoError(t, err)
		return saved.Set
	}

	t.Run("draft cannot be published", func(t *testing.T) {
		_, svc := workflowFixture(t)

		view, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualTime)
		require.NoError(t, err)

		_, err = svc.Publish(view.Set.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("publishing a saved set finishes the race", func(t *testing.T) {
		store, svc := workflowFixture(t)
		set := saveSet(t, svc, 100)

		published, err := svc.Publish(set.ID)
		require.NoError(t, err)

		assert.Equal(t, database.StatePublished, published.State)
		assert.True(t, published.PublishedAt.Valid)
		assert.Equal(t, database.RaceFinished, store.races[1].Status)
	})

	t.Run("publishing demotes the previously published set", func(t *testing.T) {
		store, svc := workflowFixture(t)
		first := saveSet(t, svc, 100)
		second := saveSet(t, svc, 101)

		_, err := svc.Publish(first.ID)
		require.NoError(t, err)
		_, err = svc.Publish(second.ID)
		require.NoError(t, err)

		assert.Equal(t, database.StateSaved, store.sets[first.ID].State)
		assert.Equal(t, database.StatePublished, store.sets[second.ID].State)

		published, err := store.PublishedResultSet(1)
		require.NoError(t, err)
		assert.Equal(t, second.ID, published.ID)
	})

	t.Run("republishing is a no-op", func(t *testing.T) {
		_, svc := workflowFixture(t)
		set := saveSet(t, svc, 100)

		_, err := svc.Publish(set.ID)
		require.NoError(t, err)
		again, err := svc.Publish(set.ID)
		require.NoError(t, err)

		assert.Equal(t, database.StatePublished, again.State)
	})

	t.Run("unpublish returns the set to saved", func(t *testing.T) {
		_, svc := workflowFixture(t)
		set := saveSet(t, svc, 100)

		_, err := svc.Publish(set.ID)
		require.NoError(t, err)
		unpublished, err := svc.Unpublish(set.ID)
		require.NoError(t, err)

		assert.Equal(t, database.StateSaved, unpublished.State)
	})

	t.Run("unpublishing a saved set is rejected", func(t *testing.T) {
		_, svc := workflowFixture(t)
		set := saveSet(t, svc, 100)

		_, err := svc.Unpublish(set.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestEditGuards(t *testing.T) {
	saveAndPublish := func(t *testing.T, svc *Service, memberID int64) *database.ResultSet {
		t.Helper()
		view, err := svc.GetOrCreateResultSet(1, memberID, database.SourceManualTime)
		require.NoError(t, err)
		saved, err := svc.SaveManualTime(view.Set.ID, []ManualTimeRow{{EntryID: 10, Laps: 3, Elapsed: 600}})
		require.NoError(t, err)
		published, err := svc.Publish(saved.Set.ID)
		require.NoError(t, err)
		return published
	}

	t.Run("published set cannot be edited", func(t *testing.T) {
		_, svc := workflowFixture(t)
		set := saveAndPublish(t, svc, 100)

		_, err := svc.SaveManualTime(set.ID, []ManualTimeRow{{EntryID: 10, Laps: 3, Elapsed: 500}})
		assert.ErrorIs(t, err, ErrInvalidState)

		_, err = svc.PreviewManualTime(set.ID, nil)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("finished race blocks edits when another set is published", func(t *testing.T) {
		_, svc := workflowFixture(t)
		saveAndPublish(t, svc, 100)

		// Opening a worksheet is still allowed, writing to it is not.
		other, err := svc.GetOrCreateResultSet(1, 101, database.SourceManualTime)
		require.NoError(t, err)

		_, err = svc.SaveManualTime(other.Set.ID, []ManualTimeRow{{EntryID: 10, Laps: 3, Elapsed: 500}})
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("finished race with nothing published stays editable", func(t *testing.T) {
		store, svc := workflowFixture(t)
		store.races[1].Status = database.RaceFinished

		view, err := svc.GetOrCreateResultSet(1, 100, database.SourceManualTime)
		require.NoError(t, err)

		_, err = svc.SaveManualTime(view.Set.ID, []ManualTimeRow{{EntryID: 10, Laps: 3, Elapsed: 600}})
		assert.NoError(t, err)
	})
}
