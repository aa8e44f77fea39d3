package results

import (
	"database/sql"
	"testing"

	"github.com/clydesc/sailscore/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// publishRace saves and publishes a manual-time result for the race, the
// first listed entry winning.
func publishRace(t *testing.T, svc *Service, raceID int64, entryIDs ...int64) {
	t.Helper()
	view, err := svc.GetOrCreateResultSet(raceID, 1, database.SourceManualTime)
	require.NoError(t, err)

	rows := make([]ManualTimeRow, 0, len(entryIDs))
	for i, id := range entryIDs {
		rows = append(rows, ManualTimeRow{EntryID: id, Laps: 3, Elapsed: float64(600 + 60*i)})
	}
	saved, err := svc.SaveManualTime(view.Set.ID, rows)
	require.NoError(t, err)
	_, err = svc.Publish(saved.Set.ID)
	require.NoError(t, err)
}

func TestLeagueStandings(t *testing.T) {
	t.Run("unknown league", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		_, err := svc.LeagueStandings(5)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("league with no finished races is empty not an error", func(t *testing.T) {
		store := newFakeStore()
		store.addLeague(5)
		svc := newTestService(store)

		standings, err := svc.LeagueStandings(5)
		require.NoError(t, err)
		assert.Empty(t, standings)
	})

	t.Run("totals and ordering across races", func(t *testing.T) {
		store := newFakeStore()
		store.addLeague(5)
		league := sql.NullInt64{Int64: 5, Valid: true}

		// Two races, helm 100 wins both, helm 101 second both.
		store.addRace(1, league, database.RaceStarted)
		store.addEntry(10, 1, 100, "Ada", sql.NullInt64{}, "", 1000)
		store.addEntry(11, 1, 101, "Ben", sql.NullInt64{}, "", 1000)
		store.addRace(2, league, database.RaceStarted)
		store.addEntry(20, 2, 100, "Ada", sql.NullInt64{}, "", 1000)
		store.addEntry(21, 2, 101, "Ben", sql.NullInt64{}, "", 1000)

		svc := newTestService(store)
		publishRace(t, svc, 1, 10, 11)
		publishRace(t, svc, 2, 20, 21)

		standings, err := svc.LeagueStandings(5)
		require.NoError(t, err)
		require.Len(t, standings, 2)

		assert.EqualValues(t, 100, standings[0].MemberID)
		assert.Equal(t, "Ada", standings[0].Name)
		assert.Equal(t, 2, standings[0].RacesSailed)
		assert.Equal(t, 2, standings[0].RacesCounted)
		assert.Equal(t, 28, standings[0].TotalPoints)

		assert.EqualValues(t, 101, standings[1].MemberID)
		assert.Equal(t, 26, standings[1].TotalPoints)
	})

	t.Run("crew scores the race's points too", func(t *testing.T) {
		store := newFakeStore()
		store.addLeague(5)
		league := sql.NullInt64{Int64: 5, Valid: true}

		store.addRace(1, league, database.RaceStarted)
		crew := sql.NullInt64{Int64: 102, Valid: true}
		store.addEntry(10, 1, 100, "Ada", crew, "Cat", 1000)
		store.addEntry(11, 1, 101, "Ben", sql.NullInt64{}, "", 1000)

		svc := newTestService(store)
		publishRace(t, svc, 1, 10, 11)

		standings, err := svc.LeagueStandings(5)
		require.NoError(t, err)
		require.Len(t, standings, 3)

		byMember := make(map[int64]StandingRow, len(standings))
		for _, row := range standings {
			byMember[row.MemberID] = row
		}

		assert.Equal(t, 14, byMember[100].TotalPoints)
		assert.Equal(t, 14, byMember[102].TotalPoints)
		assert.Equal(t, "Cat", byMember[102].Name)
		assert.Equal(t, 13, byMember[101].TotalPoints)
	})

	t.Run("discards drop worst scores past the limit", func(t *testing.T) {
		store := newFakeStore()
		store.addLeague(5)
		league := sql.NullInt64{Int64: 5, Valid: true}

		// Three races; the limit is ceil(3 * 0.66) = 2 counted races.
		// Ada wins races 1 and 2 and is second in race 3, so her third
		// score is discarded. Ben counts his two wins the same way.
		for raceID := int64(1); raceID <= 3; raceID++ {
			store.addRace(raceID, league, database.RaceStarted)
			store.addEntry(raceID*10, raceID, 100, "Ada", sql.NullInt64{}, "", 1000)
			store.addEntry(raceID*10+1, raceID, 101, "Ben", sql.NullInt64{}, "", 1000)
		}

		svc := newTestService(store)
		publishRace(t, svc, 1, 10, 11)
		publishRace(t, svc, 2, 20, 21)
		publishRace(t, svc, 3, 31, 30)

		standings, err := svc.LeagueStandings(5)
		require.NoError(t, err)
		require.Len(t, standings, 2)

		for _, row := range standings {
			assert.Equal(t, 3, row.RacesSailed)
			assert.Equal(t, 2, row.RacesCounted)
			// Best two of {14, 14, 13} either way.
			assert.Equal(t, 28, row.TotalPoints)
		}

		// Equal totals order by member id for a deterministic table.
		assert.EqualValues(t, 100, standings[0].MemberID)
		assert.EqualValues(t, 101, standings[1].MemberID)
	})

	t.Run("races outside the league are ignored", func(t *testing.T) {
		store := newFakeStore()
		store.addLeague(5)
		league := sql.NullInt64{Int64: 5, Valid: true}

		store.addRace(1, league, database.RaceStarted)
		store.addEntry(10, 1, 100, "Ada", sql.NullInt64{}, "", 1000)

		// Same sailor in an open race with no league.
		store.addRace(2, sql.NullInt64{}, database.RaceStarted)
		store.addEntry(20, 2, 100, "Ada", sql.NullInt64{}, "", 1000)

		svc := newTestService(store)
		publishRace(t, svc, 1, 10)
		publishRace(t, svc, 2, 20)

		standings, err := svc.LeagueStandings(5)
		require.NoError(t, err)
		require.Len(t, standings, 1)
		assert.Equal(t, 1, standings[0].RacesSailed)
	})

	t.Run("rows without resolved points score zero", func(t *testing.T) {
		store := newFakeStore()
		store.addLeague(5)
		league := sql.NullInt64{Int64: 5, Valid: true}

		store.addRace(1, league, database.RaceFinished)
		store.addEntry(10, 1, 100, "Ada", sql.NullInt64{}, "", 1000)

		set, err := store.CreateResultSet(1, 1, database.SourceManualTime)
		require.NoError(t, err)
		err = store.SaveResultRows(set.ID, database.StateSaved, []*database.ResultSetEntry{
			{EntryID: 10},
		})
		require.NoError(t, err)
		require.NoError(t, store.PublishResultSet(set.ID, 1))

		svc := newTestService(store)
		standings, err := svc.LeagueStandings(5)
		require.NoError(t, err)
		require.Len(t, standings, 1)
		assert.Equal(t, 0, standings[0].TotalPoints)
		assert.Equal(t, 1, standings[0].RacesSailed)
	})
}
