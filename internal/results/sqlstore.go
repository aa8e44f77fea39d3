package results

import (
	"database/sql"
	"time"

	"github.com/clydesc/sailscore/internal/database"
)

// SQLStore implements Store over the club's SQLite database. Reads go
// straight to the connection; anything that must be atomic runs inside
// the service's serialised write transaction.
type SQLStore struct {
	db *database.Service
}

// NewSQLStore wraps the database service as a results store.
func NewSQLStore(db *database.Service) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Race(id int64) (*database.Race, error) {
	return s.db.GetRaceByID(s.db.DB(), id)
}

func (s *SQLStore) AdvanceRaceStatus(raceID int64, status string) error {
	return s.db.WriteTx(func(tx *sql.Tx) error {
		return s.db.UpdateRaceStatus(tx, raceID, status)
	})
}

func (s *SQLStore) Entry(id int64) (*database.RaceEntry, error) {
	return s.db.GetRaceEntryByID(s.db.DB(), id)
}

func (s *SQLStore) EntriesByRace(raceID int64) ([]*database.RaceEntry, error) {
	return s.db.GetRaceEntriesByRaceID(s.db.DB(), raceID)
}

func (s *SQLStore) EventsByRace(raceID int64) ([]*database.RaceEvent, error) {
	return s.db.GetRaceEventsByRaceID(s.db.DB(), raceID)
}

func (s *SQLStore) InsertEvent(ev *database.RaceEvent) (bool, error) {
	var inserted bool
	err := s.db.WriteTx(func(tx *sql.Tx) error {
		var err error
		inserted, err = s.db.InsertRaceEvent(tx, ev.RaceID, ev.DeviceID, ev.Seq, ev.Kind, ev.EntryID, ev.RaceSeconds)
		return err
	})
	return inserted, err
}

func (s *SQLStore) ResultSetByID(id int64) (*database.ResultSet, error) {
	return s.db.GetResultSetByID(s.db.DB(), id)
}

func (s *SQLStore) ResultSet(raceID, memberID int64, source string) (*database.ResultSet, error) {
	return s.db.GetResultSet(s.db.DB(), raceID, memberID, source)
}

func (s *SQLStore) CreateResultSet(raceID, memberID int64, source string) (*database.ResultSet, error) {
	var set *database.ResultSet
	err := s.db.WriteTx(func(tx *sql.Tx) error {
		var err error
		set, err = s.db.CreateResultSet(tx, raceID, memberID, source)
		return err
	})
	return set, err
}

func (s *SQLStore) PublishedResultSet(raceID int64) (*database.ResultSet, error) {
	return s.db.GetPublishedResultSet(s.db.DB(), raceID)
}

func (s *SQLStore) ResultRows(resultSetID int64) ([]*database.ResultSetEntry, error) {
	return s.db.GetResultSetEntries(s.db.DB(), resultSetID)
}

func (s *SQLStore) SaveResultRows(resultSetID int64, state string, rows []*database.ResultSetEntry) error {
	return s.db.WriteTx(func(tx *sql.Tx) error {
		if err := s.db.ReplaceResultSetEntries(tx, resultSetID, rows); err != nil {
			return err
		}
		return s.db.UpdateResultSetState(tx, resultSetID, state, sql.NullTime{})
	})
}

// PublishResultSet demotes any published set for the race and promotes
// the target within one transaction, so the one-published-set-per-race
// invariant holds at every instant. The race is advanced to finished
// unless it has already moved further.
func (s *SQLStore) PublishResultSet(resultSetID, raceID int64) error {
	return s.db.WriteTx(func(tx *sql.Tx) error {
		if err := s.db.DemotePublishedResultSets(tx, raceID); err != nil {
			return err
		}

		publishedAt := sql.NullTime{Time: time.Now(), Valid: true}
		if err := s.db.UpdateResultSetState(tx, resultSetID, database.StatePublished, publishedAt); err != nil {
			return err
		}

		race, err := s.db.GetRaceByID(tx, raceID)
		if err != nil {
			return err
		}
		if race.Status != database.RaceFinished && race.Status != database.RaceVerified {
			return s.db.UpdateRaceStatus(tx, raceID, database.RaceFinished)
		}
		return nil
	})
}

func (s *SQLStore) UnpublishResultSet(resultSetID int64) error {
	return s.db.WriteTx(func(tx *sql.Tx) error {
		return s.db.UpdateResultSetState(tx, resultSetID, database.StateSaved, sql.NullTime{})
	})
}

func (s *SQLStore) League(id int64) (*database.League, error) {
	return s.db.GetLeagueByID(s.db.DB(), id)
}

func (s *SQLStore) FinishedRacesByLeague(leagueID int64) ([]*database.Race, error) {
	return s.db.GetFinishedRacesByLeagueID(s.db.DB(), leagueID)
}

func (s *SQLStore) PublishedPointsByRace(raceID int64) ([]*database.ScoredEntry, error) {
	return s.db.GetPublishedPointsByRaceID(s.db.DB(), raceID)
}
