package results

import (
	"github.com/clydesc/sailscore/internal/database"
)

// Store is the persistence port the results service works against. The
// production implementation is SQLStore over the club's SQLite
// database; tests use an in-memory fake. Methods that must be atomic
// (publish, row replacement) own their transaction internally, the
// service never sees one.
//
// Lookup methods return sql.ErrNoRows for missing records, matching
// database/sql conventions; the service translates that to ErrNotFound
// at its boundary.
type Store interface {
	Race(id int64) (*database.Race, error)
	AdvanceRaceStatus(raceID int64, status string) error

	Entry(id int64) (*database.RaceEntry, error)
	EntriesByRace(raceID int64) ([]*database.RaceEntry, error)

	EventsByRace(raceID int64) ([]*database.RaceEvent, error)
	// InsertEvent reports inserted=false for a duplicate (device, seq)
	// pair, with no error. Duplicates are a success, not a failure.
	InsertEvent(ev *database.RaceEvent) (inserted bool, err error)

	ResultSetByID(id int64) (*database.ResultSet, error)
	ResultSet(raceID, memberID int64, source string) (*database.ResultSet, error)
	CreateResultSet(raceID, memberID int64, source string) (*database.ResultSet, error)
	PublishedResultSet(raceID int64) (*database.ResultSet, error)

	ResultRows(resultSetID int64) ([]*database.ResultSetEntry, error)
	// SaveResultRows atomically replaces a result set's rows and moves
	// it to the given state.
	SaveResultRows(resultSetID int64, state string, rows []*database.ResultSetEntry) error

	// PublishResultSet atomically demotes any published set for the
	// race to saved, promotes the target with a publish timestamp, and
	// advances the race to finished if it has not moved past that.
	PublishResultSet(resultSetID, raceID int64) error
	// UnpublishResultSet moves a published set back to saved.
	UnpublishResultSet(resultSetID int64) error

	League(id int64) (*database.League, error)
	FinishedRacesByLeague(leagueID int64) ([]*database.Race, error)
	PublishedPointsByRace(raceID int64) ([]*database.ScoredEntry, error)
}
