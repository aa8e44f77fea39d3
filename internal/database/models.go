package database

import (
	"database/sql"
	"time"
)

// Result set sources. A race can be scored from the automatic timing
// log, from hand-entered elapsed times, or from a hand-entered
// finishing order.
const (
	SourceTimed          = "timed"
	SourceManualTime     = "manual_time"
	SourceManualPosition = "manual_position"
)

// Result set states. The only backward transition is published -> saved.
const (
	StateDraft     = "draft"
	StateSaved     = "saved"
	StatePublished = "published"
)

// Race statuses.
const (
	RaceScheduled = "scheduled"
	RaceStarted   = "started"
	RaceFinished  = "finished"
	RaceVerified  = "verified"
)

// Event kinds recorded by timing devices.
const (
	EventStart   = "start"
	EventLap     = "lap"
	EventUndo    = "undo"
	EventFinish  = "finish"
	EventRestart = "restart"
)

// Member represents a record in the 'members' table.
// It uses `sql.NullString` for fields that can be NULL in the database.
type Member struct {
	ID           int64          `json:"id"`
	Email        string         `json:"email"`
	Alias        sql.NullString `json:"alias"`
	FullName     sql.NullString `json:"fullName"`
	PasswordHash sql.NullString `json:"-"` // Omit from JSON responses for security
	CreatedAt    time.Time      `json:"createdAt"`
}

// BoatType represents a boat class with its Portsmouth Yardstick rating.
type BoatType struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description sql.NullString `json:"description"`
	Yardstick   int            `json:"yardstick"`
}

// Boat represents a registered boat. ClassName and Yardstick are joined
// in from boat_types for convenience, they are not columns on 'boats'.
type Boat struct {
	ID         int64  `json:"id"`
	SailNumber string `json:"sailNumber"`
	BoatTypeID int64  `json:"boatTypeId"`
	ClassName  string `json:"className"`
	Yardstick  int    `json:"yardstick"`
}

// League is a named date range. Standings are derived on demand from
// the finished races inside the range, never stored.
type League struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description sql.NullString `json:"description"`
	DateFrom    time.Time      `json:"dateFrom"`
	DateTo      time.Time      `json:"dateTo"`
}

// Race represents a record in the 'races' table.
type Race struct {
	ID       int64         `json:"id"`
	LeagueID sql.NullInt64 `json:"leagueId"`
	Name     string        `json:"name"`
	RaceDate time.Time     `json:"raceDate"`
	Status   string        `json:"status"`
}

// RaceEntry is one sailor/boat pairing in one race. ClassName and
// Yardstick are copied from the boat at entry time and never updated,
// so later handicap changes cannot retroactively alter past scoring.
type RaceEntry struct {
	ID        int64         `json:"id"`
	RaceID    int64         `json:"raceId"`
	HelmID    int64         `json:"helmId"`
	CrewID    sql.NullInt64 `json:"crewId"`
	BoatID    int64         `json:"boatId"`
	ClassName string        `json:"className"`
	Yardstick int           `json:"yardstick"`
	CreatedAt time.Time     `json:"createdAt"`

	// Populated by JOIN queries for presentation, not columns on
	// 'race_entries' itself.
	HelmName   string         `json:"helmName,omitempty"`
	CrewName   sql.NullString `json:"-"`
	SailNumber string         `json:"sailNumber,omitempty"`
}

// RaceEvent is an immutable, append-only timestamped fact from a timing
// device. Corrections are expressed as new undo or restart events, an
// event row is never mutated or deleted.
type RaceEvent struct {
	ID          int64           `json:"id"`
	RaceID      int64           `json:"raceId"`
	DeviceID    int64           `json:"deviceId"`
	Seq         int64           `json:"seq"`
	Kind        string          `json:"kind"`
	EntryID     sql.NullInt64   `json:"entryId"`
	RaceSeconds sql.NullFloat64 `json:"raceSeconds"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ResultSet is one scorer's derived result table for a race from one
// data source. At most one result set per race is published at a time.
type ResultSet struct {
	ID          int64        `json:"id"`
	RaceID      int64        `json:"raceId"`
	MemberID    int64        `json:"memberId"`
	Source      string       `json:"source"`
	State       string       `json:"state"`
	PublishedAt sql.NullTime `json:"publishedAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ResultSetEntry is one row of a result set. Rows are overwritten
// wholesale whenever the parent result set is recomputed.
type ResultSetEntry struct {
	ID               int64           `json:"id"`
	ResultSetID      int64           `json:"resultSetId"`
	EntryID          int64           `json:"entryId"`
	Laps             sql.NullInt64   `json:"laps"`
	ElapsedSeconds   sql.NullFloat64 `json:"elapsedSeconds"`
	CorrectedSeconds sql.NullFloat64 `json:"correctedSeconds"`
	Position         sql.NullInt64   `json:"position"`
	Points           sql.NullInt64   `json:"points"`
	Tied             bool            `json:"tied"`
}
