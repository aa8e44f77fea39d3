package results

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/clydesc/sailscore/internal/database"
	"github.com/clydesc/sailscore/internal/scoring"
)

// Service is the race scoring core: event ingestion, live state
// replay, the result-set workflow, and league standings. It holds no
// state of its own; every call is a self-contained computation over
// data fetched fresh from the store.
type Service struct {
	store     Store
	maxPoints int
}

// NewService wires the scoring core to its persistence port. maxPoints
// is the points-for-first value of the club's scale (14 unless the
// club configures otherwise).
func NewService(store Store, maxPoints int) *Service {
	if maxPoints <= 0 {
		maxPoints = scoring.DefaultMaxPoints
	}
	return &Service{store: store, maxPoints: maxPoints}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// --- Event ingestion ---

// IngestResult reports the outcome of one event submission. Duplicate
// is set when the (device, seq) pair had already been recorded; the
// submission still counts as a success so devices can retry blindly.
type IngestResult struct {
	Duplicate bool
}

var eventKinds = map[string]bool{
	database.EventStart:   true,
	database.EventLap:     true,
	database.EventUndo:    true,
	database.EventFinish:  true,
	database.EventRestart: true,
}

// IngestEvent validates and appends one timing event to a race's log.
//
// Validation here is deliberately stricter than replay: an unknown
// kind, a lap or undo without an entry, or an entry from a different
// race is rejected as ErrMalformedEvent at the door, while the
// replayer merely skips such rows if they somehow reach the log.
func (s *Service) IngestEvent(raceID, deviceID, seq int64, kind string, entryID *int64, raceSeconds *float64) (IngestResult, error) {
	race, err := s.store.Race(raceID)
	if err != nil {
		return IngestResult{}, notFound(err)
	}

	if !eventKinds[kind] {
		return IngestResult{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, kind)
	}
	if (kind == database.EventLap || kind == database.EventUndo) && entryID == nil {
		return IngestResult{}, fmt.Errorf("%w: %s event requires an entry", ErrMalformedEvent, kind)
	}

	ev := &database.RaceEvent{
		RaceID:   raceID,
		DeviceID: deviceID,
		Seq:      seq,
		Kind:     kind,
	}
	if entryID != nil {
		entry, err := s.store.Entry(*entryID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return IngestResult{}, fmt.Errorf("%w: unknown entry %d", ErrMalformedEvent, *entryID)
			}
			return IngestResult{}, err
		}
		if entry.RaceID != raceID {
			return IngestResult{}, fmt.Errorf("%w: entry %d belongs to another race", ErrMalformedEvent, *entryID)
		}
		ev.EntryID = sql.NullInt64{Int64: *entryID, Valid: true}
	}
	if raceSeconds != nil {
		ev.RaceSeconds = sql.NullFloat64{Float64: *raceSeconds, Valid: true}
	}

	inserted, err := s.store.InsertEvent(ev)
	if err != nil {
		return IngestResult{}, err
	}

	// The first start event moves the race out of 'scheduled'. Races
	// further along keep their status; a late-arriving start must not
	// regress a finished race.
	if inserted && kind == database.EventStart && race.Status == database.RaceScheduled {
		if err := s.store.AdvanceRaceStatus(raceID, database.RaceStarted); err != nil {
			return IngestResult{}, err
		}
	}

	return IngestResult{Duplicate: !inserted}, nil
}

// --- Live race state ---

// RaceState replays a race's event log and returns the reconstructed
// state for the requested attempt (latest when attempt < 1). Read-only
// and safe to poll.
func (s *Service) RaceState(raceID int64, attempt int) (*scoring.RaceState, error) {
	if _, err := s.store.Race(raceID); err != nil {
		return nil, notFound(err)
	}

	entries, err := s.store.EntriesByRace(raceID)
	if err != nil {
		return nil, err
	}
	events, err := s.store.EventsByRace(raceID)
	if err != nil {
		return nil, err
	}

	return scoring.Replay(toScoringEvents(events), toEntrants(entries), attempt), nil
}

func toScoringEvents(events []*database.RaceEvent) []scoring.Event {
	out := make([]scoring.Event, 0, len(events))
	for _, ev := range events {
		se := scoring.Event{
			DeviceID: ev.DeviceID,
			Seq:      ev.Seq,
			Kind:     ev.Kind,
		}
		if ev.EntryID.Valid {
			se.EntryID = ev.EntryID.Int64
		}
		if ev.RaceSeconds.Valid {
			se.Seconds = ev.RaceSeconds.Float64
		}
		out = append(out, se)
	}
	return out
}

func toEntrants(entries []*database.RaceEntry) []scoring.Entrant {
	out := make([]scoring.Entrant, 0, len(entries))
	for _, e := range entries {
		out = append(out, scoring.Entrant{
			EntryID:    e.ID,
			HelmName:   e.HelmName,
			SailNumber: e.SailNumber,
			ClassName:  e.ClassName,
			Yardstick:  e.Yardstick,
		})
	}
	return out
}
