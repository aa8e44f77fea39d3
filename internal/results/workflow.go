package results

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/clydesc/sailscore/internal/database"
	"github.com/clydesc/sailscore/internal/scoring"
)

// ResultSetView bundles a result set with its current rows.
type ResultSetView struct {
	Set  *database.ResultSet
	Rows []*database.ResultSetEntry
}

var sources = map[string]bool{
	database.SourceTimed:          true,
	database.SourceManualTime:     true,
	database.SourceManualPosition: true,
}

// GetOrCreateResultSet returns the scorer's result set for (race,
// member, source), creating it lazily on first access.
//
// A new set is seeded by cascading fallback so the scorer starts from
// the best baseline they already have: manual-position seeds from the
// same member's manual-time set, else their timed set; manual-time
// seeds from their timed set. When nothing is available the set gets
// one blank row per race entry.
func (s *Service) GetOrCreateResultSet(raceID, memberID int64, source string) (*ResultSetView, error) {
	if !sources[source] {
		return nil, fmt.Errorf("%w: unknown source %q", ErrMalformedEvent, source)
	}
	if _, err := s.store.Race(raceID); err != nil {
		return nil, notFound(err)
	}

	set, err := s.store.ResultSet(raceID, memberID, source)
	if err == nil {
		rows, err := s.store.ResultRows(set.ID)
		if err != nil {
			return nil, err
		}
		return &ResultSetView{Set: set, Rows: rows}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	set, err = s.store.CreateResultSet(raceID, memberID, source)
	if err != nil {
		return nil, err
	}

	rows, err := s.seedRows(raceID, memberID, source)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveResultRows(set.ID, database.StateDraft, rows); err != nil {
		return nil, err
	}

	rows, err = s.store.ResultRows(set.ID)
	if err != nil {
		return nil, err
	}
	return &ResultSetView{Set: set, Rows: rows}, nil
}

// seedRows picks the starting rows for a freshly created result set.
func (s *Service) seedRows(raceID, memberID int64, source string) ([]*database.ResultSetEntry, error) {
	var fallbacks []string
	switch source {
	case database.SourceManualPosition:
		fallbacks = []string{database.SourceManualTime, database.SourceTimed}
	case database.SourceManualTime:
		fallbacks = []string{database.SourceTimed}
	}

	for _, from := range fallbacks {
		prior, err := s.store.ResultSet(raceID, memberID, from)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rows, err := s.store.ResultRows(prior.ID)
		if err != nil {
			return nil, err
		}
		return copyRows(rows), nil
	}

	// Blank rows: one per race entry, no scores.
	entries, err := s.store.EntriesByRace(raceID)
	if err != nil {
		return nil, err
	}
	blank := make([]*database.ResultSetEntry, 0, len(entries))
	for _, e := range entries {
		blank = append(blank, &database.ResultSetEntry{EntryID: e.ID})
	}
	return blank, nil
}

func copyRows(rows []*database.ResultSetEntry) []*database.ResultSetEntry {
	out := make([]*database.ResultSetEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, &database.ResultSetEntry{
			EntryID:          r.EntryID,
			Laps:             r.Laps,
			ElapsedSeconds:   r.ElapsedSeconds,
			CorrectedSeconds: r.CorrectedSeconds,
			Position:         r.Position,
			Points:           r.Points,
			Tied:             r.Tied,
		})
	}
	return out
}

// guardEditable rejects writes that would silently clobber confirmed
// results. A published set must be unpublished before editing, and
// once the race has moved past active scoring, only the set that was
// published may still be previewed or saved.
func (s *Service) guardEditable(set *database.ResultSet) error {
	if set.State == database.StatePublished {
		return fmt.Errorf("%w: result set is published, unpublish it before editing", ErrInvalidState)
	}

	race, err := s.store.Race(set.RaceID)
	if err != nil {
		return notFound(err)
	}
	if race.Status != database.RaceFinished && race.Status != database.RaceVerified {
		return nil
	}

	published, err := s.store.PublishedResultSet(set.RaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if published.ID != set.ID {
		return fmt.Errorf("%w: race results are already confirmed from another result set, unpublish them first", ErrInvalidState)
	}
	return nil
}

// --- Manual time entry ---

// ManualTimeRow is one scorer-entered (laps, elapsed) pair.
type ManualTimeRow struct {
	EntryID int64
	Laps    int
	Elapsed float64
}

// buildManualTime ranks hand-entered times. Only rows with both laps
// and an elapsed time compete; the maximum lap count among them is the
// fleet reference for correction. Equal corrected times keep their
// input order and still get distinct consecutive positions.
func (s *Service) buildManualTime(rows []ManualTimeRow) []*database.ResultSetEntry {
	type scored struct {
		row       ManualTimeRow
		corrected float64
	}

	fleetLaps := 0
	for _, r := range rows {
		if r.Laps > 0 && r.Elapsed > 0 && r.Laps > fleetLaps {
			fleetLaps = r.Laps
		}
	}

	entriesByID := make(map[int64]*database.ResultSetEntry, len(rows))
	out := make([]*database.ResultSetEntry, 0, len(rows))
	var ranked []scored

	for _, r := range rows {
		entry := &database.ResultSetEntry{EntryID: r.EntryID}
		if r.Laps > 0 {
			entry.Laps = sql.NullInt64{Int64: int64(r.Laps), Valid: true}
		}
		if r.Elapsed > 0 {
			entry.ElapsedSeconds = sql.NullFloat64{Float64: r.Elapsed, Valid: true}
		}
		out = append(out, entry)
		entriesByID[r.EntryID] = entry

		if r.Laps == 0 || r.Elapsed == 0 {
			continue
		}
		yardstick := s.yardstickFor(r.EntryID)
		corrected, ok := scoring.CorrectedSeconds(r.Elapsed, yardstick, r.Laps, fleetLaps)
		if !ok {
			continue
		}
		entry.CorrectedSeconds = sql.NullFloat64{Float64: corrected, Valid: true}
		ranked = append(ranked, scored{row: r, corrected: corrected})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].corrected < ranked[j].corrected
	})
	for i, sc := range ranked {
		entry := entriesByID[sc.row.EntryID]
		entry.Position = sql.NullInt64{Int64: int64(i + 1), Valid: true}
		entry.Points = sql.NullInt64{Int64: int64(scoring.Points(i+1, s.maxPoints)), Valid: true}
	}

	return out
}

// yardstickFor reads an entry's handicap snapshot, 0 when the entry is
// unknown (the row then simply gets no corrected time).
func (s *Service) yardstickFor(entryID int64) int {
	entry, err := s.store.Entry(entryID)
	if err != nil {
		return 0
	}
	return entry.Yardstick
}

// PreviewManualTime ranks hand-entered times without persisting
// anything.
func (s *Service) PreviewManualTime(resultSetID int64, rows []ManualTimeRow) ([]*database.ResultSetEntry, error) {
	set, err := s.resultSet(resultSetID, database.SourceManualTime)
	if err != nil {
		return nil, err
	}
	if err := s.guardEditable(set); err != nil {
		return nil, err
	}
	return s.buildManualTime(rows), nil
}

// SaveManualTime ranks hand-entered times, persists the rows and moves
// the set to saved.
func (s *Service) SaveManualTime(resultSetID int64, rows []ManualTimeRow) (*ResultSetView, error) {
	set, err := s.resultSet(resultSetID, database.SourceManualTime)
	if err != nil {
		return nil, err
	}
	if err := s.guardEditable(set); err != nil {
		return nil, err
	}
	return s.persist(set, s.buildManualTime(rows))
}

// --- Manual position entry ---

// ManualPositionRow is one scorer-assigned finishing place. Tied marks
// a dead heat with the previous row.
type ManualPositionRow struct {
	EntryID  int64
	Position int
	Tied     bool
}

// buildManualPositions compacts the scorer's raw order into display
// positions and scores them.
func (s *Service) buildManualPositions(rows []ManualPositionRow) []*database.ResultSetEntry {
	ordered := make([]ManualPositionRow, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	tied := make([]bool, len(ordered))
	for i, r := range ordered {
		tied[i] = r.Tied
	}
	display := scoring.CompactPositions(tied)

	out := make([]*database.ResultSetEntry, 0, len(ordered))
	for i, r := range ordered {
		out = append(out, &database.ResultSetEntry{
			EntryID:  r.EntryID,
			Position: sql.NullInt64{Int64: int64(display[i]), Valid: true},
			Points:   sql.NullInt64{Int64: int64(scoring.Points(display[i], s.maxPoints)), Valid: true},
			Tied:     r.Tied,
		})
	}
	return out
}

// PreviewManualPositions compacts and scores a hand-entered finishing
// order without persisting anything.
func (s *Service) PreviewManualPositions(resultSetID int64, rows []ManualPositionRow) ([]*database.ResultSetEntry, error) {
	set, err := s.resultSet(resultSetID, database.SourceManualPosition)
	if err != nil {
		return nil, err
	}
	if err := s.guardEditable(set); err != nil {
		return nil, err
	}
	return s.buildManualPositions(rows), nil
}

// SaveManualPositions compacts and scores a hand-entered finishing
// order, persists the rows and moves the set to saved.
func (s *Service) SaveManualPositions(resultSetID int64, rows []ManualPositionRow) (*ResultSetView, error) {
	set, err := s.resultSet(resultSetID, database.SourceManualPosition)
	if err != nil {
		return nil, err
	}
	if err := s.guardEditable(set); err != nil {
		return nil, err
	}
	return s.persist(set, s.buildManualPositions(rows))
}

// --- Timed (automatic) source ---

// buildTimed derives rows from the latest attempt of the race's event
// log and feeds them through the same ranking rule as manual times.
func (s *Service) buildTimed(raceID int64) ([]*database.ResultSetEntry, error) {
	state, err := s.RaceState(raceID, 0)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.EntriesByRace(raceID)
	if err != nil {
		return nil, err
	}

	rows := make([]ManualTimeRow, 0, len(entries))
	for _, e := range entries {
		boat := state.Boats[e.ID]
		if boat == nil {
			continue
		}
		rows = append(rows, ManualTimeRow{EntryID: e.ID, Laps: boat.Laps, Elapsed: boat.Last})
	}
	return s.buildManualTime(rows), nil
}

// PreviewTimed computes the automatic result from the event log without
// persisting anything.
func (s *Service) PreviewTimed(resultSetID int64) ([]*database.ResultSetEntry, error) {
	set, err := s.resultSet(resultSetID, database.SourceTimed)
	if err != nil {
		return nil, err
	}
	if err := s.guardEditable(set); err != nil {
		return nil, err
	}
	return s.buildTimed(set.RaceID)
}

// SaveTimed computes the automatic result from the event log, persists
// the rows and moves the set to saved.
func (s *Service) SaveTimed(resultSetID int64) (*ResultSetView, error) {
	set, err := s.resultSet(resultSetID, database.SourceTimed)
	if err != nil {
		return nil, err
	}
	if err := s.guardEditable(set); err != nil {
		return nil, err
	}
	rows, err := s.buildTimed(set.RaceID)
	if err != nil {
		return nil, err
	}
	return s.persist(set, rows)
}

// --- Publish / unpublish ---

// Publish makes a result set the authoritative result for its race.
// Any previously published set for the race is demoted to saved in the
// same transaction, so there is never a window with two published
// sets. Publishing also advances the race to finished.
func (s *Service) Publish(resultSetID int64) (*database.ResultSet, error) {
	set, err := s.store.ResultSetByID(resultSetID)
	if err != nil {
		return nil, notFound(err)
	}
	if set.State == database.StateDraft {
		return nil, fmt.Errorf("%w: result set has never been saved", ErrInvalidState)
	}
	if set.State == database.StatePublished {
		// Already authoritative; publishing again changes nothing.
		return set, nil
	}

	if err := s.store.PublishResultSet(set.ID, set.RaceID); err != nil {
		return nil, err
	}
	return s.store.ResultSetByID(set.ID)
}

// Unpublish moves a published result set back to saved. No data is
// deleted; the race keeps its finished status.
func (s *Service) Unpublish(resultSetID int64) (*database.ResultSet, error) {
	set, err := s.store.ResultSetByID(resultSetID)
	if err != nil {
		return nil, notFound(err)
	}
	if set.State != database.StatePublished {
		return nil, fmt.Errorf("%w: result set is not published", ErrInvalidState)
	}

	if err := s.store.UnpublishResultSet(set.ID); err != nil {
		return nil, err
	}
	return s.store.ResultSetByID(set.ID)
}

// --- helpers ---

func (s *Service) resultSet(id int64, wantSource string) (*database.ResultSet, error) {
	set, err := s.store.ResultSetByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	if set.Source != wantSource {
		return nil, fmt.Errorf("%w: result set %d has source %q, not %q", ErrInvalidState, id, set.Source, wantSource)
	}
	return set, nil
}

func (s *Service) persist(set *database.ResultSet, rows []*database.ResultSetEntry) (*ResultSetView, error) {
	if err := s.store.SaveResultRows(set.ID, database.StateSaved, rows); err != nil {
		return nil, err
	}

	saved, err := s.store.ResultSetByID(set.ID)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.ResultRows(set.ID)
	if err != nil {
		return nil, err
	}
	return &ResultSetView{Set: saved, Rows: stored}, nil
}
