package database

import (
	"database/sql"
	"time"
)

// --- Result Set Queries ---

func (s *Service) CreateResultSet(db DBorTx, raceID, memberID int64, source string) (*ResultSet, error) {
	query := `INSERT INTO result_sets (race_id, member_id, source, state) VALUES (?, ?, ?, ?);`
	res, err := db.Exec(query, raceID, memberID, source, StateDraft)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetResultSetByID(db, id)
}

func (s *Service) GetResultSetByID(db DBorTx, id int64) (*ResultSet, error) {
	query := `SELECT id, race_id, member_id, source, state, published_at, updated_at FROM result_sets WHERE id = ?;`
	rs := &ResultSet{}
	err := db.QueryRow(query, id).Scan(&rs.ID, &rs.RaceID, &rs.MemberID, &rs.Source, &rs.State, &rs.PublishedAt, &rs.UpdatedAt)
	return rs, err
}

// GetResultSet looks up the one result set for a (race, member, source)
// tuple. Returns sql.ErrNoRows when the scorer has not opened that
// workflow yet.
func (s *Service) GetResultSet(db DBorTx, raceID, memberID int64, source string) (*ResultSet, error) {
	query := `SELECT id, race_id, member_id, source, state, published_at, updated_at
			  FROM result_sets WHERE race_id = ? AND member_id = ? AND source = ?;`
	rs := &ResultSet{}
	err := db.QueryRow(query, raceID, memberID, source).Scan(
		&rs.ID, &rs.RaceID, &rs.MemberID, &rs.Source, &rs.State, &rs.PublishedAt, &rs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func (s *Service) GetResultSetsByRaceID(db DBorTx, raceID int64) ([]*ResultSet, error) {
	query := `SELECT id, race_id, member_id, source, state, published_at, updated_at
			  FROM result_sets WHERE race_id = ? ORDER BY updated_at DESC;`
	rows, err := db.Query(query, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []*ResultSet
	for rows.Next() {
		rs := &ResultSet{}
		if err := rows.Scan(&rs.ID, &rs.RaceID, &rs.MemberID, &rs.Source, &rs.State, &rs.PublishedAt, &rs.UpdatedAt); err != nil {
			return nil, err
		}
		sets = append(sets, rs)
	}
	return sets, nil
}

// GetPublishedResultSet returns the authoritative result set for a
// race, or sql.ErrNoRows when none is published.
func (s *Service) GetPublishedResultSet(db DBorTx, raceID int64) (*ResultSet, error) {
	query := `SELECT id, race_id, member_id, source, state, published_at, updated_at
			  FROM result_sets WHERE race_id = ? AND state = ?;`
	rs := &ResultSet{}
	err := db.QueryRow(query, raceID, StatePublished).Scan(
		&rs.ID, &rs.RaceID, &rs.MemberID, &rs.Source, &rs.State, &rs.PublishedAt, &rs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func (s *Service) UpdateResultSetState(db DBorTx, resultSetID int64, state string, publishedAt sql.NullTime) error {
	query := `UPDATE result_sets SET state = ?, published_at = ?, updated_at = ? WHERE id = ?;`
	_, err := db.Exec(query, state, publishedAt, time.Now(), resultSetID)
	return err
}

// DemotePublishedResultSets moves every published result set for a race
// back to saved. Run inside the same transaction that promotes the new
// set so there is never a window with two published sets.
func (s *Service) DemotePublishedResultSets(tx *sql.Tx, raceID int64) error {
	query := `UPDATE result_sets SET state = ?, published_at = NULL, updated_at = ? WHERE race_id = ? AND state = ?;`
	_, err := tx.Exec(query, StateSaved, time.Now(), raceID, StatePublished)
	return err
}

// --- Result Set Entry Queries ---

// ReplaceResultSetEntries overwrites a result set's rows wholesale.
// Rows are always recomputed as a unit, partial updates don't exist.
func (s *Service) ReplaceResultSetEntries(tx *sql.Tx, resultSetID int64, entries []*ResultSetEntry) error {
	if _, err := tx.Exec(`DELETE FROM result_set_entries WHERE result_set_id = ?;`, resultSetID); err != nil {
		return err
	}

	query := `INSERT INTO result_set_entries
			  (result_set_id, entry_id, laps, elapsed_seconds, corrected_seconds, position, points, tied)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	for _, e := range entries {
		if _, err := tx.Exec(query, resultSetID, e.EntryID, e.Laps, e.ElapsedSeconds, e.CorrectedSeconds, e.Position, e.Points, e.Tied); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`UPDATE result_sets SET updated_at = ? WHERE id = ?;`, time.Now(), resultSetID); err != nil {
		return err
	}
	return nil
}

func (s *Service) GetResultSetEntries(db DBorTx, resultSetID int64) ([]*ResultSetEntry, error) {
	query := `
		SELECT id, result_set_id, entry_id, laps, elapsed_seconds, corrected_seconds, position, points, tied
		FROM result_set_entries
		WHERE result_set_id = ?
		ORDER BY position IS NULL, position, id;`

	rows, err := db.Query(query, resultSetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ResultSetEntry
	for rows.Next() {
		e := &ResultSetEntry{}
		if err := rows.Scan(
			&e.ID, &e.ResultSetID, &e.EntryID, &e.Laps, &e.ElapsedSeconds,
			&e.CorrectedSeconds, &e.Position, &e.Points, &e.Tied,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GetPublishedPointsByRaceID returns resolved points per entry from a
// race's published result set, joined with the entry's helm and crew.
// Used by the league standings aggregation.
func (s *Service) GetPublishedPointsByRaceID(db DBorTx, raceID int64) ([]*ScoredEntry, error) {
	query := `
		SELECT e.id, e.helm_id, COALESCE(h.full_name, h.alias, h.email),
		       e.crew_id, COALESCE(c.full_name, c.alias, c.email),
		       rse.points
		FROM result_sets rs
		JOIN result_set_entries rse ON rse.result_set_id = rs.id
		JOIN race_entries e ON rse.entry_id = e.id
		JOIN members h ON e.helm_id = h.id
		LEFT JOIN members c ON e.crew_id = c.id
		WHERE rs.race_id = ? AND rs.state = ?;`

	rows, err := db.Query(query, raceID, StatePublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scored []*ScoredEntry
	for rows.Next() {
		se := &ScoredEntry{}
		if err := rows.Scan(&se.EntryID, &se.HelmID, &se.HelmName, &se.CrewID, &se.CrewName, &se.Points); err != nil {
			return nil, err
		}
		scored = append(scored, se)
	}
	return scored, nil
}

// ScoredEntry is the slice of a published result row that league
// standings care about. Points are resolved at save time; there is no
// position-based fallback downstream.
type ScoredEntry struct {
	EntryID  int64
	HelmID   int64
	HelmName string
	CrewID   sql.NullInt64
	CrewName sql.NullString
	Points   sql.NullInt64
}
