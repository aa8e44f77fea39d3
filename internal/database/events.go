package database

import "database/sql"

// --- Race Event Queries ---

// InsertRaceEvent appends a timing event. The (device_id, seq) UNIQUE
// constraint detects duplicate submissions atomically at insert time;
// a violation is reported as inserted=false with a nil error, so a
// device can safely retry over an unreliable link.
func (s *Service) InsertRaceEvent(db DBorTx, raceID, deviceID, seq int64, kind string, entryID sql.NullInt64, raceSeconds sql.NullFloat64) (inserted bool, err error) {
	query := `INSERT INTO race_events (race_id, device_id, seq, kind, entry_id, race_seconds)
			  VALUES (?, ?, ?, ?, ?, ?);`
	_, err = db.Exec(query, raceID, deviceID, seq, kind, entryID, raceSeconds)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetRaceEventsByRaceID returns a race's full event log in replay
// order: (device_id, seq) ascending. This ordering is a stable proxy
// for submission order within each device and must not change.
func (s *Service) GetRaceEventsByRaceID(db DBorTx, raceID int64) ([]*RaceEvent, error) {
	query := `
		SELECT id, race_id, device_id, seq, kind, entry_id, race_seconds, created_at
		FROM race_events
		WHERE race_id = ?
		ORDER BY device_id, seq;`

	rows, err := db.Query(query, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*RaceEvent
	for rows.Next() {
		ev := &RaceEvent{}
		if err := rows.Scan(
			&ev.ID, &ev.RaceID, &ev.DeviceID, &ev.Seq, &ev.Kind,
			&ev.EntryID, &ev.RaceSeconds, &ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
