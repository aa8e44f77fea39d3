package database

import (
	"database/sql"
	"errors"
	"time"
)

// --- Race Queries ---

func (s *Service) CreateRace(db DBorTx, leagueID sql.NullInt64, name string, raceDate time.Time) (*Race, error) {
	query := `INSERT INTO races (league_id, name, race_date) VALUES (?, ?, ?);`
	res, err := db.Exec(query, leagueID, name, raceDate)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetRaceByID(db, id)
}

func (s *Service) GetRaceByID(db DBorTx, id int64) (*Race, error) {
	query := `SELECT id, league_id, name, race_date, status FROM races WHERE id = ?;`
	race := &Race{}
	err := db.QueryRow(query, id).Scan(&race.ID, &race.LeagueID, &race.Name, &race.RaceDate, &race.Status)
	return race, err
}

func (s *Service) GetRaces(db DBorTx) ([]*Race, error) {
	query := `SELECT id, league_id, name, race_date, status FROM races ORDER BY race_date DESC;`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var races []*Race
	for rows.Next() {
		race := &Race{}
		if err := rows.Scan(&race.ID, &race.LeagueID, &race.Name, &race.RaceDate, &race.Status); err != nil {
			return nil, err
		}
		races = append(races, race)
	}
	return races, nil
}

func (s *Service) UpdateRaceStatus(db DBorTx, raceID int64, status string) error {
	query := `UPDATE races SET status = ? WHERE id = ?;`
	res, err := db.Exec(query, status, raceID)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return errors.New("race not found")
	}
	return nil
}

// --- Race Entry Queries ---

// CreateRaceEntry records a sailor/boat pairing for a race. The boat's
// class name and yardstick are passed in explicitly so the caller
// snapshots them from the boat record at entry time.
func (s *Service) CreateRaceEntry(db DBorTx, raceID, helmID int64, crewID sql.NullInt64, boatID int64, className string, yardstick int) (*RaceEntry, error) {
	query := `INSERT INTO race_entries (race_id, helm_id, crew_id, boat_id, class_name, yardstick)
			  VALUES (?, ?, ?, ?, ?, ?);`
	res, err := db.Exec(query, raceID, helmID, crewID, boatID, className, yardstick)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetRaceEntryByID(db, id)
}

func (s *Service) GetRaceEntryByID(db DBorTx, id int64) (*RaceEntry, error) {
	query := `
		SELECT e.id, e.race_id, e.helm_id, e.crew_id, e.boat_id, e.class_name, e.yardstick, e.created_at,
		       COALESCE(h.full_name, h.alias, h.email), c.full_name, b.sail_number
		FROM race_entries e
		JOIN members h ON e.helm_id = h.id
		LEFT JOIN members c ON e.crew_id = c.id
		JOIN boats b ON e.boat_id = b.id
		WHERE e.id = ?;`
	entry := &RaceEntry{}
	err := db.QueryRow(query, id).Scan(
		&entry.ID, &entry.RaceID, &entry.HelmID, &entry.CrewID, &entry.BoatID,
		&entry.ClassName, &entry.Yardstick, &entry.CreatedAt,
		&entry.HelmName, &entry.CrewName, &entry.SailNumber,
	)
	return entry, err
}

func (s *Service) GetRaceEntriesByRaceID(db DBorTx, raceID int64) ([]*RaceEntry, error) {
	query := `
		SELECT e.id, e.race_id, e.helm_id, e.crew_id, e.boat_id, e.class_name, e.yardstick, e.created_at,
		       COALESCE(h.full_name, h.alias, h.email), c.full_name, b.sail_number
		FROM race_entries e
		JOIN members h ON e.helm_id = h.id
		LEFT JOIN members c ON e.crew_id = c.id
		JOIN boats b ON e.boat_id = b.id
		WHERE e.race_id = ?
		ORDER BY b.sail_number;`

	rows, err := db.Query(query, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*RaceEntry
	for rows.Next() {
		entry := &RaceEntry{}
		if err := rows.Scan(
			&entry.ID, &entry.RaceID, &entry.HelmID, &entry.CrewID, &entry.BoatID,
			&entry.ClassName, &entry.Yardstick, &entry.CreatedAt,
			&entry.HelmName, &entry.CrewName, &entry.SailNumber,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// IsPersonInRace checks whether a member already appears in a race as
// helm or crew. A person may enter a race at most once.
func (s *Service) IsPersonInRace(db DBorTx, raceID, memberID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM race_entries WHERE race_id = ? AND (helm_id = ? OR crew_id = ?));`
	var exists bool
	err := db.QueryRow(query, raceID, memberID, memberID).Scan(&exists)
	return exists, err
}

// EntryHasResults reports whether any result set row references the
// entry. Entries with results are immutable and cannot be deleted.
func (s *Service) EntryHasResults(db DBorTx, entryID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM result_set_entries WHERE entry_id = ?);`
	var exists bool
	err := db.QueryRow(query, entryID).Scan(&exists)
	return exists, err
}

func (s *Service) DeleteRaceEntry(db DBorTx, entryID int64) error {
	res, err := db.Exec(`DELETE FROM race_entries WHERE id = ?;`, entryID)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return errors.New("race entry not found")
	}
	return nil
}
