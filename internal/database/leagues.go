package database

import (
	"errors"
	"time"
)

// --- League Queries ---

func (s *Service) CreateLeague(db DBorTx, name, description string, dateFrom, dateTo time.Time) (*League, error) {
	query := `INSERT INTO leagues (name, description, date_from, date_to) VALUES (?, ?, ?, ?);`
	res, err := db.Exec(query, name, description, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetLeagueByID(db, id)
}

func (s *Service) GetLeagueByID(db DBorTx, id int64) (*League, error) {
	query := `SELECT id, name, description, date_from, date_to FROM leagues WHERE id = ?;`
	league := &League{}
	err := db.QueryRow(query, id).Scan(&league.ID, &league.Name, &league.Description, &league.DateFrom, &league.DateTo)
	return league, err
}

// GetLeagues lists all leagues. When currentOnly is set, only leagues
// whose date range covers today are returned.
func (s *Service) GetLeagues(db DBorTx, currentOnly bool) ([]*League, error) {
	query := `SELECT id, name, description, date_from, date_to FROM leagues ORDER BY date_from;`
	args := []interface{}{}
	if currentOnly {
		query = `SELECT id, name, description, date_from, date_to FROM leagues
				 WHERE date_from <= ? AND date_to >= ?
				 ORDER BY date_from;`
		today := time.Now()
		args = append(args, today, today)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leagues []*League
	for rows.Next() {
		league := &League{}
		if err := rows.Scan(&league.ID, &league.Name, &league.Description, &league.DateFrom, &league.DateTo); err != nil {
			return nil, err
		}
		leagues = append(leagues, league)
	}
	return leagues, nil
}

func (s *Service) UpdateLeague(db DBorTx, id int64, name, description string, dateFrom, dateTo time.Time) error {
	query := `UPDATE leagues SET name = ?, description = ?, date_from = ?, date_to = ? WHERE id = ?;`
	res, err := db.Exec(query, name, description, dateFrom, dateTo, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return errors.New("league not found")
	}
	return nil
}

// GetFinishedRacesByLeagueID returns the races that count toward a
// league's standings: status 'finished' or later, inside the league's
// date range.
func (s *Service) GetFinishedRacesByLeagueID(db DBorTx, leagueID int64) ([]*Race, error) {
	query := `
		SELECT r.id, r.league_id, r.name, r.race_date, r.status
		FROM races r
		JOIN leagues l ON r.league_id = l.id
		WHERE l.id = ?
		  AND r.status IN (?, ?)
		  AND r.race_date >= l.date_from AND r.race_date <= l.date_to
		ORDER BY r.race_date;`

	rows, err := db.Query(query, leagueID, RaceFinished, RaceVerified)
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
