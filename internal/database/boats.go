package database

import "errors"

// --- Boat Type Queries ---

func (s *Service) CreateBoatType(db DBorTx, name, description string, yardstick int) (*BoatType, error) {
	query := `INSERT INTO boat_types (name, description, yardstick) VALUES (?, ?, ?);`
	res, err := db.Exec(query, name, description, yardstick)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetBoatTypeByID(db, id)
}

func (s *Service) GetBoatTypeByID(db DBorTx, id int64) (*BoatType, error) {
	query := `SELECT id, name, description, yardstick FROM boat_types WHERE id = ?;`
	bt := &BoatType{}
	err := db.QueryRow(query, id).Scan(&bt.ID, &bt.Name, &bt.Description, &bt.Yardstick)
	return bt, err
}

func (s *Service) GetBoatTypes(db DBorTx) ([]*BoatType, error) {
	query := `SELECT id, name, description, yardstick FROM boat_types ORDER BY name;`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []*BoatType
	for rows.Next() {
		bt := &BoatType{}
		if err := rows.Scan(&bt.ID, &bt.Name, &bt.Description, &bt.Yardstick); err != nil {
			return nil, err
		}
		types = append(types, bt)
	}
	return types, nil
}

func (s *Service) UpdateBoatType(db DBorTx, id int64, name, description string, yardstick int) error {
	query := `UPDATE boat_types SET name = ?, description = ?, yardstick = ? WHERE id = ?;`
	res, err := db.Exec(query, name, description, yardstick, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return errors.New("boat type not found")
	}
	return nil
}

// --- Registered Boat Queries ---

func (s *Service) CreateBoat(db DBorTx, sailNumber string, boatTypeID int64) (*Boat, error) {
	query := `INSERT INTO boats (sail_number, boat_type_id) VALUES (?, ?);`
	res, err := db.Exec(query, sailNumber, boatTypeID)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetBoatByID(db, id)
}

func (s *Service) GetBoatByID(db DBorTx, id int64) (*Boat, error) {
	query := `
		SELECT b.id, b.sail_number, b.boat_type_id, bt.name, bt.yardstick
		FROM boats b
		JOIN boat_types bt ON b.boat_type_id = bt.id
		WHERE b.id = ?;`
	boat := &Boat{}
	err := db.QueryRow(query, id).Scan(&boat.ID, &boat.SailNumber, &boat.BoatTypeID, &boat.ClassName, &boat.Yardstick)
	return boat, err
}

func (s *Service) GetBoats(db DBorTx) ([]*Boat, error) {
	query := `
		SELECT b.id, b.sail_number, b.boat_type_id, bt.name, bt.yardstick
		FROM boats b
		JOIN boat_types bt ON b.boat_type_id = bt.id
		ORDER BY b.sail_number;`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boats []*Boat
	for rows.Next() {
		boat := &Boat{}
		if err := rows.Scan(&boat.ID, &boat.SailNumber, &boat.BoatTypeID, &boat.ClassName, &boat.Yardstick); err != nil {
			return nil, err
		}
		boats = append(boats, boat)
	}
	return boats, nil
}

func (s *Service) UpdateBoat(db DBorTx, id int64, sailNumber string, boatTypeID int64) error {
	query := `UPDATE boats SET sail_number = ?, boat_type_id = ? WHERE id = ?;`
	res, err := db.Exec(query, sailNumber, boatTypeID, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return errors.New("boat not found")
	}
	return nil
}
