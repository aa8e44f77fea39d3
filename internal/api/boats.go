package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/clydesc/sailscore/internal/database"

	"github.com/go-chi/chi/v5"
)

// --- Structs for JSON Payloads ---

type boatTypePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Yardstick   int    `json:"yardstick"`
}

type boatPayload struct {
	SailNumber string `json:"sailNumber"`
	BoatTypeID int64  `json:"boatTypeId"`
}

// validateYardstick enforces the club's Portsmouth Yardstick range.
func validateYardstick(yardstick int) error {
	if yardstick < 1000 || yardstick > 2000 {
		return fmt.Errorf("yardstick must be between 1000 and 2000, got %d", yardstick)
	}
	return nil
}

// --- Boat Type Handlers ---

func (s *Server) handleGetBoatTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.db.GetBoatTypes(s.db.DB())
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"boatTypes": types})
}

func (s *Server) handleCreateBoatType(w http.ResponseWriter, r *http.Request) {
	var payload boatTypePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	if payload.Name == "" {
		s.errorJSON(w, errors.New("name is required"), http.StatusBadRequest)
		return
	}
	if err := validateYardstick(payload.Yardstick); err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	var boatType *database.BoatType
	err := s.db.WriteTx(func(tx *sql.Tx) error {
		var err error
		boatType, err = s.db.CreateBoatType(tx, payload.Name, payload.Description, payload.Yardstick)
		return err
	})
	if err != nil {
		s.errorJSON(w, errors.New("failed to create boat type"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"boatType": boatType})
}

func (s *Server) handleUpdateBoatType(w http.ResponseWriter, r *http.Request) {
	boatTypeID, err := strconv.ParseInt(chi.URLParam(r, "boatTypeID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid boat type ID"), http.StatusBadRequest)
		return
	}

	var payload boatTypePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		s.errorJSON(w, errors.New("name is required"), http.StatusBadRequest)
		return
	}
	if err := validateYardstick(payload.Yardstick); err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	// Note: this changes the registered rating only. Entries snapshot
	// their handicap at entry time, so past race scoring is unaffected.
	err = s.db.WriteTx(func(tx *sql.Tx) error {
		return s.db.UpdateBoatType(tx, boatTypeID, payload.Name, payload.Description, payload.Yardstick)
	})
	if err != nil {
		s.errorJSON(w, errors.New("failed to update boat type"), http.StatusInternalServerError)
		return
	}

	boatType, err := s.db.GetBoatTypeByID(s.db.DB(), boatTypeID)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"boatType": boatType})
}

// --- Registered Boat Handlers ---

func (s *Server) handleGetBoats(w http.ResponseWriter, r *http.Request) {
	boats, err := s.db.GetBoats(s.db.DB())
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"boats": boats})
}

func (s *Server) handleCreateBoat(w http.ResponseWriter, r *http.Request) {
	var payload boatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.SailNumber == "" || payload.BoatTypeID == 0 {
		s.errorJSON(w, errors.New("sailNumber and boatTypeId are required"), http.StatusBadRequest)
		return
	}

	if _, err := s.db.GetBoatTypeByID(s.db.DB(), payload.BoatTypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.errorJSON(w, errors.New("boat type not found"), http.StatusNotFound)
			return
		}
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	var boat *database.Boat
	err := s.db.WriteTx(func(tx *sql.Tx) error {
		var err error
		boat, err = s.db.CreateBoat(tx, payload.SailNumber, payload.BoatTypeID)
		return err
	})
	if err != nil {
		s.errorJSON(w, errors.New("failed to register boat"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"boat": boat})
}

func (s *Server) handleUpdateBoat(w http.ResponseWriter, r *http.Request) {
	boatID, err := strconv.ParseInt(chi.URLParam(r, "boatID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid boat ID"), http.StatusBadRequest)
		return
	}

	var payload boatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.SailNumber == "" || payload.BoatTypeID == 0 {
		s.errorJSON(w, errors.New("sailNumber and boatTypeId are required"), http.StatusBadRequest)
		return
	}

	err = s.db.WriteTx(func(tx *sql.Tx) error {
		return s.db.UpdateBoat(tx, boatID, payload.SailNumber, payload.BoatTypeID)
	})
	if err != nil {
		s.errorJSON(w, errors.New("failed to update boat"), http.StatusInternalServerError)
		return
	}

	boat, err := s.db.GetBoatByID(s.db.DB(), boatID)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"boat": boat})
}
