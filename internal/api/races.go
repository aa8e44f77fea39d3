package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/clydesc/sailscore/internal/database"

	"github.com/go-chi/chi/v5"
)

// --- Structs for JSON Payloads ---

type createRacePayload struct {
	Name     string `json:"name"`
	RaceDate string `json:"raceDate"` // YYYY-MM-DD
	LeagueID *int64 `json:"leagueId,omitempty"`
}

type addEntryPayload struct {
	HelmID int64  `json:"helmId"`
	CrewID *int64 `json:"crewId,omitempty"`
	BoatID int64  `json:"boatId"`
}

// --- Race Handlers ---

func (s *Server) handleGetRaces(w http.ResponseWriter, r *http.Request) {
	races, err := s.db.GetRaces(s.db.DB())
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"races": races})
}

func (s *Server) handleGetRace(w http.ResponseWriter, r *http.Request) {
	raceID, err := strconv.ParseInt(chi.URLParam(r, "raceID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid race ID"), http.StatusBadRequest)
		return
	}

	race, err := s.db.GetRaceByID(s.db.DB(), raceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.errorJSON(w, errors.New("race not found"), http.StatusNotFound)
			return
		}
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"race": race})
}

func (s *Server) handleCreateRace(w http.ResponseWriter, r *http.Request) {
	var payload createRacePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		s.errorJSON(w, errors.New("name is required"), http.StatusBadRequest)
		return
	}
	raceDate, err := time.Parse("2006-01-02", payload.RaceDate)
	if err != nil {
		s.errorJSON(w, errors.New("invalid raceDate, use YYYY-MM-DD"), http.StatusBadRequest)
		return
	}

	var leagueID sql.NullInt64
	if payload.LeagueID != nil {
		league, err := s.db.GetLeagueByID(s.db.DB(), *payload.LeagueID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.errorJSON(w, errors.New("league not found"), http.StatusNotFound)
				return
			}
			s.errorJSON(w, err, http.StatusInternalServerError)
			return
		}
		// A race only counts toward a league when its date falls in
		// the league's range; reject the mismatch up front.
		if raceDate.Before(league.DateFrom) || raceDate.After(league.DateTo) {
			s.errorJSON(w, errors.New("raceDate is outside the league's date range"), http.StatusBadRequest)
			return
		}
		leagueID = sql.NullInt64{Int64: league.ID, Valid: true}
	}

	var race *database.Race
	err = s.db.WriteTx(func(tx *sql.Tx) error {
		var err error
		race, err = s.db.CreateRace(tx, leagueID, payload.Name, raceDate)
		return err
	})
	if err != nil {
		s.errorJSON(w, errors.New("failed to create race"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"race": race})
}

// --- Race Entry Handlers ---

func (s *Server) handleGetRaceEntries(w http.ResponseWriter, r *http.Request) {
	raceID, err := strconv.ParseInt(chi.URLParam(r, "raceID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid race ID"), http.StatusBadRequest)
		return
	}

	entries, err := s.db.GetRaceEntriesByRaceID(s.db.DB(), raceID)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"entries": toEntryResponseList(entries)})
}

// handleAddRaceEntry enters a sailor/boat pairing into a race. The
// boat's class name and yardstick are snapshotted onto the entry at
// this moment; later changes to the registered boat never touch it.
func (s *Server) handleAddRaceEntry(w http.ResponseWriter, r *http.Request) {
	raceID, err := strconv.ParseInt(chi.URLParam(r, "raceID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid race ID"), http.StatusBadRequest)
		return
	}

	var payload addEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.HelmID == 0 || payload.BoatID == 0 {
		s.errorJSON(w, errors.New("helmId and boatId are required"), http.StatusBadRequest)
		return
	}
	if payload.CrewID != nil && *payload.CrewID == payload.HelmID {
		s.errorJSON(w, errors.New("helm and crew must be different people"), http.StatusBadRequest)
		return
	}

	if _, err := s.db.GetRaceByID(s.db.DB(), raceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.errorJSON(w, errors.New("race not found"), http.StatusNotFound)
			return
		}
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	boat, err := s.db.GetBoatByID(s.db.DB(), payload.BoatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.errorJSON(w, errors.New("boat not found"), http.StatusNotFound)
			return
		}
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	// A person appears at most once per race, as helm or crew.
	people := []int64{payload.HelmID}
	if payload.CrewID != nil {
		people = append(people, *payload.CrewID)
	}
	for _, memberID := range people {
		inRace, err := s.db.IsPersonInRace(s.db.DB(), raceID, memberID)
		if err != nil {
			s.errorJSON(w, err, http.StatusInternalServerError)
			return
		}
		if inRace {
			s.errorJSON(w, errors.New("sailor is already entered in this race"), http.StatusConflict)
			return
		}
	}

	var crewID sql.NullInt64
	if payload.CrewID != nil {
		crewID = sql.NullInt64{Int64: *payload.CrewID, Valid: true}
	}

	var entry *database.RaceEntry
	err = s.db.WriteTx(func(tx *sql.Tx) error {
		var err error
		entry, err = s.db.CreateRaceEntry(tx, raceID, payload.HelmID, crewID, payload.BoatID, boat.ClassName, boat.Yardstick)
		return err
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			s.errorJSON(w, errors.New("this boat is already entered in this race"), http.StatusConflict)
			return
		}
		s.errorJSON(w, errors.New("failed to add race entry"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"entry": toEntryResponse(entry)})
}

// handleDeleteRaceEntry withdraws an entry, allowed only before any
// results reference it.
func (s *Server) handleDeleteRaceEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(chi.URLParam(r, "entryID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid entry ID"), http.StatusBadRequest)
		return
	}

	hasResults, err := s.db.EntryHasResults(s.db.DB(), entryID)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}
	if hasResults {
		s.errorJSON(w, errors.New("entry has recorded results and cannot be deleted"), http.StatusConflict)
		return
	}

	err = s.db.WriteTx(func(tx *sql.Tx) error {
		return s.db.DeleteRaceEntry(tx, entryID)
	})
	if err != nil {
		s.errorJSON(w, errors.New("failed to delete entry"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"message": "entry deleted"})
}
