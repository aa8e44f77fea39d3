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

// leaguePayload uses plain dates, not timestamps: a league is a date
// range on the club calendar.
type leaguePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DateFrom    string `json:"dateFrom"` // YYYY-MM-DD
	DateTo      string `json:"dateTo"`
}

func parseLeagueDates(payload leaguePayload) (from, to time.Time, err error) {
	from, err = time.Parse("2006-01-02", payload.DateFrom)
	if err != nil {
		return from, to, errors.New("invalid dateFrom, use YYYY-MM-DD")
	}
	to, err = time.Parse("2006-01-02", payload.DateTo)
	if err != nil {
		return from, to, errors.New("invalid dateTo, use YYYY-MM-DD")
	}
	if to.Before(from) {
		return from, to, errors.New("dateTo must not be before dateFrom")
	}
	return from, to, nil
}

// --- HTTP Handlers ---

// handleGetLeagues lists leagues, optionally only those whose date
// range covers today (?current=1).
func (s *Server) handleGetLeagues(w http.ResponseWriter, r *http.Request) {
	currentOnly := r.URL.Query().Get("current") != ""

	leagues, err := s.db.GetLeagues(s.db.DB(), currentOnly)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"leagues": leagues})
}

func (s *Server) handleCreateLeague(w http.ResponseWriter, r *http.Request) {
	var payload leaguePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		s.errorJSON(w, errors.New("name is required"), http.StatusBadRequest)
		return
	}
	from, to, err := parseLeagueDates(payload)
	if err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	var league *database.League
	err = s.db.WriteTx(func(tx *sql.Tx) error {
		var err error
		league, err = s.db.CreateLeague(tx, payload.Name, payload.Description, from, to)
		return err
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			s.errorJSON(w, errors.New("a league with this name already exists"), http.StatusConflict)
			return
		}
		s.errorJSON(w, errors.New("failed to create league"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"league": league})
}

func (s *Server) handleUpdateLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, err := strconv.ParseInt(chi.URLParam(r, "leagueID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid league ID"), http.StatusBadRequest)
		return
	}

	var payload leaguePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		s.errorJSON(w, errors.New("name is required"), http.StatusBadRequest)
		return
	}
	from, to, err := parseLeagueDates(payload)
	if err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	err = s.db.WriteTx(func(tx *sql.Tx) error {
		return s.db.UpdateLeague(tx, leagueID, payload.Name, payload.Description, from, to)
	})
	if err != nil {
		s.errorJSON(w, errors.New("failed to update league"), http.StatusInternalServerError)
		return
	}

	league, err := s.db.GetLeagueByID(s.db.DB(), leagueID)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"league": league})
}

// handleGetLeagueStandings computes the league table on demand. Public:
// standings are read-only derived state and safe to poll.
func (s *Server) handleGetLeagueStandings(w http.ResponseWriter, r *http.Request) {
	leagueID, err := strconv.ParseInt(chi.URLParam(r, "leagueID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid league ID"), http.StatusBadRequest)
		return
	}

	standings, err := s.results.LeagueStandings(leagueID)
	if err != nil {
		s.coreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"standings": standings})
}
