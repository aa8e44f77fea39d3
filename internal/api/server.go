package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clydesc/sailscore/internal/config"
	"github.com/clydesc/sailscore/internal/database"
	"github.com/clydesc/sailscore/internal/email"
	"github.com/clydesc/sailscore/internal/results"
)

// Server is the main struct for the API. It holds all dependencies
// required by the HTTP handlers: the application configuration, the
// database service, the scoring core and the mailer. Injecting them
// here keeps the handlers modular and easy to test.
type Server struct {
	config  *config.Config
	db      *database.Service
	results *results.Service
	email   *email.EmailService
}

// NewServer wires the handler dependencies into a new Server instance.
func NewServer(cfg *config.Config, db *database.Service, res *results.Service, email *email.EmailService) *Server {
	return &Server{
		config:  cfg,
		db:      db,
		results: res,
		email:   email,
	}
}

// envelope is a custom map type used for creating structured JSON
// responses, e.g. `envelope{"race": raceObject}`.
type envelope map[string]interface{}

// writeJSON is a helper method for sending JSON responses. It marshals
// the data, sets the Content-Type header and writes the status code,
// so all responses stay consistent.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}, headers ...http.Header) {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		http.Error(w, "Internal Server Error: Failed to marshal JSON", http.StatusInternalServerError)
		return
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

// errorJSON sends a standardized `{"error": "message"}` response.
// Defaults to 500 when no status is provided.
func (s *Server) errorJSON(w http.ResponseWriter, err error, status ...int) {
	statusCode := http.StatusInternalServerError
	if len(status) > 0 {
		statusCode = status[0]
	}

	s.writeJSON(w, statusCode, envelope{"error": err.Error()})
}

// coreError maps the scoring core's error taxonomy onto HTTP statuses:
// not-found to 404, workflow conflicts to 409, malformed events to
// 400, anything else to 500.
func (s *Server) coreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, results.ErrNotFound):
		s.errorJSON(w, err, http.StatusNotFound)
	case errors.Is(err, results.ErrInvalidState):
		s.errorJSON(w, err, http.StatusConflict)
	case errors.Is(err, results.ErrMalformedEvent):
		s.errorJSON(w, err, http.StatusBadRequest)
	case errors.Is(err, errForbidden):
		s.errorJSON(w, err, http.StatusForbidden)
	default:
		s.errorJSON(w, err, http.StatusInternalServerError)
	}
}
