package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ingestEventPayload is one timing-device submission. Seq must be the
// device's own strictly increasing counter; resubmitting the same pair
// is harmless.
type ingestEventPayload struct {
	DeviceID    int64    `json:"deviceId"`
	Seq         int64    `json:"seq"`
	Kind        string   `json:"kind"`
	EntryID     *int64   `json:"entryId,omitempty"`
	RaceSeconds *float64 `json:"raceSeconds,omitempty"`
}

// handleIngestEvent appends one event to a race's log. A duplicate
// (device, seq) pair responds 200 with duplicate=true, never an error,
// so the race box can retry over a flaky club-house WiFi link.
func (s *Server) handleIngestEvent(w http.ResponseWriter, r *http.Request) {
	raceID, err := strconv.ParseInt(chi.URLParam(r, "raceID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid race ID"), http.StatusBadRequest)
		return
	}

	var payload ingestEventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.DeviceID == 0 || payload.Seq == 0 {
		s.errorJSON(w, errors.New("deviceId and seq are required"), http.StatusBadRequest)
		return
	}

	res, err := s.results.IngestEvent(raceID, payload.DeviceID, payload.Seq, payload.Kind, payload.EntryID, payload.RaceSeconds)
	if err != nil {
		s.coreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"ok": true, "duplicate": res.Duplicate})
}

// handleGetRaceState replays the event log and returns the live
// leaderboard. Read-only and cheap, the frontend polls it during a
// race. ?attempt=n selects an earlier attempt after a restart.
func (s *Server) handleGetRaceState(w http.ResponseWriter, r *http.Request) {
	raceID, err := strconv.ParseInt(chi.URLParam(r, "raceID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid race ID"), http.StatusBadRequest)
		return
	}

	attempt := 0
	if raw := r.URL.Query().Get("attempt"); raw != "" {
		attempt, err = strconv.Atoi(raw)
		if err != nil {
			s.errorJSON(w, errors.New("invalid attempt number"), http.StatusBadRequest)
			return
		}
	}

	state, err := s.results.RaceState(raceID, attempt)
	if err != nil {
		s.coreError(w, err)
		return
	}

	entries, err := s.db.GetRaceEntriesByRaceID(s.db.DB(), raceID)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, toRaceStateResponse(state, entries))
}
