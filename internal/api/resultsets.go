package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/clydesc/sailscore/internal/database"
	"github.com/clydesc/sailscore/internal/results"

	"github.com/go-chi/chi/v5"
)

// errForbidden marks requests for a result set the member doesn't own.
var errForbidden = errors.New("not your result set")

// --- Structs for JSON Payloads ---

type manualTimeRowPayload struct {
	EntryID int64   `json:"entryId"`
	Laps    int     `json:"laps"`
	Elapsed float64 `json:"elapsedSeconds"`
}

type manualTimeRowsPayload struct {
	Rows []manualTimeRowPayload `json:"rows"`
}

type manualPositionRowPayload struct {
	EntryID  int64 `json:"entryId"`
	Position int   `json:"position"`
	Tied     bool  `json:"tied"`
}

type manualPositionRowsPayload struct {
	Rows []manualPositionRowPayload `json:"rows"`
}

func toManualTimeRows(payload manualTimeRowsPayload) []results.ManualTimeRow {
	rows := make([]results.ManualTimeRow, 0, len(payload.Rows))
	for _, r := range payload.Rows {
		rows = append(rows, results.ManualTimeRow{EntryID: r.EntryID, Laps: r.Laps, Elapsed: r.Elapsed})
	}
	return rows
}

func toManualPositionRows(payload manualPositionRowsPayload) []results.ManualPositionRow {
	rows := make([]results.ManualPositionRow, 0, len(payload.Rows))
	for _, r := range payload.Rows {
		rows = append(rows, results.ManualPositionRow{EntryID: r.EntryID, Position: r.Position, Tied: r.Tied})
	}
	return rows
}

// --- HTTP Handlers ---

// handleGetOrCreateResultSet opens a scoring workflow for the
// logged-in member: their result set for (race, source), created and
// seeded on first access.
func (s *Server) handleGetOrCreateResultSet(w http.ResponseWriter, r *http.Request) {
	memberID, err := s.getMemberIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	raceID, err := strconv.ParseInt(chi.URLParam(r, "raceID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid race ID"), http.StatusBadRequest)
		return
	}
	source := chi.URLParam(r, "source")

	view, err := s.results.GetOrCreateResultSet(raceID, memberID, source)
	if err != nil {
		s.coreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"resultSet": toResultSetViewResponse(view)})
}

// resultSetForMember loads a result set and checks it belongs to the
// logged-in member. Result sets are personal worksheets; only
// publishing makes one visible to league scoring.
func (s *Server) resultSetForMember(r *http.Request) (*database.ResultSet, error) {
	memberID, err := s.getMemberIDFromContext(r)
	if err != nil {
		return nil, err
	}

	resultSetID, err := strconv.ParseInt(chi.URLParam(r, "resultSetID"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid result set ID")
	}

	set, err := s.db.GetResultSetByID(s.db.DB(), resultSetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, results.ErrNotFound
		}
		return nil, err
	}
	if set.MemberID != memberID {
		return nil, errForbidden
	}
	return set, nil
}

// handlePreviewResultSet ranks the submitted rows without persisting
// anything, so the scorer can sanity-check before saving.
func (s *Server) handlePreviewResultSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.resultSetForMember(r)
	if err != nil {
		s.coreError(w, err)
		return
	}

	var rows []*database.ResultSetEntry
	switch set.Source {
	case database.SourceManualTime:
		var payload manualTimeRowsPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
			return
		}
		rows, err = s.results.PreviewManualTime(set.ID, toManualTimeRows(payload))

	case database.SourceManualPosition:
		var payload manualPositionRowsPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
			return
		}
		rows, err = s.results.PreviewManualPositions(set.ID, toManualPositionRows(payload))

	case database.SourceTimed:
		rows, err = s.results.PreviewTimed(set.ID)

	default:
		s.errorJSON(w, errors.New("unknown result set source"), http.StatusInternalServerError)
		return
	}

	if err != nil {
		s.coreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"rows": toResultRowResponseList(rows)})
}

// handleSaveResultSet ranks the submitted rows, persists them and
// advances the result set to saved.
func (s *Server) handleSaveResultSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.resultSetForMember(r)
	if err != nil {
		s.coreError(w, err)
		return
	}

	var view *results.ResultSetView
	switch set.Source {
	case database.SourceManualTime:
		var payload manualTimeRowsPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
			return
		}
		view, err = s.results.SaveManualTime(set.ID, toManualTimeRows(payload))

	case database.SourceManualPosition:
		var payload manualPositionRowsPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
			return
		}
		view, err = s.results.SaveManualPositions(set.ID, toManualPositionRows(payload))

	case database.SourceTimed:
		view, err = s.results.SaveTimed(set.ID)

	default:
		s.errorJSON(w, errors.New("unknown result set source"), http.StatusInternalServerError)
		return
	}

	if err != nil {
		s.coreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"resultSet": toResultSetViewResponse(view)})
}

// handlePublishResultSet makes a result set the race's authoritative
// result, demoting any previously published set in the same
// transaction.
func (s *Server) handlePublishResultSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.resultSetForMember(r)
	if err != nil {
		s.coreError(w, err)
		return
	}

	published, err := s.results.Publish(set.ID)
	if err != nil {
		s.coreError(w, err)
		return
	}

	s.notifyResultsPublished(r, published)

	rows, err := s.db.GetResultSetEntries(s.db.DB(), published.ID)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"resultSet": toResultSetResponse(published, rows)})
}

// handleUnpublishResultSet withdraws a published result set back to
// saved without deleting anything.
func (s *Server) handleUnpublishResultSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.resultSetForMember(r)
	if err != nil {
		s.coreError(w, err)
		return
	}

	unpublished, err := s.results.Unpublish(set.ID)
	if err != nil {
		s.coreError(w, err)
		return
	}

	rows, err := s.db.GetResultSetEntries(s.db.DB(), unpublished.ID)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"resultSet": toResultSetResponse(unpublished, rows)})
}

// handleGetRaceResultSets lists every scorer's result sets for a race,
// so officers can see what is published and what is still draft.
func (s *Server) handleGetRaceResultSets(w http.ResponseWriter, r *http.Request) {
	raceID, err := strconv.ParseInt(chi.URLParam(r, "raceID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid race ID"), http.StatusBadRequest)
		return
	}

	sets, err := s.db.GetResultSetsByRaceID(s.db.DB(), raceID)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	responses := make([]ResultSetResponse, 0, len(sets))
	for _, set := range sets {
		rows, err := s.db.GetResultSetEntries(s.db.DB(), set.ID)
		if err != nil {
			s.errorJSON(w, err, http.StatusInternalServerError)
			return
		}
		responses = append(responses, toResultSetResponse(set, rows))
	}

	s.writeJSON(w, http.StatusOK, envelope{"resultSets": responses})
}

// notifyResultsPublished emails the sailing secretary after a publish.
// Best effort: a mail failure must never fail the publish itself.
func (s *Server) notifyResultsPublished(r *http.Request, set *database.ResultSet) {
	if s.config.ResultsNotifyAddr == "" {
		return
	}

	race, err := s.db.GetRaceByID(s.db.DB(), set.RaceID)
	if err != nil {
		log.Printf("WARN: publish notification skipped, race lookup failed: %v", err)
		return
	}

	publisherName := "A race officer"
	if memberID, err := s.getMemberIDFromContext(r); err == nil {
		if member, err := s.db.GetMemberByID(s.db.DB(), memberID); err == nil {
			publisherName = member.DisplayName()
		}
	}

	if err := s.email.SendResultsPublishedEmail(s.config.ResultsNotifyAddr, race.Name, publisherName, s.config.FrontendURL); err != nil {
		log.Printf("WARN: failed to send publish notification for race %d: %v", race.ID, err)
	}
}
