package api

import (
	"time"

	"github.com/clydesc/sailscore/internal/database"
	"github.com/clydesc/sailscore/internal/results"
	"github.com/clydesc/sailscore/internal/scoring"
)

// MemberResponse is the DTO for a member's public profile. It only
// exposes safe and necessary data, never the password hash.
type MemberResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Alias     *string   `json:"alias"`
	FullName  *string   `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

func toMemberResponse(member *database.Member) MemberResponse {
	var alias, fullName *string
	if member.Alias.Valid {
		alias = &member.Alias.String
	}
	if member.FullName.Valid {
		fullName = &member.FullName.String
	}

	return MemberResponse{
		ID:        member.ID,
		Email:     member.Email,
		Alias:     alias,
		FullName:  fullName,
		CreatedAt: member.CreatedAt,
	}
}

// EntryResponse is the DTO for a race entry, carrying the handicap
// snapshot and joined display names.
type EntryResponse struct {
	ID         int64   `json:"id"`
	RaceID     int64   `json:"raceId"`
	HelmID     int64   `json:"helmId"`
	HelmName   string  `json:"helmName"`
	CrewID     *int64  `json:"crewId"`
	CrewName   *string `json:"crewName"`
	BoatID     int64   `json:"boatId"`
	SailNumber string  `json:"sailNumber"`
	ClassName  string  `json:"className"`
	Yardstick  int     `json:"yardstick"`
}

func toEntryResponse(entry *database.RaceEntry) EntryResponse {
	var crewID *int64
	var crewName *string
	if entry.CrewID.Valid {
		crewID = &entry.CrewID.Int64
	}
	if entry.CrewName.Valid {
		crewName = &entry.CrewName.String
	}

	return EntryResponse{
		ID:         entry.ID,
		RaceID:     entry.RaceID,
		HelmID:     entry.HelmID,
		HelmName:   entry.HelmName,
		CrewID:     crewID,
		CrewName:   crewName,
		BoatID:     entry.BoatID,
		SailNumber: entry.SailNumber,
		ClassName:  entry.ClassName,
		Yardstick:  entry.Yardstick,
	}
}

func toEntryResponseList(entries []*database.RaceEntry) []EntryResponse {
	responseList := make([]EntryResponse, len(entries))
	for i, entry := range entries {
		responseList[i] = toEntryResponse(entry)
	}
	return responseList
}

// ResultRowResponse is the DTO for one row of a result set. Times are
// mirrored as formatted strings so the frontend doesn't re-implement
// the club's time display.
type ResultRowResponse struct {
	EntryID          int64    `json:"entryId"`
	Laps             *int64   `json:"laps"`
	ElapsedSeconds   *float64 `json:"elapsedSeconds"`
	Elapsed          *string  `json:"elapsed"`
	CorrectedSeconds *float64 `json:"correctedSeconds"`
	Corrected        *string  `json:"corrected"`
	Position         *int64   `json:"position"`
	Points           *int64   `json:"points"`
	Tied             bool     `json:"tied"`
}

func toResultRowResponse(row *database.ResultSetEntry) ResultRowResponse {
	resp := ResultRowResponse{
		EntryID: row.EntryID,
		Tied:    row.Tied,
	}
	if row.Laps.Valid {
		resp.Laps = &row.Laps.Int64
	}
	if row.ElapsedSeconds.Valid {
		resp.ElapsedSeconds = &row.ElapsedSeconds.Float64
		formatted := scoring.FormatSeconds(row.ElapsedSeconds.Float64)
		resp.Elapsed = &formatted
	}
	if row.CorrectedSeconds.Valid {
		resp.CorrectedSeconds = &row.CorrectedSeconds.Float64
		formatted := scoring.FormatSeconds(row.CorrectedSeconds.Float64)
		resp.Corrected = &formatted
	}
	if row.Position.Valid {
		resp.Position = &row.Position.Int64
	}
	if row.Points.Valid {
		resp.Points = &row.Points.Int64
	}
	return resp
}

func toResultRowResponseList(rows []*database.ResultSetEntry) []ResultRowResponse {
	responseList := make([]ResultRowResponse, len(rows))
	for i, row := range rows {
		responseList[i] = toResultRowResponse(row)
	}
	return responseList
}

// ResultSetResponse is the DTO for a result set with its rows.
type ResultSetResponse struct {
	ID          int64               `json:"id"`
	RaceID      int64               `json:"raceId"`
	MemberID    int64               `json:"memberId"`
	Source      string              `json:"source"`
	State       string              `json:"state"`
	PublishedAt *string             `json:"publishedAt"`
	Rows        []ResultRowResponse `json:"rows"`
}

func toResultSetResponse(set *database.ResultSet, rows []*database.ResultSetEntry) ResultSetResponse {
	var publishedAt *string
	if set.PublishedAt.Valid {
		p := set.PublishedAt.Time.Format(time.RFC3339)
		publishedAt = &p
	}

	return ResultSetResponse{
		ID:          set.ID,
		RaceID:      set.RaceID,
		MemberID:    set.MemberID,
		Source:      set.Source,
		State:       set.State,
		PublishedAt: publishedAt,
		Rows:        toResultRowResponseList(rows),
	}
}

func toResultSetViewResponse(view *results.ResultSetView) ResultSetResponse {
	return toResultSetResponse(view.Set, view.Rows)
}

// BoatStateResponse is one boat's line on the live leaderboard.
type BoatStateResponse struct {
	EntryID           int64    `json:"entryId"`
	HelmName          string   `json:"helmName"`
	SailNumber        string   `json:"sailNumber"`
	ClassName         string   `json:"className"`
	Yardstick         int      `json:"yardstick"`
	Laps              int      `json:"laps"`
	LastSeconds       float64  `json:"lastSeconds"`
	Last              string   `json:"last"`
	CorrectedSeconds  *float64 `json:"correctedSeconds"`
	Corrected         *string  `json:"corrected"`
	Position          int      `json:"position"`
	CorrectedPosition int      `json:"correctedPosition"`
}

// SnapshotResponse is one frame of the leaderboard timeline.
type SnapshotResponse struct {
	Seconds   float64                     `json:"seconds"`
	Positions map[int64]scoring.Positions `json:"positions"`
}

// RaceStateResponse is the DTO for the replayed live race state.
type RaceStateResponse struct {
	Started       bool                `json:"started"`
	Finished      bool                `json:"finished"`
	RaceSeconds   float64             `json:"raceSeconds"`
	RaceTime      string              `json:"raceTime"`
	Attempt       int                 `json:"attempt"`
	TotalAttempts int                 `json:"totalAttempts"`
	Boats         []BoatStateResponse `json:"boats"`
	History       []SnapshotResponse  `json:"history"`
}

func toRaceStateResponse(state *scoring.RaceState, entries []*database.RaceEntry) RaceStateResponse {
	resp := RaceStateResponse{
		Started:       state.Started,
		Finished:      state.Finished,
		RaceSeconds:   state.RaceSeconds,
		RaceTime:      scoring.FormatSeconds(state.RaceSeconds),
		Attempt:       state.Attempt,
		TotalAttempts: state.TotalAttempts,
		Boats:         make([]BoatStateResponse, 0, len(state.Boats)),
		History:       make([]SnapshotResponse, 0, len(state.History)),
	}

	// Entries give a stable presentation order; the replay map doesn't.
	for _, entry := range entries {
		boat, ok := state.Boats[entry.ID]
		if !ok {
			continue
		}
		b := BoatStateResponse{
			EntryID:           boat.EntryID,
			HelmName:          boat.HelmName,
			SailNumber:        boat.SailNumber,
			ClassName:         boat.ClassName,
			Yardstick:         boat.Yardstick,
			Laps:              boat.Laps,
			LastSeconds:       boat.Last,
			Last:              scoring.FormatSeconds(boat.Last),
			Position:          boat.Position,
			CorrectedPosition: boat.CorrectedPosition,
		}
		if boat.HasCorrected {
			corrected := boat.Corrected
			formatted := scoring.FormatSeconds(corrected)
			b.CorrectedSeconds = &corrected
			b.Corrected = &formatted
		}
		resp.Boats = append(resp.Boats, b)
	}

	for _, frame := range state.History {
		resp.History = append(resp.History, SnapshotResponse{
			Seconds:   frame.Seconds,
			Positions: frame.Positions,
		})
	}

	return resp
}
