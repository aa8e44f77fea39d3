package results

import (
	"database/sql"
	"sort"
	"time"

	"github.com/clydesc/sailscore/internal/database"
)

// fakeStore is an in-memory Store for exercising the service without
// SQLite. It mirrors the production store's contract: lookups return
// sql.ErrNoRows when missing, duplicate events report inserted=false,
// and publish keeps at most one published set per race.
type fakeStore struct {
	races   map[int64]*database.Race
	entries map[int64]*database.RaceEntry
	leagues map[int64]*database.League

	events    []*database.RaceEvent
	eventKeys map[[2]int64]bool // (device, seq)

	sets      map[int64]*database.ResultSet
	rows      map[int64][]*database.ResultSetEntry
	nextSetID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		races:     make(map[int64]*database.Race),
		entries:   make(map[int64]*database.RaceEntry),
		leagues:   make(map[int64]*database.League),
		eventKeys: make(map[[2]int64]bool),
		sets:      make(map[int64]*database.ResultSet),
		rows:      make(map[int64][]*database.ResultSetEntry),
		nextSetID: 1,
	}
}

func (f *fakeStore) Race(id int64) (*database.Race, error) {
	race, ok := f.races[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return race, nil
}

func (f *fakeStore) AdvanceRaceStatus(raceID int64, status string) error {
	race, ok := f.races[raceID]
	if !ok {
		return sql.ErrNoRows
	}
	race.Status = status
	return nil
}

func (f *fakeStore) Entry(id int64) (*database.RaceEntry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return entry, nil
}

func (f *fakeStore) EntriesByRace(raceID int64) ([]*database.RaceEntry, error) {
	var out []*database.RaceEntry
	for _, e := range f.entries {
		if e.RaceID == raceID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) EventsByRace(raceID int64) ([]*database.RaceEvent, error) {
	var out []*database.RaceEvent
	for _, ev := range f.events {
		if ev.RaceID == raceID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertEvent(ev *database.RaceEvent) (bool, error) {
	key := [2]int64{ev.DeviceID, ev.Seq}
	if f.eventKeys[key] {
		return false, nil
	}
	f.eventKeys[key] = true
	f.events = append(f.events, ev)
	return true, nil
}

func (f *fakeStore) ResultSetByID(id int64) (*database.ResultSet, error) {
	set, ok := f.sets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return set, nil
}

func (f *fakeStore) ResultSet(raceID, memberID int64, source string) (*database.ResultSet, error) {
	for _, set := range f.sets {
		if set.RaceID == raceID && set.MemberID == memberID && set.Source == source {
			return set, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) CreateResultSet(raceID, memberID int64, source string) (*database.ResultSet, error) {
	set := &database.ResultSet{
		ID:        f.nextSetID,
		RaceID:    raceID,
		MemberID:  memberID,
		Source:    source,
		State:     database.StateDraft,
		UpdatedAt: time.Now(),
	}
	f.nextSetID++
	f.sets[set.ID] = set
	return set, nil
}

func (f *fakeStore) PublishedResultSet(raceID int64) (*database.ResultSet, error) {
	for _, set := range f.sets {
		if set.RaceID == raceID && set.State == database.StatePublished {
			return set, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) ResultRows(resultSetID int64) ([]*database.ResultSetEntry, error) {
	return f.rows[resultSetID], nil
}

func (f *fakeStore) SaveResultRows(resultSetID int64, state string, rows []*database.ResultSetEntry) error {
	set, ok := f.sets[resultSetID]
	if !ok {
		return sql.ErrNoRows
	}
	stored := make([]*database.ResultSetEntry, 0, len(rows))
	for i, r := range rows {
		cp := *r
		cp.ID = int64(i + 1)
		cp.ResultSetID = resultSetID
		stored = append(stored, &cp)
	}
	f.rows[resultSetID] = stored
	set.State = state
	set.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) PublishResultSet(resultSetID, raceID int64) error {
	for _, set := range f.sets {
		if set.RaceID == raceID && set.State == database.StatePublished {
			set.State = database.StateSaved
			set.PublishedAt = sql.NullTime{}
		}
	}

	set, ok := f.sets[resultSetID]
	if !ok {
		return sql.ErrNoRows
	}
	set.State = database.StatePublished
	set.PublishedAt = sql.NullTime{Time: time.Now(), Valid: true}

	race, ok := f.races[raceID]
	if !ok {
		return sql.ErrNoRows
	}
	if race.Status != database.RaceFinished && race.Status != database.RaceVerified {
		race.Status = database.RaceFinished
	}
	return nil
}

func (f *fakeStore) UnpublishResultSet(resultSetID int64) error {
	set, ok := f.sets[resultSetID]
	if !ok {
		return sql.ErrNoRows
	}
	set.State = database.StateSaved
	set.PublishedAt = sql.NullTime{}
	return nil
}

func (f *fakeStore) League(id int64) (*database.League, error) {
	league, ok := f.leagues[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return league, nil
}

func (f *fakeStore) FinishedRacesByLeague(leagueID int64) ([]*database.Race, error) {
	var out []*database.Race
	for _, race := range f.races {
		if !race.LeagueID.Valid || race.LeagueID.Int64 != leagueID {
			continue
		}
		if race.Status == database.RaceFinished || race.Status == database.RaceVerified {
			out = append(out, race)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) PublishedPointsByRace(raceID int64) ([]*database.ScoredEntry, error) {
	published, err := f.PublishedResultSet(raceID)
	if err != nil {
		return nil, nil
	}

	var out []*database.ScoredEntry
	for _, row := range f.rows[published.ID] {
		entry, ok := f.entries[row.EntryID]
		if !ok {
			continue
		}
		out = append(out, &database.ScoredEntry{
			EntryID:  row.EntryID,
			HelmID:   entry.HelmID,
			HelmName: entry.HelmName,
			CrewID:   entry.CrewID,
			CrewName: entry.CrewName,
			Points:   row.Points,
		})
	}
	return out, nil
}

// --- fixture helpers ---

func (f *fakeStore) addRace(id int64, leagueID sql.NullInt64, status string) *database.Race {
	race := &database.Race{ID: id, LeagueID: leagueID, Name: "Race", RaceDate: time.Now(), Status: status}
	f.races[id] = race
	return race
}

func (f *fakeStore) addEntry(id, raceID, helmID int64, helmName string, crewID sql.NullInt64, crewName string, yardstick int) *database.RaceEntry {
	entry := &database.RaceEntry{
		ID:        id,
		RaceID:    raceID,
		HelmID:    helmID,
		HelmName:  helmName,
		CrewID:    crewID,
		BoatID:    id,
		ClassName: "Laser",
		Yardstick: yardstick,
	}
	if crewID.Valid {
		entry.CrewName = sql.NullString{String: crewName, Valid: true}
	}
	f.entries[id] = entry
	return entry
}

func (f *fakeStore) addLeague(id int64) *database.League {
	league := &database.League{ID: id, Name: "Spring Series", DateFrom: time.Now().AddDate(0, -1, 0), DateTo: time.Now().AddDate(0, 1, 0)}
	f.leagues[id] = league
	return league
}
