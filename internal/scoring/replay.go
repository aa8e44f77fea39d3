package scoring

import "sort"

// Event kinds understood by the replayer.
const (
	KindStart   = "start"
	KindLap     = "lap"
	KindUndo    = "undo"
	KindFinish  = "finish"
	KindRestart = "restart"
)

// Event is one timing-device fact, already persisted and immutable.
// EntryID is zero when the event concerns no particular boat (start,
// finish, restart).
type Event struct {
	DeviceID int64
	Seq      int64
	Kind     string
	EntryID  int64
	Seconds  float64 // race-elapsed seconds reported by the device
}

// Entrant is the slice of a race entry the replayer needs: identity for
// display plus the handicap snapshot taken at entry time.
type Entrant struct {
	EntryID    int64
	HelmName   string
	SailNumber string
	ClassName  string
	Yardstick  int
}

// BoatState is the replayed state of one entrant within an attempt.
type BoatState struct {
	Entrant

	Laps  int
	Times []float64 // race seconds per completed lap, in order
	Last  float64   // race seconds at the most recent lap, 0 before the first

	Corrected    float64
	HasCorrected bool

	// Positions from the most recent leaderboard snapshot. Zero until
	// the first lap of the attempt is recorded.
	Position          int
	CorrectedPosition int
}

// Positions pairs a boat's actual and corrected rank at one instant.
type Positions struct {
	Actual    int
	Corrected int
}

// Snapshot is one frame of the live leaderboard timeline, taken at
// every lap event.
type Snapshot struct {
	Seconds   float64
	Positions map[int64]Positions
}

// RaceState is the result of replaying one attempt of a race.
type RaceState struct {
	Started       bool
	Finished      bool
	RaceSeconds   float64
	Attempt       int
	TotalAttempts int
	Boats         map[int64]*BoatState
	History       []Snapshot

	order []int64 // entrant order, for deterministic ranking tie-breaks
}

// Replay reconstructs per-boat race state from the stored event log.
//
// Events are processed in (device, seq) order, the stable proxy for
// submission order. Restart events partition the log into attempts;
// attempt selects which one to replay (1-indexed), values outside the
// range replay the latest. Each attempt starts from fresh zeroed state
// for every entrant.
//
// Replay is idempotent by construction: it always starts from the
// stored log, so re-running it over the same events yields identical
// state and history. Events referencing unknown entries are skipped
// rather than aborting, partial or corrupt device data must not take
// down the live leaderboard.
func Replay(events []Event, entrants []Entrant, attempt int) *RaceState {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DeviceID != sorted[j].DeviceID {
			return sorted[i].DeviceID < sorted[j].DeviceID
		}
		return sorted[i].Seq < sorted[j].Seq
	})

	// Attempt k spans the events strictly between the (k-1)-th and k-th
	// restart markers.
	var restarts []int
	for i, ev := range sorted {
		if ev.Kind == KindRestart {
			restarts = append(restarts, i)
		}
	}
	total := len(restarts) + 1
	if attempt < 1 || attempt > total {
		attempt = total
	}

	first := 0
	if attempt > 1 {
		first = restarts[attempt-2] + 1
	}
	last := len(sorted)
	if attempt <= len(restarts) {
		last = restarts[attempt-1]
	}

	state := &RaceState{
		Attempt:       attempt,
		TotalAttempts: total,
		Boats:         make(map[int64]*BoatState, len(entrants)),
	}
	for _, ent := range entrants {
		state.Boats[ent.EntryID] = &BoatState{Entrant: ent}
		state.order = append(state.order, ent.EntryID)
	}

	for _, ev := range sorted[first:last] {
		switch ev.Kind {
		case KindStart:
			state.Started = true

		case KindFinish:
			state.Finished = true

		case KindLap:
			boat, ok := state.Boats[ev.EntryID]
			if !ok {
				continue
			}
			boat.Laps++
			boat.Times = append(boat.Times, ev.Seconds)
			boat.Last = ev.Seconds
			if ev.Seconds > state.RaceSeconds {
				state.RaceSeconds = ev.Seconds
			}
			state.snapshot()

		case KindUndo:
			boat, ok := state.Boats[ev.EntryID]
			if !ok || boat.Laps == 0 {
				continue
			}
			boat.Laps--
			boat.Times = boat.Times[:len(boat.Times)-1]
			if len(boat.Times) > 0 {
				boat.Last = boat.Times[len(boat.Times)-1]
			} else {
				boat.Last = 0
			}
		}
	}

	// Undo events after the last lap may have changed lap counts, so
	// bring corrected times back in line with final state. Positions
	// stay as the last snapshot left them.
	state.refreshCorrected()

	return state
}

// fleetLaps is the highest lap count in the attempt so far, the
// distance reference every boat's pace is projected to.
func (st *RaceState) fleetLaps() int {
	max := 0
	for _, id := range st.order {
		if laps := st.Boats[id].Laps; laps > max {
			max = laps
		}
	}
	return max
}

func (st *RaceState) refreshCorrected() {
	fleet := st.fleetLaps()
	for _, id := range st.order {
		boat := st.Boats[id]
		boat.Corrected, boat.HasCorrected = CorrectedSeconds(boat.Last, boat.Yardstick, boat.Laps, fleet)
	}
}

// snapshot recomputes corrected times and both rankings for every boat
// and appends a frame to the leaderboard history. The history only ever
// grows within an attempt, so a live display can show the whole
// timeline of position changes.
func (st *RaceState) snapshot() {
	st.refreshCorrected()

	// Actual ranking: more laps wins, ties broken by lower elapsed time.
	actual := make([]int64, len(st.order))
	copy(actual, st.order)
	sort.SliceStable(actual, func(i, j int) bool {
		a, b := st.Boats[actual[i]], st.Boats[actual[j]]
		if a.Laps != b.Laps {
			return a.Laps > b.Laps
		}
		return a.Last < b.Last
	})
	for pos, id := range actual {
		st.Boats[id].Position = pos + 1
	}

	// Corrected ranking: comparable boats ascending by corrected time,
	// boats without a comparable time sort last in entrant order.
	corrected := make([]int64, len(st.order))
	copy(corrected, st.order)
	sort.SliceStable(corrected, func(i, j int) bool {
		a, b := st.Boats[corrected[i]], st.Boats[corrected[j]]
		if a.HasCorrected != b.HasCorrected {
			return a.HasCorrected
		}
		return a.HasCorrected && a.Corrected < b.Corrected
	})
	for pos, id := range corrected {
		st.Boats[id].CorrectedPosition = pos + 1
	}

	frame := Snapshot{
		Seconds:   st.RaceSeconds,
		Positions: make(map[int64]Positions, len(st.order)),
	}
	for _, id := range st.order {
		boat := st.Boats[id]
		frame.Positions[id] = Positions{Actual: boat.Position, Corrected: boat.CorrectedPosition}
	}
	st.History = append(st.History, frame)
}
