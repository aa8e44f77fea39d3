// Package scoring implements the club's handicap scoring rules: the
// Portsmouth Yardstick time correction, the points scale, replay of a
// race's timing event log, tie-aware position compaction, and the
// league discard rule. Everything in this package is a pure function
// over its inputs; persistence and workflow live elsewhere.
package scoring

import "fmt"

// CorrectedSeconds converts a boat's elapsed time into a corrected time
// comparable across classes. The elapsed time is normalised by the
// boat's Portsmouth Yardstick against the fleet reference of 1000, then
// the boat's per-lap pace is projected up to the full distance sailed
// by the leader (fleetLaps).
//
// ok is false when elapsed, yardstick or laps is zero: a boat with no
// timing data is not comparable, which is an expected case (did not
// finish, no laps yet), not an error. Lower corrected time is better.
// No rounding happens here; rounding is a presentation concern.
func CorrectedSeconds(elapsed float64, yardstick, laps, fleetLaps int) (float64, bool) {
	if elapsed == 0 || yardstick == 0 || laps == 0 {
		return 0, false
	}

	corrected := (elapsed * 1000 / float64(yardstick)) * (float64(fleetLaps) / float64(laps))
	return corrected, true
}

// FormatSeconds renders a seconds value for display, h:mm:ss when an
// hour or more, m:ss otherwise. Sub-second precision is dropped.
func FormatSeconds(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
