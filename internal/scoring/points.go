package scoring

// DefaultMaxPoints is the club's standard points-for-first value.
const DefaultMaxPoints = 14

// Points converts a finishing position into league points on a linear
// descending scale: first scores maxPoints, each place after loses one
// point, floored at zero. Position zero means did-not-finish and
// scores nothing. Finishing worse than maxPoints-th still scores zero,
// never a negative value.
func Points(position, maxPoints int) int {
	if position == 0 {
		return 0
	}

	points := maxPoints - (position - 1)
	if points < 0 {
		return 0
	}
	return points
}
