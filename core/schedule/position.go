package schedule

// Fractional ordering positions. Inserting between two siblings takes
// their midpoint, so a reorder writes one row and never renumbers the
// rest of the bucket.
const (
	// BasePosition seeds the first job placed in an empty bucket.
	BasePosition = 1024.0
	// PositionStep spaces jobs appended before the first or after the
	// last sibling.
	PositionStep = 1024.0
)

// NextPosition returns an ordering key for a job inserted between the
// neighbors with positions before and after; either may be nil when the
// job lands at an edge of the bucket. With distinct known neighbors the
// result is strictly between them until float64 precision is exhausted,
// at which point the midpoint collapses onto a neighbor and readers fall
// back to their stable secondary sort.
func NextPosition(before, after *float64) float64 {
	switch {
	case before == nil && after == nil:
		return BasePosition
	case before == nil:
		return *after - PositionStep
	case after == nil:
		return *before + PositionStep
	default:
		return (*before + *after) / 2
	}
}
