package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestNextPositionEmptyBucket(t *testing.T) {
	assert.Equal(t, BasePosition, NextPosition(nil, nil))
}

func TestNextPositionEdges(t *testing.T) {
	// Append after the last sibling.
	assert.Equal(t, 3072.0, NextPosition(f(2048), nil))
	// Insert before the first sibling; going negative is fine.
	assert.Equal(t, -512.0, NextPosition(nil, f(512)))
}

func TestNextPositionMidpoint(t *testing.T) {
	got := NextPosition(f(1), f(2))
	assert.Greater(t, got, 1.0)
	assert.Less(t, got, 2.0)
	assert.Equal(t, 1.5, got)
}

func TestNextPositionRepeatedInsertionStaysOrdered(t *testing.T) {
	// Keep inserting between the same left edge and the previous insert;
	// every result stays strictly between until precision runs out, and
	// never panics after it does.
	lo, hi := 1.0, 2.0
	for i := 0; i < 80; i++ {
		mid := NextPosition(&lo, &hi)
		if mid <= lo || mid >= hi {
			// Precision floor reached; tolerated, not fatal.
			return
		}
		hi = mid
	}
}
