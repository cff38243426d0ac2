package board

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
	"github.com/SamShahinDev/dirtfree-crm-sub004/core/schedule"
)

// The board action layer maps every lower-level failure onto one of these
// sentinels before returning, so callers branch with errors.Is instead of
// inspecting strings or raw driver errors.
var (
	ErrNotFound        = errors.New("job not found")
	ErrTerminalStatus  = errors.New("job is in a terminal status")
	ErrConflict        = errors.New("schedule conflict")
	ErrInvalidTimeSlot = schedule.ErrInvalidSlot
	ErrWriteFailed     = errors.New("scheduling write failed")
)

// ConflictError carries the jobs that blocked a proposed placement so the
// caller can render a specific message.
type ConflictError struct {
	Conflicts []models.Job
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot conflicts with %d existing job(s)", len(e.Conflicts))
}

func newConflictError(conflicts []models.Job) error {
	return errors.Mark(&ConflictError{Conflicts: conflicts}, ErrConflict)
}

// Kind names the taxonomy bucket an action error belongs to, for
// structured responses and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTerminalStatus):
		return "terminal_status"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidTimeSlot):
		return "invalid_time_slot"
	case errors.Is(err, ErrWriteFailed):
		return "write_failed"
	default:
		return "internal"
	}
}
