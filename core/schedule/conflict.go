package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
)

// ErrInvalidSlot marks every failure from ValidateTimeSlot so callers can
// classify them without string matching.
var ErrInvalidSlot = errors.New("invalid time slot")

// ConflictResult reports whether a proposed interval is free of overlaps
// with a technician's existing jobs.
type ConflictResult struct {
	OK        bool
	Conflicts []models.Job
	Message   string
}

// CheckConflicts tests the proposed [start, end) interval against a single
// technician's existing jobs on one date. Jobs in a terminal status, jobs
// without a complete time window, and the excluded job (the one being
// moved) never conflict. Interval anchoring uses each job's own scheduled
// date so a stored window is compared on the day it occupies.
func CheckConflicts(existing []models.Job, start, end time.Time, excludeJobID string) ConflictResult {
	var conflicts []models.Job
	for _, job := range existing {
		if job.ID == excludeJobID {
			continue
		}
		if job.Status.IsTerminal() {
			continue
		}
		if !job.HasTimeWindow() || job.ScheduledDate == nil {
			continue
		}
		jobStart := job.ScheduledTimeStart.On(*job.ScheduledDate)
		jobEnd := job.ScheduledTimeEnd.On(*job.ScheduledDate)
		if Overlaps(start, end, jobStart, jobEnd) {
			conflicts = append(conflicts, job)
		}
	}
	if len(conflicts) == 0 {
		return ConflictResult{OK: true}
	}
	return ConflictResult{
		OK:        false,
		Conflicts: conflicts,
		Message:   fmt.Sprintf("time slot conflicts with %d existing job(s)", len(conflicts)),
	}
}

// ValidateTimeSlot checks a proposed interval against the policy's
// duration and business-hour rules. It is independent of conflict
// detection: a slot can be valid yet still conflict, and vice versa.
func ValidateTimeSlot(start, end time.Time, p Policy) error {
	if !start.Before(end) {
		return errors.Mark(errors.New("slot start must be before slot end"), ErrInvalidSlot)
	}
	minutes := DurationMinutes(start, end)
	if minutes < p.MinSlotMinutes {
		return errors.Mark(errors.Newf("slot must be at least %d minutes", p.MinSlotMinutes), ErrInvalidSlot)
	}
	if minutes > p.MaxSlotMinutes {
		return errors.Mark(errors.Newf("slot must be at most %d minutes", p.MaxSlotMinutes), ErrInvalidSlot)
	}
	if hour := start.Hour(); hour < p.BusinessStart.Hour() || hour > p.BusinessEnd.Hour() {
		return errors.Mark(
			errors.Newf("slot must start between %02d:00 and %02d:00", p.BusinessStart.Hour(), p.BusinessEnd.Hour()),
			ErrInvalidSlot)
	}
	return nil
}

// Slot is a concrete free interval found by FindNextAvailableSlot.
type Slot struct {
	Start time.Time
	End   time.Time
}

// FindNextAvailableSlot walks a technician's day first-fit: starting from
// max(preferred, business start), it returns the first gap on date that
// holds durationMinutes and ends within business hours, or nil when the
// day is full. Terminal and windowless jobs do not occupy time.
func FindNextAvailableSlot(existing []models.Job, preferred time.Time, durationMinutes int, date time.Time, p Policy) *Slot {
	busStart, busEnd := BusinessHours(date, p)

	type window struct{ start, end time.Time }
	var busy []window
	for _, job := range existing {
		if job.Status.IsTerminal() || !job.HasTimeWindow() {
			continue
		}
		busy = append(busy, window{
			start: job.ScheduledTimeStart.On(date),
			end:   job.ScheduledTimeEnd.On(date),
		})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].start.Before(busy[j].start) })

	cursor := preferred
	if cursor.Before(busStart) {
		cursor = busStart
	}
	duration := time.Duration(durationMinutes) * time.Minute

	for _, w := range busy {
		candidateEnd := cursor.Add(duration)
		if !candidateEnd.After(w.start) && !candidateEnd.After(busEnd) {
			return &Slot{Start: cursor, End: candidateEnd}
		}
		if w.end.After(cursor) {
			cursor = w.end
		}
	}
	if candidateEnd := cursor.Add(duration); !candidateEnd.After(busEnd) {
		return &Slot{Start: cursor, End: candidateEnd}
	}
	return nil
}
