package models

import "time"

// SchedulingUpdate describes a partial write to a job's scheduling
// fields. Nil members are left untouched; a non-nil TimeWindow overwrites
// both time columns, writing NULL for missing bounds.
type SchedulingUpdate struct {
	// SetZone distinguishes "write Zone" (possibly NULL, for the
	// unassigned column) from "leave zone alone".
	SetZone       bool
	Zone          *Zone
	Position      *float64
	TimeWindow    *TimeWindow
	TechnicianID  *string
	ScheduledDate *time.Time
}

// IsEmpty reports whether the update would touch no columns.
func (u SchedulingUpdate) IsEmpty() bool {
	return !u.SetZone && u.Position == nil && u.TimeWindow == nil &&
		u.TechnicianID == nil && u.ScheduledDate == nil
}
