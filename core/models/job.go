package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Job represents a schedulable unit of field work on the dispatch board.
// Jobs are created elsewhere in the CRM; the board only mutates the
// zone/bucket/technician/position/time-window fields.
type Job struct {
	ID            string
	CustomerID    string
	CustomerName  string
	CustomerPhone string
	Address       string
	Description   string
	Status        JobStatus
	TechnicianID  *string // nil = unassigned
	Zone          *Zone   // nil = unassigned column
	ScheduledDate *time.Time
	// Time window: both set or neither set.
	ScheduledTimeStart *TimeOfDay
	ScheduledTimeEnd   *TimeOfDay
	// Position orders jobs within a (zone, bucket) group. Fractional so
	// reorders never renumber siblings.
	Position  float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasTimeWindow reports whether both time fields are present.
func (j *Job) HasTimeWindow() bool {
	return j.ScheduledTimeStart != nil && j.ScheduledTimeEnd != nil
}

// WindowMinutes returns the scheduled window length in minutes, or false
// when the job has no time window.
func (j *Job) WindowMinutes() (int, bool) {
	if !j.HasTimeWindow() {
		return 0, false
	}
	return int(*j.ScheduledTimeEnd - *j.ScheduledTimeStart), true
}

// StartInstant combines the job's scheduled date and start time into an
// absolute instant. Jobs without a date have no instant.
func (j *Job) StartInstant() (time.Time, bool) {
	if j.ScheduledDate == nil {
		return time.Time{}, false
	}
	d := *j.ScheduledDate
	if j.ScheduledTimeStart == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()), true
	}
	return j.ScheduledTimeStart.On(d), true
}

// JobStatus represents the lifecycle state of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// IsTerminal reports whether the status forbids any further board
// mutation of the job.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// Zone is a coarse geographic service area used to group jobs for dispatch.
type Zone string

const (
	ZoneNorth   Zone = "north"
	ZoneSouth   Zone = "south"
	ZoneEast    Zone = "east"
	ZoneWest    Zone = "west"
	ZoneCentral Zone = "central"
)

// ZoneOrder is the fixed column presentation order for the board.
var ZoneOrder = []Zone{ZoneNorth, ZoneSouth, ZoneEast, ZoneWest, ZoneCentral}

// ParseZone validates a zone string.
func ParseZone(s string) (Zone, error) {
	z := Zone(s)
	for _, known := range ZoneOrder {
		if z == known {
			return z, nil
		}
	}
	return "", fmt.Errorf("unknown zone %q", s)
}

// Bucket is a coarse time-of-day category, distinct from the precise
// scheduled time.
type Bucket string

const (
	BucketMorning   Bucket = "morning"
	BucketAfternoon Bucket = "afternoon"
	BucketEvening   Bucket = "evening"
	BucketAny       Bucket = "any"
)

// BucketOrder is the fixed row presentation order within a zone column.
var BucketOrder = []Bucket{BucketMorning, BucketAfternoon, BucketEvening, BucketAny}

// ParseBucket validates a bucket string.
func ParseBucket(s string) (Bucket, error) {
	b := Bucket(s)
	for _, known := range BucketOrder {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown bucket %q", s)
}

// TimeOfDay is a local wall-clock time stored as minutes since midnight.
// It maps to a Postgres TIME column.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hour, minute, second int
	switch n, _ := fmt.Sscanf(s, "%d:%d:%d", &hour, &minute, &second); n {
	case 2, 3:
	default:
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return NewTimeOfDay(hour, minute), nil
}

// Hour returns the hour component (0-23).
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component (0-59).
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On anchors the time of day onto a calendar date, in that date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

// Ptr returns a pointer to t, convenient for nullable job fields.
func (t TimeOfDay) Ptr() *TimeOfDay { return &t }

// Value implements driver.Valuer for TIME columns.
func (t TimeOfDay) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:00", t.Hour(), t.Minute()), nil
}

// Scan implements sql.Scanner. lib/pq returns TIME columns as bytes or
// time.Time depending on configuration.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
	case time.Time:
		*t = NewTimeOfDay(v.Hour(), v.Minute())
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
	return nil
}

// TimeWindow pairs an optional start and end time of day. A window with
// neither bound means unscheduled time.
type TimeWindow struct {
	Start *TimeOfDay
	End   *TimeOfDay
}

// IsZero reports whether the window carries no times.
func (w TimeWindow) IsZero() bool { return w.Start == nil && w.End == nil }

// Minutes returns the window length, or false when either bound is missing.
func (w TimeWindow) Minutes() (int, bool) {
	if w.Start == nil || w.End == nil {
		return 0, false
	}
	return int(*w.End - *w.Start), true
}

// Technician is reference data for assignment targets.
type Technician struct {
	ID     string
	Name   string
	Phone  string
	Active bool
}
