package schedule

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
)

func windowedJob(id string, status models.JobStatus, startH, startM, endH, endM int) models.Job {
	date := testDate
	start := models.NewTimeOfDay(startH, startM)
	end := models.NewTimeOfDay(endH, endM)
	return models.Job{
		ID:                 id,
		Status:             status,
		ScheduledDate:      &date,
		ScheduledTimeStart: &start,
		ScheduledTimeEnd:   &end,
	}
}

func TestCheckConflictsExcludesSelfAndTerminals(t *testing.T) {
	jobs := []models.Job{
		windowedJob("a", models.JobStatusScheduled, 9, 0, 10, 0),
		windowedJob("b", models.JobStatusCompleted, 9, 30, 10, 30),
	}

	// Moving job a onto 09:15-10:15: a is excluded, b is terminal.
	res := CheckConflicts(jobs, at(9, 15), at(10, 15), "a")
	assert.True(t, res.OK)
	assert.Empty(t, res.Conflicts)

	// A third job proposed for the same window conflicts with a only.
	res = CheckConflicts(jobs, at(9, 15), at(10, 15), "c")
	assert.False(t, res.OK)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "a", res.Conflicts[0].ID)
	assert.Equal(t, "time slot conflicts with 1 existing job(s)", res.Message)
}

func TestCheckConflictsSkipsWindowlessJobs(t *testing.T) {
	date := testDate
	jobs := []models.Job{
		{ID: "loose", Status: models.JobStatusScheduled, ScheduledDate: &date},
	}
	res := CheckConflicts(jobs, at(9, 0), at(17, 0), "")
	assert.True(t, res.OK)
}

func TestCheckConflictsTouchingBoundary(t *testing.T) {
	jobs := []models.Job{windowedJob("a", models.JobStatusScheduled, 9, 0, 10, 0)}

	// Back to back is fine, any real overlap is not.
	assert.True(t, CheckConflicts(jobs, at(10, 0), at(11, 0), "").OK)
	assert.True(t, CheckConflicts(jobs, at(8, 0), at(9, 0), "").OK)
	assert.False(t, CheckConflicts(jobs, at(9, 59), at(11, 0), "").OK)
}

func TestValidateTimeSlot(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		name       string
		start, end time.Time
		wantErr    string
	}{
		{"valid", at(9, 0), at(10, 0), ""},
		{"inverted", at(10, 0), at(9, 0), "slot start must be before slot end"},
		{"too short", at(9, 0), at(9, 15), "slot must be at least 30 minutes"},
		{"too long", at(7, 0), at(16, 0), "slot must be at most 480 minutes"},
		{"before hours", at(5, 0), at(6, 0), "slot must start between 07:00 and 18:00"},
		{"after hours", at(19, 0), at(20, 0), "slot must start between 07:00 and 18:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTimeSlot(tc.start, tc.end, p)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSlot))
			assert.Equal(t, tc.wantErr, err.Error())
		})
	}
}

func TestValidateTimeSlotIndependentOfConflicts(t *testing.T) {
	// A perfectly valid slot can still conflict with existing work.
	p := DefaultPolicy()
	jobs := []models.Job{windowedJob("a", models.JobStatusScheduled, 9, 0, 10, 0)}

	assert.NoError(t, ValidateTimeSlot(at(9, 0), at(10, 0), p))
	assert.False(t, CheckConflicts(jobs, at(9, 0), at(10, 0), "").OK)
}

func TestFindNextAvailableSlotPreferredFree(t *testing.T) {
	jobs := []models.Job{windowedJob("a", models.JobStatusScheduled, 9, 30, 10, 30)}

	slot := FindNextAvailableSlot(jobs, at(8, 30), 60, testDate, DefaultPolicy())
	require.NotNil(t, slot)
	assert.Equal(t, at(8, 30), slot.Start)
	assert.Equal(t, at(9, 30), slot.End)
}

func TestFindNextAvailableSlotSkipsBusyWindow(t *testing.T) {
	jobs := []models.Job{windowedJob("a", models.JobStatusScheduled, 9, 0, 10, 0)}

	// 09:30-10:00 overlaps the existing job, so first fit lands at 10:00.
	slot := FindNextAvailableSlot(jobs, at(9, 30), 30, testDate, DefaultPolicy())
	require.NotNil(t, slot)
	assert.Equal(t, at(10, 0), slot.Start)
	assert.Equal(t, at(10, 30), slot.End)
}

func TestFindNextAvailableSlotClampsToBusinessStart(t *testing.T) {
	slot := FindNextAvailableSlot(nil, at(4, 0), 60, testDate, DefaultPolicy())
	require.NotNil(t, slot)
	assert.Equal(t, at(7, 0), slot.Start)
}

func TestFindNextAvailableSlotFullDay(t *testing.T) {
	jobs := []models.Job{windowedJob("a", models.JobStatusScheduled, 7, 0, 17, 30)}

	// Only 30 minutes remain before business end; a 60 minute job does
	// not fit anywhere.
	assert.Nil(t, FindNextAvailableSlot(jobs, at(7, 0), 60, testDate, DefaultPolicy()))

	// A 30 minute job still squeezes in at the end of day.
	slot := FindNextAvailableSlot(jobs, at(7, 0), 30, testDate, DefaultPolicy())
	require.NotNil(t, slot)
	assert.Equal(t, at(17, 30), slot.Start)
	assert.Equal(t, at(18, 0), slot.End)
}

func TestFindNextAvailableSlotIgnoresTerminalJobs(t *testing.T) {
	jobs := []models.Job{windowedJob("done", models.JobStatusCancelled, 9, 0, 17, 0)}

	slot := FindNextAvailableSlot(jobs, at(9, 0), 60, testDate, DefaultPolicy())
	require.NotNil(t, slot)
	assert.Equal(t, at(9, 0), slot.Start)
}

func TestFindNextAvailableSlotUnsortedInput(t *testing.T) {
	// Busy windows arrive unsorted; the scan still walks them in start
	// order.
	jobs := []models.Job{
		windowedJob("late", models.JobStatusScheduled, 13, 0, 14, 0),
		windowedJob("early", models.JobStatusScheduled, 7, 0, 12, 30),
	}
	slot := FindNextAvailableSlot(jobs, at(7, 0), 30, testDate, DefaultPolicy())
	require.NotNil(t, slot)
	assert.Equal(t, at(12, 30), slot.Start)
}
