package board

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
	"github.com/SamShahinDev/dirtfree-crm-sub004/core/schedule"
)

type updateCall struct {
	jobID  string
	update models.SchedulingUpdate
}

// mockJobStore is an in-memory JobStore that applies updates so
// follow-up reads observe them.
type mockJobStore struct {
	jobs      map[string]*models.Job
	updates   []updateCall
	updateErr error
	listErr   error
}

func newMockJobStore(jobs ...models.Job) *mockJobStore {
	m := &mockJobStore{jobs: make(map[string]*models.Job)}
	for i := range jobs {
		j := jobs[i]
		m.jobs[j.ID] = &j
	}
	return m
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func (m *mockJobStore) GetJob(_ context.Context, id string) (*models.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (m *mockJobStore) ListForDate(_ context.Context, date time.Time) ([]models.Job, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Job
	for _, job := range m.jobs {
		if job.ScheduledDate != nil && sameDate(*job.ScheduledDate, date) {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *mockJobStore) ListForTechnicianAndDate(_ context.Context, technicianID string, date time.Time, excludeJobID string) ([]models.Job, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Job
	for _, job := range m.jobs {
		if job.ID == excludeJobID || job.TechnicianID == nil || *job.TechnicianID != technicianID {
			continue
		}
		if job.ScheduledDate == nil || !sameDate(*job.ScheduledDate, date) {
			continue
		}
		out = append(out, *job)
	}
	return out, nil
}

func (m *mockJobStore) UpdateScheduling(_ context.Context, id string, update models.SchedulingUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.updates = append(m.updates, updateCall{jobID: id, update: update})
	if update.SetZone {
		job.Zone = update.Zone
	}
	if update.Position != nil {
		job.Position = *update.Position
	}
	if update.TimeWindow != nil {
		job.ScheduledTimeStart = update.TimeWindow.Start
		job.ScheduledTimeEnd = update.TimeWindow.End
	}
	if update.TechnicianID != nil {
		job.TechnicianID = update.TechnicianID
	}
	if update.ScheduledDate != nil {
		job.ScheduledDate = update.ScheduledDate
	}
	return nil
}

type auditCall struct {
	jobID         string
	before, after map[string]interface{}
}

type mockAuditStore struct {
	calls []auditCall
	err   error
}

func (m *mockAuditStore) RecordJobChange(_ context.Context, jobID string, before, after map[string]interface{}) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, auditCall{jobID: jobID, before: before, after: after})
	return nil
}

func newTestService(store *mockJobStore, audit *mockAuditStore) *Service {
	return NewService(store, audit, schedule.DefaultPolicy(), zap.NewNop().Sugar())
}

func techJob(id, tech string, startH, startM, endH, endM int, status models.JobStatus) models.Job {
	date := boardDate
	start := models.NewTimeOfDay(startH, startM)
	end := models.NewTimeOfDay(endH, endM)
	return models.Job{
		ID:                 id,
		Status:             status,
		Zone:               zonePtr(models.ZoneNorth),
		TechnicianID:       strPtr(tech),
		ScheduledDate:      &date,
		ScheduledTimeStart: &start,
		ScheduledTimeEnd:   &end,
		Position:           1,
	}
}

func TestAllActionsRejectTerminalJobs(t *testing.T) {
	for _, status := range []models.JobStatus{models.JobStatusCompleted, models.JobStatusCancelled} {
		store := newMockJobStore(techJob("done", "t1", 9, 0, 10, 0, status))
		svc := newTestService(store, &mockAuditStore{})
		ctx := context.Background()

		_, err := svc.MoveCard(ctx, MoveCardInput{JobID: "done", Zone: zonePtr(models.ZoneSouth), Bucket: models.BucketAny})
		assert.True(t, errors.Is(err, ErrTerminalStatus), "MoveCard on %s", status)

		_, err = svc.Reorder(ctx, "done", "", "")
		assert.True(t, errors.Is(err, ErrTerminalStatus), "Reorder on %s", status)

		err = svc.AssignTechnicianQuick(ctx, "done", "t2")
		assert.True(t, errors.Is(err, ErrTerminalStatus), "AssignTechnicianQuick on %s", status)

		err = svc.AssignJob(ctx, "done", "t2", nil)
		assert.True(t, errors.Is(err, ErrTerminalStatus), "AssignJob on %s", status)

		// Zero writes across all four.
		assert.Empty(t, store.updates)
	}
}

func TestMoveCardRecomputesWindowAndPosition(t *testing.T) {
	store := newMockJobStore(techJob("j1", "t1", 9, 0, 10, 0, models.JobStatusScheduled))
	audit := &mockAuditStore{}
	svc := newTestService(store, audit)

	placement, err := svc.MoveCard(context.Background(), MoveCardInput{
		JobID:  "j1",
		Zone:   zonePtr(models.ZoneSouth),
		Bucket: models.BucketAfternoon,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ZoneSouth, *placement.Zone)
	assert.Equal(t, schedule.BasePosition, placement.Position)
	// Canonical afternoon start, 60 minute duration preserved.
	assert.Equal(t, "12:00", placement.Window.Start.String())
	assert.Equal(t, "13:00", placement.Window.End.String())

	moved := store.jobs["j1"]
	assert.Equal(t, models.ZoneSouth, *moved.Zone)
	assert.Equal(t, "12:00", moved.ScheduledTimeStart.String())

	require.Len(t, audit.calls, 1)
	assert.Equal(t, "north", audit.calls[0].before["zone"])
	assert.Equal(t, "south", audit.calls[0].after["zone"])
	assert.Equal(t, "morning", audit.calls[0].before["bucket"])
	assert.Equal(t, "afternoon", audit.calls[0].after["bucket"])
}

func TestMoveCardToAnyClearsWindow(t *testing.T) {
	// Spec scenario: job2 shares technician t1 with job1; moving job2 to
	// zone south bucket any clears its window, so no conflict is
	// possible and the move succeeds.
	store := newMockJobStore(
		techJob("job1", "t1", 9, 0, 10, 0, models.JobStatusScheduled),
		techJob("job2", "t1", 10, 0, 11, 0, models.JobStatusScheduled),
	)
	svc := newTestService(store, &mockAuditStore{})

	placement, err := svc.MoveCard(context.Background(), MoveCardInput{
		JobID:  "job2",
		Zone:   zonePtr(models.ZoneSouth),
		Bucket: models.BucketAny,
	})
	require.NoError(t, err)
	assert.True(t, placement.Window.IsZero())

	moved := store.jobs["job2"]
	assert.Nil(t, moved.ScheduledTimeStart)
	assert.Nil(t, moved.ScheduledTimeEnd)
	assert.Equal(t, models.ZoneSouth, *moved.Zone)
}

func TestMoveCardConflictAbortsWithoutWrite(t *testing.T) {
	// job1 owns 08:00-10:00; dropping job2 into morning puts it at
	// 08:00-09:00, on top of job1.
	store := newMockJobStore(
		techJob("job1", "t1", 8, 0, 10, 0, models.JobStatusScheduled),
		techJob("job2", "t1", 12, 0, 13, 0, models.JobStatusScheduled),
	)
	svc := newTestService(store, &mockAuditStore{})

	_, err := svc.MoveCard(context.Background(), MoveCardInput{
		JobID:  "job2",
		Zone:   zonePtr(models.ZoneNorth),
		Bucket: models.BucketMorning,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	var conflictErr *ConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, "job1", conflictErr.Conflicts[0].ID)

	assert.Empty(t, store.updates)
}

func TestMoveCardUnassignedZone(t *testing.T) {
	store := newMockJobStore(techJob("j1", "t1", 9, 0, 10, 0, models.JobStatusScheduled))
	svc := newTestService(store, &mockAuditStore{})

	_, err := svc.MoveCard(context.Background(), MoveCardInput{JobID: "j1", Bucket: models.BucketAny})
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	assert.True(t, store.updates[0].update.SetZone)
	assert.Nil(t, store.updates[0].update.Zone)
	assert.Nil(t, store.jobs["j1"].Zone)
}

func TestReorderComputesMidpoint(t *testing.T) {
	prev := techJob("prev", "t1", 8, 0, 9, 0, models.JobStatusScheduled)
	prev.Position = 1
	next := techJob("next", "t1", 10, 0, 11, 0, models.JobStatusScheduled)
	next.Position = 2
	target := techJob("target", "t1", 12, 0, 13, 0, models.JobStatusScheduled)
	target.Position = 9

	store := newMockJobStore(prev, next, target)
	svc := newTestService(store, &mockAuditStore{})

	pos, err := svc.Reorder(context.Background(), "target", "prev", "next")
	require.NoError(t, err)
	assert.Greater(t, pos, 1.0)
	assert.Less(t, pos, 2.0)

	// Only position was written.
	require.Len(t, store.updates, 1)
	update := store.updates[0].update
	assert.NotNil(t, update.Position)
	assert.False(t, update.SetZone)
	assert.Nil(t, update.TimeWindow)
	assert.Nil(t, update.TechnicianID)
}

func TestReorderMissingNeighbor(t *testing.T) {
	store := newMockJobStore(techJob("target", "t1", 9, 0, 10, 0, models.JobStatusScheduled))
	svc := newTestService(store, &mockAuditStore{})

	_, err := svc.Reorder(context.Background(), "target", "ghost", "")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, store.updates)
}

func TestAssignQuickUsesPreciseOverlap(t *testing.T) {
	// t2 already works 09:00-10:00; the target job runs 10:00-11:00.
	// The precise check allows the back-to-back assignment where a
	// coarse "any same-day job" proxy would have refused it.
	busy := techJob("busy", "t2", 9, 0, 10, 0, models.JobStatusScheduled)
	target := techJob("target", "t1", 10, 0, 11, 0, models.JobStatusScheduled)
	store := newMockJobStore(busy, target)
	svc := newTestService(store, &mockAuditStore{})

	require.NoError(t, svc.AssignTechnicianQuick(context.Background(), "target", "t2"))
	assert.Equal(t, "t2", *store.jobs["target"].TechnicianID)
}

func TestAssignQuickConflict(t *testing.T) {
	busy := techJob("busy", "t2", 9, 0, 10, 0, models.JobStatusScheduled)
	target := techJob("target", "t1", 9, 30, 10, 30, models.JobStatusScheduled)
	store := newMockJobStore(busy, target)
	svc := newTestService(store, &mockAuditStore{})

	err := svc.AssignTechnicianQuick(context.Background(), "target", "t2")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Empty(t, store.updates)
}

func TestAssignJobConflictIgnoresTerminalAndSelf(t *testing.T) {
	jobA := techJob("a", "t1", 9, 0, 10, 0, models.JobStatusScheduled)
	jobB := techJob("b", "t1", 9, 30, 10, 30, models.JobStatusCompleted)
	jobC := techJob("c", "t9", 9, 15, 10, 15, models.JobStatusScheduled)
	store := newMockJobStore(jobA, jobB, jobC)
	svc := newTestService(store, &mockAuditStore{})

	// Assigning c onto t1 conflicts with a only; the completed b is
	// invisible to conflict detection.
	err := svc.AssignJob(context.Background(), "c", "t1", nil)
	require.Error(t, err)
	var conflictErr *ConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, "a", conflictErr.Conflicts[0].ID)

	// Re-assigning a to its own technician excludes itself and passes.
	require.NoError(t, svc.AssignJob(context.Background(), "a", "t1", nil))
}

func TestAssignJobWithDateChange(t *testing.T) {
	target := techJob("target", "t1", 9, 0, 10, 0, models.JobStatusScheduled)
	store := newMockJobStore(target)
	audit := &mockAuditStore{}
	svc := newTestService(store, audit)

	newDate := boardDate.AddDate(0, 0, 3)
	require.NoError(t, svc.AssignJob(context.Background(), "target", "t2", &newDate))

	updated := store.jobs["target"]
	assert.Equal(t, "t2", *updated.TechnicianID)
	assert.True(t, sameDate(newDate, *updated.ScheduledDate))

	// Audit captures the previous technician and date.
	require.Len(t, audit.calls, 1)
	assert.Equal(t, "t1", audit.calls[0].before["technician"])
	assert.Equal(t, "2024-06-01", audit.calls[0].before["date"])
	assert.Equal(t, "t2", audit.calls[0].after["technician"])
	assert.Equal(t, "2024-06-04", audit.calls[0].after["date"])
}

func TestActionsOnMissingJob(t *testing.T) {
	store := newMockJobStore()
	svc := newTestService(store, &mockAuditStore{})
	ctx := context.Background()

	_, err := svc.MoveCard(ctx, MoveCardInput{JobID: "ghost", Bucket: models.BucketAny})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "not_found", Kind(err))

	err = svc.AssignJob(ctx, "ghost", "t1", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAuditFailureDoesNotFailAction(t *testing.T) {
	store := newMockJobStore(techJob("j1", "t1", 9, 0, 10, 0, models.JobStatusScheduled))
	svc := newTestService(store, &mockAuditStore{err: errors.New("audit store down")})

	_, err := svc.Reorder(context.Background(), "j1", "", "")
	assert.NoError(t, err)
	require.Len(t, store.updates, 1)
}

func TestWriteFailureMapsToWriteFailed(t *testing.T) {
	store := newMockJobStore(techJob("j1", "t1", 9, 0, 10, 0, models.JobStatusScheduled))
	store.updateErr = errors.New("connection reset")
	svc := newTestService(store, &mockAuditStore{})

	_, err := svc.Reorder(context.Background(), "j1", "", "")
	assert.True(t, errors.Is(err, ErrWriteFailed))
	assert.Equal(t, "write_failed", Kind(err))
}

func TestBoardFetchFailurePropagates(t *testing.T) {
	store := newMockJobStore()
	store.listErr = errors.New("db gone")
	svc := newTestService(store, &mockAuditStore{})

	b, err := svc.Board(context.Background(), boardDate)
	assert.Nil(t, b)
	assert.Error(t, err)
}

func TestNextSlotThroughService(t *testing.T) {
	store := newMockJobStore(techJob("busy", "t1", 9, 0, 10, 0, models.JobStatusScheduled))
	svc := newTestService(store, &mockAuditStore{})

	slot, err := svc.NextSlot(context.Background(), "t1", boardDate.Add(9*time.Hour+30*time.Minute), 30, boardDate)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, boardDate.Add(10*time.Hour), slot.Start)
}
