package board

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
	"github.com/SamShahinDev/dirtfree-crm-sub004/core/schedule"
)

// JobStore is the job source and sink the board operates over. The
// production implementation is repository.JobRepository.
type JobStore interface {
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListForDate(ctx context.Context, date time.Time) ([]models.Job, error)
	ListForTechnicianAndDate(ctx context.Context, technicianID string, date time.Time, excludeJobID string) ([]models.Job, error)
	UpdateScheduling(ctx context.Context, id string, update models.SchedulingUpdate) error
}

// AuditStore records before/after snapshots of board mutations.
type AuditStore interface {
	RecordJobChange(ctx context.Context, jobID string, before, after map[string]interface{}) error
}

// Service is the board action layer: the sole writer path for scheduling
// fields. Every mutation follows the same shape: validate, guard terminal
// status, compute, check conflicts, write, audit.
type Service struct {
	jobs   JobStore
	audit  AuditStore
	policy schedule.Policy
	log    *zap.SugaredLogger

	// locks serializes conflict-check + write per (technician, date) so
	// two concurrent placements cannot both pass a stale conflict check.
	locks sync.Map // string -> *sync.Mutex
}

// NewService creates a board service.
func NewService(jobs JobStore, audit AuditStore, policy schedule.Policy, log *zap.SugaredLogger) *Service {
	return &Service{jobs: jobs, audit: audit, policy: policy, log: log}
}

// Board fetches and assembles the board view for one day. A fetch failure
// propagates instead of rendering a partial board.
func (s *Service) Board(ctx context.Context, date time.Time) (*Board, error) {
	jobs, err := s.jobs.ListForDate(ctx, date)
	if err != nil {
		return nil, errors.Wrap(err, "fetch jobs for board")
	}
	return Assemble(date, jobs, s.policy), nil
}

// NextSlot finds the technician's first free interval of the requested
// duration on date, starting no earlier than preferred.
func (s *Service) NextSlot(ctx context.Context, technicianID string, preferred time.Time, durationMinutes int, date time.Time) (*schedule.Slot, error) {
	jobs, err := s.jobs.ListForTechnicianAndDate(ctx, technicianID, date, "")
	if err != nil {
		return nil, errors.Wrap(err, "fetch technician jobs")
	}
	return schedule.FindNextAvailableSlot(jobs, preferred, durationMinutes, date, s.policy), nil
}

// ValidateSlot checks a proposed interval against the duration and
// business-hour rules, without consulting anyone's schedule. Used by the
// UI to reject malformed slots before attempting an assignment.
func (s *Service) ValidateSlot(start, end time.Time) error {
	return schedule.ValidateTimeSlot(start, end, s.policy)
}

// MoveCardInput describes a card dropped on a new zone/bucket cell.
// PrevJobID and NextJobID are the drop position's neighbors within the
// target bucket; either may be empty at a bucket edge.
type MoveCardInput struct {
	JobID     string
	Zone      *models.Zone // nil moves the card to the unassigned column
	Bucket    models.Bucket
	PrevJobID string
	NextJobID string
}

// CardPlacement is the resolved placement after a successful move.
type CardPlacement struct {
	Zone     *models.Zone      `json:"zone"`
	Bucket   models.Bucket     `json:"bucket"`
	Position float64           `json:"position"`
	Window   models.TimeWindow `json:"-"`
}

// MoveCard places a job into a zone/bucket cell: it recomputes the time
// window for the target bucket, computes a fractional position between
// the neighbors, and rejects the move when the recomputed window would
// double-book the job's technician.
func (s *Service) MoveCard(ctx context.Context, input MoveCardInput) (*CardPlacement, error) {
	job, err := s.getJob(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	if err := guardTerminal(job); err != nil {
		return nil, err
	}

	current := models.TimeWindow{Start: job.ScheduledTimeStart, End: job.ScheduledTimeEnd}
	window := schedule.WindowForBucket(input.Bucket, current, s.policy)

	position, err := s.positionBetween(ctx, input.PrevJobID, input.NextJobID)
	if err != nil {
		return nil, err
	}

	if job.TechnicianID != nil && !window.IsZero() && job.ScheduledDate != nil {
		unlock := s.lockSchedule(*job.TechnicianID, *job.ScheduledDate)
		defer unlock()
		if err := s.checkWindowConflicts(ctx, *job.TechnicianID, *job.ScheduledDate, window, job.ID); err != nil {
			return nil, err
		}
	}

	update := models.SchedulingUpdate{
		SetZone:    true,
		Zone:       input.Zone,
		Position:   &position,
		TimeWindow: &window,
	}
	if err := s.write(ctx, job.ID, update); err != nil {
		return nil, err
	}

	before := snapshotScheduling(job)
	job.Zone = input.Zone
	job.Position = position
	job.ScheduledTimeStart = window.Start
	job.ScheduledTimeEnd = window.End
	s.recordAudit(ctx, job.ID, before, snapshotScheduling(job))

	return &CardPlacement{Zone: input.Zone, Bucket: input.Bucket, Position: position, Window: window}, nil
}

// Reorder recomputes a job's position between two siblings in its current
// bucket. Reordering never touches time or technician, so there is no
// conflict check.
func (s *Service) Reorder(ctx context.Context, jobID, prevJobID, nextJobID string) (float64, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return 0, err
	}
	if err := guardTerminal(job); err != nil {
		return 0, err
	}

	position, err := s.positionBetween(ctx, prevJobID, nextJobID)
	if err != nil {
		return 0, err
	}
	if err := s.write(ctx, job.ID, models.SchedulingUpdate{Position: &position}); err != nil {
		return 0, err
	}

	before := snapshotScheduling(job)
	job.Position = position
	s.recordAudit(ctx, job.ID, before, snapshotScheduling(job))
	return position, nil
}

// AssignTechnicianQuick assigns a technician without changing the job's
// date or window. The check is the same precise overlap test as the full
// assignment path: a technician with other same-day work that does not
// overlap this job stays assignable.
func (s *Service) AssignTechnicianQuick(ctx context.Context, jobID, technicianID string) error {
	return s.assign(ctx, jobID, technicianID, nil)
}

// AssignJob assigns a technician and optionally moves the job to another
// date, with a full conflict check against the technician's schedule on
// the effective date.
func (s *Service) AssignJob(ctx context.Context, jobID, technicianID string, scheduledDate *time.Time) error {
	return s.assign(ctx, jobID, technicianID, scheduledDate)
}

func (s *Service) assign(ctx context.Context, jobID, technicianID string, scheduledDate *time.Time) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := guardTerminal(job); err != nil {
		return err
	}

	effectiveDate := job.ScheduledDate
	if scheduledDate != nil {
		effectiveDate = scheduledDate
	}

	if job.HasTimeWindow() && effectiveDate != nil {
		window := models.TimeWindow{Start: job.ScheduledTimeStart, End: job.ScheduledTimeEnd}
		unlock := s.lockSchedule(technicianID, *effectiveDate)
		defer unlock()
		if err := s.checkWindowConflicts(ctx, technicianID, *effectiveDate, window, job.ID); err != nil {
			return err
		}
	}

	update := models.SchedulingUpdate{TechnicianID: &technicianID, ScheduledDate: scheduledDate}
	if err := s.write(ctx, job.ID, update); err != nil {
		return err
	}

	before := snapshotScheduling(job)
	job.TechnicianID = &technicianID
	if scheduledDate != nil {
		job.ScheduledDate = scheduledDate
	}
	s.recordAudit(ctx, job.ID, before, snapshotScheduling(job))
	return nil
}

func (s *Service) getJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Mark(errors.Newf("job %s not found", id), ErrNotFound)
		}
		return nil, errors.Mark(errors.Wrapf(err, "fetch job %s", id), ErrWriteFailed)
	}
	return job, nil
}

func guardTerminal(job *models.Job) error {
	if job.Status.IsTerminal() {
		return errors.Mark(
			errors.Newf("job %s is %s and can no longer be scheduled", job.ID, job.Status),
			ErrTerminalStatus)
	}
	return nil
}

// positionBetween resolves neighbor jobs to their stored positions and
// computes the new fractional position. Unknown neighbor ids are NotFound.
func (s *Service) positionBetween(ctx context.Context, prevJobID, nextJobID string) (float64, error) {
	var before, after *float64
	if prevJobID != "" {
		prev, err := s.getJob(ctx, prevJobID)
		if err != nil {
			return 0, err
		}
		before = &prev.Position
	}
	if nextJobID != "" {
		next, err := s.getJob(ctx, nextJobID)
		if err != nil {
			return 0, err
		}
		after = &next.Position
	}
	return schedule.NextPosition(before, after), nil
}

func (s *Service) checkWindowConflicts(ctx context.Context, technicianID string, date time.Time, window models.TimeWindow, excludeJobID string) error {
	if window.Start == nil || window.End == nil {
		return nil
	}
	others, err := s.jobs.ListForTechnicianAndDate(ctx, technicianID, date, excludeJobID)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "fetch technician schedule"), ErrWriteFailed)
	}
	result := schedule.CheckConflicts(others, window.Start.On(date), window.End.On(date), excludeJobID)
	if !result.OK {
		return newConflictError(result.Conflicts)
	}
	return nil
}

func (s *Service) write(ctx context.Context, jobID string, update models.SchedulingUpdate) error {
	if err := s.jobs.UpdateScheduling(ctx, jobID, update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Mark(errors.Newf("job %s not found", jobID), ErrNotFound)
		}
		return errors.Mark(errors.Wrapf(err, "update job %s", jobID), ErrWriteFailed)
	}
	return nil
}

// recordAudit is fire and forget: a failed audit write is logged and
// swallowed, never rolling back the scheduling write it describes.
func (s *Service) recordAudit(ctx context.Context, jobID string, before, after map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordJobChange(ctx, jobID, before, after); err != nil {
		s.log.Warnw("audit write failed", "job_id", jobID, "error", err)
	}
}

// lockSchedule serializes board writes touching one technician's day.
func (s *Service) lockSchedule(technicianID string, date time.Time) func() {
	key := fmt.Sprintf("%s|%s", technicianID, date.Format("2006-01-02"))
	mu, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}

// snapshotScheduling captures the board-owned fields for audit records.
func snapshotScheduling(job *models.Job) map[string]interface{} {
	snap := map[string]interface{}{
		"zone":       nil,
		"bucket":     string(schedule.ClassifyJobBucket(job)),
		"position":   job.Position,
		"technician": nil,
		"date":       nil,
		"time_start": nil,
		"time_end":   nil,
	}
	if job.Zone != nil {
		snap["zone"] = string(*job.Zone)
	}
	if job.TechnicianID != nil {
		snap["technician"] = *job.TechnicianID
	}
	if job.ScheduledDate != nil {
		snap["date"] = job.ScheduledDate.Format("2006-01-02")
	}
	if job.ScheduledTimeStart != nil {
		snap["time_start"] = job.ScheduledTimeStart.String()
	}
	if job.ScheduledTimeEnd != nil {
		snap["time_end"] = job.ScheduledTimeEnd.String()
	}
	return snap
}
