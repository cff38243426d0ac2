package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
)

// jobColumns is the scan order shared by every job query.
const jobColumns = `id, customer_id, customer_name, customer_phone, address, description,
	status, technician_id, zone, scheduled_date, scheduled_time_start, scheduled_time_end,
	position, created_at, updated_at`

// JobRepository handles database operations for board jobs. It is the
// job source and sink behind the board service.
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// GetJob retrieves a job by ID. Missing jobs return sql.ErrNoRows.
func (r *JobRepository) GetJob(ctx context.Context, id string) (*models.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE id = $1`, jobColumns)
	return scanJob(r.db.QueryRowContext(ctx, query, id))
}

// ListForDate returns all jobs scheduled on one calendar date, the input
// for board assembly.
func (r *JobRepository) ListForDate(ctx context.Context, date time.Time) ([]models.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE scheduled_date = $1 ORDER BY position, id`, jobColumns)
	rows, err := r.db.QueryContext(ctx, query, dateOnly(date))
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

// ListForTechnicianAndDate returns one technician's jobs on a date,
// optionally excluding the job currently being moved.
func (r *JobRepository) ListForTechnicianAndDate(ctx context.Context, technicianID string, date time.Time, excludeJobID string) ([]models.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE technician_id = $1 AND scheduled_date = $2`, jobColumns)
	args := []interface{}{technicianID, dateOnly(date)}
	if excludeJobID != "" {
		query += ` AND id != $3`
		args = append(args, excludeJobID)
	}
	query += ` ORDER BY scheduled_time_start NULLS LAST, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

// UpdateScheduling writes the board-owned fields named by update. A
// zero-row update reports sql.ErrNoRows so callers can distinguish a
// vanished job from a write failure.
func (r *JobRepository) UpdateScheduling(ctx context.Context, id string, update models.SchedulingUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	var set []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.SetZone {
		if update.Zone != nil {
			add("zone", string(*update.Zone))
		} else {
			add("zone", nil)
		}
	}
	if update.Position != nil {
		add("position", *update.Position)
	}
	if update.TimeWindow != nil {
		add("scheduled_time_start", timeValue(update.TimeWindow.Start))
		add("scheduled_time_end", timeValue(update.TimeWindow.End))
	}
	if update.TechnicianID != nil {
		add("technician_id", *update.TechnicianID)
	}
	if update.ScheduledDate != nil {
		add("scheduled_date", dateOnly(*update.ScheduledDate))
	}
	set = append(set, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE jobs SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func timeValue(t *models.TimeOfDay) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var job models.Job
	var technicianID sql.NullString
	var zone sql.NullString
	var scheduledDate sql.NullTime
	var timeStart sql.NullString
	var timeEnd sql.NullString

	err := row.Scan(
		&job.ID,
		&job.CustomerID,
		&job.CustomerName,
		&job.CustomerPhone,
		&job.Address,
		&job.Description,
		&job.Status,
		&technicianID,
		&zone,
		&scheduledDate,
		&timeStart,
		&timeEnd,
		&job.Position,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if technicianID.Valid {
		job.TechnicianID = &technicianID.String
	}
	if zone.Valid {
		z := models.Zone(zone.String)
		job.Zone = &z
	}
	if scheduledDate.Valid {
		job.ScheduledDate = &scheduledDate.Time
	}
	if timeStart.Valid {
		parsed, err := models.ParseTimeOfDay(timeStart.String)
		if err != nil {
			return nil, err
		}
		job.ScheduledTimeStart = parsed.Ptr()
	}
	if timeEnd.Valid {
		parsed, err := models.ParseTimeOfDay(timeEnd.String)
		if err != nil {
			return nil, err
		}
		job.ScheduledTimeEnd = parsed.Ptr()
	}
	return &job, nil
}

func collectJobs(rows *sql.Rows) ([]models.Job, error) {
	defer rows.Close()
	var jobs []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}
