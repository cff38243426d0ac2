// Package board derives the dispatch board view (zone columns, time
// buckets, workload aggregates) and runs the four mutating board actions
// with conflict checking and audit logging.
package board

import (
	"sort"
	"time"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
	"github.com/SamShahinDev/dirtfree-crm-sub004/core/schedule"
)

// UnassignedColumn is the pseudo-zone holding jobs without a zone. It is
// appended after the fixed zone columns, and only when non-empty.
const UnassignedColumn = "unassigned"

// BucketGroup is one time-bucket row inside a zone column, with its jobs
// in presentation order.
type BucketGroup struct {
	Bucket           models.Bucket `json:"bucket"`
	Jobs             []models.Job  `json:"jobs"`
	JobCount         int           `json:"job_count"`
	EstimatedMinutes int           `json:"estimated_minutes"`
}

// TechnicianLoad aggregates one technician's assigned work within a zone.
type TechnicianLoad struct {
	TechnicianID     string `json:"technician_id"`
	JobCount         int    `json:"job_count"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// ZoneColumn is one board column: a zone (or the unassigned pseudo-zone)
// with its bucket rows and aggregates.
type ZoneColumn struct {
	Zone             string           `json:"zone"`
	Buckets          []BucketGroup    `json:"buckets"`
	JobCount         int              `json:"job_count"`
	EstimatedMinutes int              `json:"estimated_minutes"`
	Technicians      []TechnicianLoad `json:"technicians"`
}

// Board is the assembled view for one day, the sole artifact handed to
// any rendering layer.
type Board struct {
	Date    time.Time    `json:"date"`
	Columns []ZoneColumn `json:"columns"`
}

// Assemble groups a day's flat job list into zone columns and bucket rows
// with per-zone and per-technician aggregates. It is pure and
// deterministic: identical input yields an identical board.
func Assemble(date time.Time, jobs []models.Job, p schedule.Policy) *Board {
	byZone := make(map[string][]models.Job)
	for _, job := range jobs {
		key := UnassignedColumn
		if job.Zone != nil {
			key = string(*job.Zone)
		}
		byZone[key] = append(byZone[key], job)
	}

	b := &Board{Date: date}
	for _, zone := range models.ZoneOrder {
		if zoned, ok := byZone[string(zone)]; ok {
			b.Columns = append(b.Columns, assembleColumn(string(zone), zoned, p))
		} else {
			b.Columns = append(b.Columns, ZoneColumn{Zone: string(zone), Buckets: emptyBuckets()})
		}
	}
	if unassigned, ok := byZone[UnassignedColumn]; ok && len(unassigned) > 0 {
		b.Columns = append(b.Columns, assembleColumn(UnassignedColumn, unassigned, p))
	}
	return b
}

func emptyBuckets() []BucketGroup {
	groups := make([]BucketGroup, 0, len(models.BucketOrder))
	for _, bucket := range models.BucketOrder {
		groups = append(groups, BucketGroup{Bucket: bucket})
	}
	return groups
}

func assembleColumn(zone string, jobs []models.Job, p schedule.Policy) ZoneColumn {
	byBucket := make(map[models.Bucket][]models.Job)
	for _, job := range jobs {
		job := job
		bucket := schedule.ClassifyJobBucket(&job)
		byBucket[bucket] = append(byBucket[bucket], job)
	}

	col := ZoneColumn{Zone: zone}
	techLoads := make(map[string]*TechnicianLoad)
	for _, bucket := range models.BucketOrder {
		group := BucketGroup{Bucket: bucket, Jobs: byBucket[bucket]}
		sortBucketJobs(group.Jobs)
		for i := range group.Jobs {
			minutes := p.EstimatedMinutes(&group.Jobs[i])
			group.JobCount++
			group.EstimatedMinutes += minutes
			if tech := group.Jobs[i].TechnicianID; tech != nil {
				load, ok := techLoads[*tech]
				if !ok {
					load = &TechnicianLoad{TechnicianID: *tech}
					techLoads[*tech] = load
				}
				load.JobCount++
				load.EstimatedMinutes += minutes
			}
		}
		col.JobCount += group.JobCount
		col.EstimatedMinutes += group.EstimatedMinutes
		col.Buckets = append(col.Buckets, group)
	}

	ids := make([]string, 0, len(techLoads))
	for id := range techLoads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		col.Technicians = append(col.Technicians, *techLoads[id])
	}
	return col
}

// sortBucketJobs orders a bucket by position ascending. Equal or missing
// positions fall back to scheduled start time, then id, so the order is
// deterministic even after fractional positions collapse.
func sortBucketJobs(jobs []models.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		a, b := jobs[i], jobs[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		aStart, aOK := startMinutes(a)
		bStart, bOK := startMinutes(b)
		if aOK != bOK {
			return aOK // timed jobs before untimed on ties
		}
		if aOK && aStart != bStart {
			return aStart < bStart
		}
		return a.ID < b.ID
	})
}

func startMinutes(j models.Job) (int, bool) {
	if j.ScheduledTimeStart == nil {
		return 0, false
	}
	return int(*j.ScheduledTimeStart), true
}
