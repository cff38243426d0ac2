package schedule

import "github.com/SamShahinDev/dirtfree-crm-sub004/core/models"

// Bucket boundaries: a window starting before noon is morning, before
// 17:00 afternoon, otherwise evening. Windowless jobs land in "any".
var (
	noonCut    = models.NewTimeOfDay(12, 0)
	eveningCut = models.NewTimeOfDay(17, 0)
)

// endOfDay caps recomputed windows so they never spill past midnight.
var endOfDay = models.NewTimeOfDay(23, 59)

// ClassifyBucket maps a stored time window onto exactly one bucket. The
// mapping is total: every input, including a missing window, classifies.
func ClassifyBucket(start, end *models.TimeOfDay) models.Bucket {
	if start == nil || end == nil {
		return models.BucketAny
	}
	switch {
	case *start < noonCut:
		return models.BucketMorning
	case *start < eveningCut:
		return models.BucketAfternoon
	default:
		return models.BucketEvening
	}
}

// ClassifyJobBucket classifies a job by its stored window.
func ClassifyJobBucket(j *models.Job) models.Bucket {
	return ClassifyBucket(j.ScheduledTimeStart, j.ScheduledTimeEnd)
}

// WindowForBucket computes the time window a job takes on when dropped
// into target. Dropping into "any" clears the window. Dropping into the
// bucket the current window already classifies as returns the current
// window unchanged, so re-drops cause no churn. Otherwise the window
// starts at the bucket's canonical start and keeps the job's current
// duration (or the policy default), capped at end of day.
func WindowForBucket(target models.Bucket, current models.TimeWindow, p Policy) models.TimeWindow {
	if target == models.BucketAny {
		return models.TimeWindow{}
	}
	if !current.IsZero() && ClassifyBucket(current.Start, current.End) == target {
		return current
	}

	minutes := p.DefaultJobMinutes
	if m, ok := current.Minutes(); ok && m > 0 {
		minutes = m
	}
	start := p.BucketStarts[target]
	end := start + models.TimeOfDay(minutes)
	if end > endOfDay {
		end = endOfDay
	}
	return models.TimeWindow{Start: start.Ptr(), End: end.Ptr()}
}
