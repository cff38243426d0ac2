package schedule

import "github.com/SamShahinDev/dirtfree-crm-sub004/core/models"

// Policy holds the tunable scheduling rules shared by the conflict
// detector, the bucket engine, and the board assembler. Defaults match
// dispatch practice; deployments override them through the schedule
// policy file (see config).
type Policy struct {
	// Business hours bound slot validation and slot search.
	BusinessStart models.TimeOfDay
	BusinessEnd   models.TimeOfDay

	// Slot duration limits for explicit validation.
	MinSlotMinutes int
	MaxSlotMinutes int

	// DefaultJobMinutes is the estimated duration for jobs without a
	// time window. Used everywhere duration is estimated so the board
	// totals and slot search cannot drift apart.
	DefaultJobMinutes int

	// BucketStarts are the canonical window starts used when a card is
	// dropped into a timed bucket.
	BucketStarts map[models.Bucket]models.TimeOfDay
}

// DefaultPolicy returns the standard dispatch policy: 07:00-18:00
// business hours, 30 minute to 8 hour slots, 120 minute default job.
func DefaultPolicy() Policy {
	return Policy{
		BusinessStart:     models.NewTimeOfDay(7, 0),
		BusinessEnd:       models.NewTimeOfDay(18, 0),
		MinSlotMinutes:    30,
		MaxSlotMinutes:    480,
		DefaultJobMinutes: 120,
		BucketStarts: map[models.Bucket]models.TimeOfDay{
			models.BucketMorning:   models.NewTimeOfDay(8, 0),
			models.BucketAfternoon: models.NewTimeOfDay(12, 0),
			models.BucketEvening:   models.NewTimeOfDay(17, 0),
		},
	}
}

// EstimatedMinutes returns the job's window length, or the policy default
// when the job carries no time window.
func (p Policy) EstimatedMinutes(j *models.Job) int {
	if minutes, ok := j.WindowMinutes(); ok {
		return minutes
	}
	return p.DefaultJobMinutes
}
