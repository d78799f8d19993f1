package planner

import (
	"errors"
	"time"

	"study-plan-service/internal/models"
)

// Policy constants. The overflow tolerance and ahead threshold are tunable
// policy carried over from the original planner behavior, not derived
// invariants.
const (
	// OverflowTolerance lets a study day run over its budget by 20% before a
	// lesson is pushed to the next day, to avoid fragmenting a topic.
	OverflowTolerance = 1.2

	// AheadThreshold is the fraction of today's lessons that must already be
	// complete before the learner counts as ahead of schedule.
	AheadThreshold = 0.60

	// DefaultLessonSeconds is substituted when the duration table has no
	// entry for a lesson.
	DefaultLessonSeconds = 300

	// MaxScheduleIterations bounds the calendar walk per bucket. With at
	// least one allowed weekday a valid date is always found within 7 days;
	// the bound exists so a bad weekday set can never loop forever.
	MaxScheduleIterations = 366
)

// ErrNoStudyDays is returned before any calendar walk when the settings allow
// no weekday at all.
var ErrNoStudyDays = errors.New("planner: no allowed study weekdays")

// Reason tags why a replan is (or is not) needed.
type Reason string

const (
	ReasonBehind Reason = "behind"
	ReasonAhead  Reason = "ahead"
	ReasonNone   Reason = "none"
)

// DayBucket is one unscheduled study session: an ordered group of lessons
// before calendar dates are attached.
type DayBucket []models.Lesson

// TotalSeconds sums the bucket's lesson durations.
func (b DayBucket) TotalSeconds() int {
	total := 0
	for _, l := range b {
		total += l.DurationSeconds
	}
	return total
}

// Normalize pins a date to noon local time. Schedule arithmetic works in
// whole days; noon keeps DST transitions from shifting a date across
// midnight.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}

// FormatDate renders a calendar date in the wire format.
func FormatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}
