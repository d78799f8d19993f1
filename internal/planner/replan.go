package planner

import (
	"time"

	"study-plan-service/internal/models"
)

// NeedsReplan decides whether the plan has drifted far enough from actual
// progress to justify a full rebuild. Two independent conditions:
//
//   - behind: any day before today still holds an uncompleted lesson;
//   - ahead: today's day exists, has lessons, and more than AheadThreshold of
//     them are already complete.
//
// Behind wins the tie: a learner who is both behind on old lessons and ahead
// on today's is treated as behind.
func NeedsReplan(plan models.StudyPlan, completed map[string]bool, today time.Time) (bool, Reason) {
	todayStr := FormatDate(Normalize(today))

	for _, day := range plan.Plan {
		if day.Date >= todayStr {
			continue
		}
		for _, lesson := range day.Lessons {
			if !completed[lesson.ID] {
				return true, ReasonBehind
			}
		}
	}

	if day := plan.DayFor(todayStr); day != nil && len(day.Lessons) > 0 {
		done := 0
		for _, lesson := range day.Lessons {
			if completed[lesson.ID] {
				done++
			}
		}
		if float64(done)/float64(len(day.Lessons)) > AheadThreshold {
			return true, ReasonAhead
		}
	}

	return false, ReasonNone
}
