package planner

import (
	"fmt"
	"time"

	"study-plan-service/internal/models"
)

// ApplySchedule walks calendar dates forward from startDate, skipping
// weekdays outside the allowed set, and assigns one bucket per valid date.
// The empty-weekday precondition is checked before the walk starts and every
// bucket's scan is additionally bounded by MaxScheduleIterations, so the walk
// can never spin. An empty master plan yields an empty plan whose expected
// completion date is today.
func ApplySchedule(master []DayBucket, allowed map[time.Weekday]bool, startDate, today time.Time) (models.StudyPlan, error) {
	if len(allowed) == 0 {
		return models.StudyPlan{}, ErrNoStudyDays
	}

	plan := models.StudyPlan{
		Plan:                   []models.StudyPlanDay{},
		ExpectedCompletionDate: FormatDate(Normalize(today)),
	}

	cursor := Normalize(startDate)
	for _, bucket := range master {
		assigned := false
		for i := 0; i < MaxScheduleIterations; i++ {
			if allowed[cursor.Weekday()] {
				plan.Plan = append(plan.Plan, models.StudyPlanDay{
					Date:    FormatDate(cursor),
					Lessons: bucket,
				})
				// One bucket per date: move past the day just used before
				// scanning for the next one.
				cursor = cursor.AddDate(0, 0, 1)
				assigned = true
				break
			}
			cursor = cursor.AddDate(0, 0, 1)
		}
		if !assigned {
			return models.StudyPlan{}, fmt.Errorf("planner: no valid study date found within %d days", MaxScheduleIterations)
		}
	}

	if n := len(plan.Plan); n > 0 {
		plan.ExpectedCompletionDate = plan.Plan[n-1].Date
	}
	return plan, nil
}
