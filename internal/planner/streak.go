package planner

import (
	"time"

	"study-plan-service/internal/models"
)

// StreakLapsed reports whether the streak should reset: true when the last
// recorded streak update is neither today nor yesterday, i.e. a full calendar
// day passed with no completion. An empty lastUpdate (streak never recorded)
// also counts as lapsed.
func StreakLapsed(lastUpdate string, today time.Time) bool {
	if lastUpdate == "" {
		return true
	}
	day := Normalize(today)
	if lastUpdate == FormatDate(day) {
		return false
	}
	if lastUpdate == FormatDate(day.AddDate(0, 0, -1)) {
		return false
	}
	return true
}

// DayQuotaMet reports whether every lesson scheduled for the day is complete.
// An empty day never meets a quota.
func DayQuotaMet(day models.StudyPlanDay, completed map[string]bool) bool {
	if len(day.Lessons) == 0 {
		return false
	}
	for _, lesson := range day.Lessons {
		if !completed[lesson.ID] {
			return false
		}
	}
	return true
}

// ShouldIncrementStreak evaluates the one-way daily ratchet after a lesson
// transitions to completed: the streak grows by exactly one when some active
// plan's bucket for today is now fully complete and no increment was recorded
// today yet. Un-completing a lesson never reverses a recorded increment.
func ShouldIncrementStreak(plans map[string]models.CoursePlan, completed map[string]bool, lastUpdate string, today time.Time) bool {
	todayStr := FormatDate(Normalize(today))
	if lastUpdate == todayStr {
		return false
	}
	for _, cp := range plans {
		if day := cp.Plan.DayFor(todayStr); day != nil && DayQuotaMet(*day, completed) {
			return true
		}
	}
	return false
}
