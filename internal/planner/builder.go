package planner

import (
	"study-plan-service/internal/models"
)

// BuildMasterPlan packs pending lessons into ordered day buckets under the
// daily budget. The pack is stable and non-reordering: lessons land in input
// order, within and across buckets. A lesson always enters an empty bucket
// regardless of its duration, so a lesson longer than the whole budget still
// consumes exactly one day instead of stalling the plan. A non-empty bucket
// accepts a lesson only while the bucket stays within budget × OverflowTolerance.
func BuildMasterPlan(pending []models.Lesson, targetDailySeconds int) []DayBucket {
	var buckets []DayBucket
	var current DayBucket
	currentSeconds := 0

	limit := float64(targetDailySeconds) * OverflowTolerance

	for _, lesson := range pending {
		if len(current) == 0 {
			current = append(current, lesson)
			currentSeconds = lesson.DurationSeconds
			continue
		}
		if float64(currentSeconds+lesson.DurationSeconds) <= limit {
			current = append(current, lesson)
			currentSeconds += lesson.DurationSeconds
			continue
		}
		buckets = append(buckets, current)
		current = DayBucket{lesson}
		currentSeconds = lesson.DurationSeconds
	}

	if len(current) > 0 {
		buckets = append(buckets, current)
	}
	return buckets
}

// BuildMultiCoursePlan packs several course queues into shared day buckets.
// The daily budget is split across courses by percentage weight (equal split
// when no distribution is configured) and each course's queue is packed
// independently into its sub-budget with the same overflow tolerance. A day's
// bucket is the concatenation of every course's lessons for that day, in
// courseOrder. The loop ends on the first day that adds no lesson from any
// course.
func BuildMultiCoursePlan(queues map[string][]models.Lesson, courseOrder []string, targetDailySeconds int, weights map[string]int) []DayBucket {
	if len(courseOrder) == 0 {
		return nil
	}

	budgets := make(map[string]float64, len(courseOrder))
	equalShare := 100.0 / float64(len(courseOrder))
	for _, courseID := range courseOrder {
		pct := equalShare
		if w, ok := weights[courseID]; ok && w > 0 {
			pct = float64(w)
		}
		budgets[courseID] = float64(targetDailySeconds) * pct / 100.0
	}

	position := make(map[string]int, len(courseOrder))
	var buckets []DayBucket

	for {
		var day DayBucket
		for _, courseID := range courseOrder {
			queue := queues[courseID]
			idx := position[courseID]
			if idx >= len(queue) {
				continue
			}

			limit := budgets[courseID] * OverflowTolerance
			daySeconds := 0
			added := 0
			for idx < len(queue) {
				lesson := queue[idx]
				if added > 0 && float64(daySeconds+lesson.DurationSeconds) > limit {
					break
				}
				day = append(day, lesson)
				daySeconds += lesson.DurationSeconds
				added++
				idx++
			}
			position[courseID] = idx
		}

		if len(day) == 0 {
			break
		}
		buckets = append(buckets, day)
	}

	return buckets
}

// FilterPending drops every lesson already present in the completed set,
// preserving order.
func FilterPending(lessons []models.Lesson, completed map[string]bool) []models.Lesson {
	var pending []models.Lesson
	for _, l := range lessons {
		if !completed[l.ID] {
			pending = append(pending, l)
		}
	}
	return pending
}
