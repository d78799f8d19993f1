package service

import (
	"testing"
	"time"

	"study-plan-service/internal/models"
	"study-plan-service/internal/planner"
)

func TestProjectCoursePlan(t *testing.T) {
	scheduled := models.StudyPlan{
		Plan: []models.StudyPlanDay{
			{
				Date: "2024-01-01",
				Lessons: []models.Lesson{
					{ID: "a-1", CourseID: "a"},
					{ID: "b-1", CourseID: "b"},
				},
			},
			{
				Date: "2024-01-02",
				Lessons: []models.Lesson{
					{ID: "b-2", CourseID: "b"},
				},
			},
			{
				Date: "2024-01-03",
				Lessons: []models.Lesson{
					{ID: "a-2", CourseID: "a"},
				},
			},
		},
	}
	today := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

	planA := projectCoursePlan(scheduled, "a", today)
	if len(planA.Plan) != 2 {
		t.Fatalf("course a: expected 2 days, got %d", len(planA.Plan))
	}
	if planA.Plan[0].Date != "2024-01-01" || planA.Plan[1].Date != "2024-01-03" {
		t.Errorf("course a kept wrong dates: %v", planA.Plan)
	}
	if planA.ExpectedCompletionDate != "2024-01-03" {
		t.Errorf("course a expectedCompletionDate = %s, want 2024-01-03", planA.ExpectedCompletionDate)
	}
	for _, day := range planA.Plan {
		for _, lesson := range day.Lessons {
			if lesson.CourseID != "a" {
				t.Errorf("course a plan contains foreign lesson %s", lesson.ID)
			}
		}
	}

	planB := projectCoursePlan(scheduled, "b", today)
	if len(planB.Plan) != 2 {
		t.Fatalf("course b: expected 2 days, got %d", len(planB.Plan))
	}
	if planB.ExpectedCompletionDate != "2024-01-02" {
		t.Errorf("course b expectedCompletionDate = %s, want 2024-01-02", planB.ExpectedCompletionDate)
	}
}

func TestProjectCoursePlanEmpty(t *testing.T) {
	today := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)

	plan := projectCoursePlan(models.StudyPlan{}, "missing", today)
	if len(plan.Plan) != 0 {
		t.Fatalf("expected empty plan, got %d days", len(plan.Plan))
	}
	if plan.ExpectedCompletionDate != "2024-03-15" {
		t.Errorf("expectedCompletionDate = %s, want today", plan.ExpectedCompletionDate)
	}
}

func TestResolveStartDate(t *testing.T) {
	parsed := resolveStartDate("2024-06-10")
	if planner.FormatDate(parsed) != "2024-06-10" {
		t.Errorf("resolveStartDate parsed to %s", planner.FormatDate(parsed))
	}
	if parsed.Hour() != 12 {
		t.Errorf("start date not normalized to noon: %v", parsed)
	}

	today := planner.FormatDate(planner.Normalize(time.Now()))
	for _, raw := range []string{"", "10/06/2024", "junk"} {
		got := resolveStartDate(raw)
		if planner.FormatDate(got) != today {
			t.Errorf("resolveStartDate(%q) = %s, want today", raw, planner.FormatDate(got))
		}
	}
}
