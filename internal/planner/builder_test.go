package planner

import (
	"testing"

	"study-plan-service/internal/models"
)

func lesson(id string, seconds int) models.Lesson {
	return models.Lesson{ID: id, CourseID: "pbi", Title: id, DurationSeconds: seconds}
}

func flatten(buckets []DayBucket) []string {
	var ids []string
	for _, b := range buckets {
		for _, l := range b {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

func TestBuildMasterPlanKeepsOrderAndLosesNothing(t *testing.T) {
	pending := []models.Lesson{
		lesson("pbi-1", 600),
		lesson("pbi-2", 1800),
		lesson("pbi-3", 300),
		lesson("pbi-4", 2400),
		lesson("pbi-5", 900),
		lesson("pbi-6", 1200),
	}

	buckets := BuildMasterPlan(pending, 1800)

	got := flatten(buckets)
	if len(got) != len(pending) {
		t.Fatalf("expected %d lessons across all buckets, got %d", len(pending), len(got))
	}
	for i, l := range pending {
		if got[i] != l.ID {
			t.Errorf("position %d: expected %s, got %s", i, l.ID, got[i])
		}
	}
}

func TestBuildMasterPlanRespectsOverflowBound(t *testing.T) {
	pending := []models.Lesson{
		lesson("pbi-1", 1200),
		lesson("pbi-2", 1200),
		lesson("pbi-3", 1200),
		lesson("pbi-4", 1200),
		lesson("pbi-5", 1200),
	}
	target := 3600

	buckets := BuildMasterPlan(pending, target)

	limit := float64(target) * OverflowTolerance
	for i, b := range buckets {
		if len(b) > 1 && float64(b.TotalSeconds()) > limit {
			t.Errorf("bucket %d: multi-lesson bucket exceeds limit: %d > %.0f", i, b.TotalSeconds(), limit)
		}
	}

	// Worked example: 3600s/day caps at 4320s, so lessons 1-3 (3600s) fit day
	// one and a 4th (4800s) does not.
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if len(buckets[0]) != 3 || len(buckets[1]) != 2 {
		t.Errorf("expected split 3/2, got %d/%d", len(buckets[0]), len(buckets[1]))
	}
}

func TestBuildMasterPlanOversizedLessonGetsOwnDay(t *testing.T) {
	pending := []models.Lesson{
		lesson("pbi-1", 7200), // twice the budget
		lesson("pbi-2", 600),
	}

	buckets := BuildMasterPlan(pending, 3600)

	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if len(buckets[0]) != 1 || buckets[0][0].ID != "pbi-1" {
		t.Errorf("oversized lesson should own its bucket, got %v", buckets[0])
	}
}

func TestBuildMasterPlanEmptyInput(t *testing.T) {
	if buckets := BuildMasterPlan(nil, 3600); len(buckets) != 0 {
		t.Errorf("expected no buckets for empty input, got %d", len(buckets))
	}
}

func TestBuildMasterPlanAlwaysConsumes(t *testing.T) {
	// Zero budget must still make progress: every bucket holds exactly the
	// one lesson that entered it unconditionally.
	pending := []models.Lesson{
		lesson("pbi-1", 500),
		lesson("pbi-2", 500),
		lesson("pbi-3", 500),
	}

	buckets := BuildMasterPlan(pending, 0)

	if len(buckets) != 3 {
		t.Fatalf("expected 3 single-lesson buckets, got %d", len(buckets))
	}
	for i, b := range buckets {
		if len(b) != 1 {
			t.Errorf("bucket %d: expected 1 lesson, got %d", i, len(b))
		}
	}
}

func TestBuildMultiCoursePlanSplitsBudget(t *testing.T) {
	queues := map[string][]models.Lesson{
		"pbi": {
			{ID: "pbi-1", CourseID: "pbi", DurationSeconds: 1200},
			{ID: "pbi-2", CourseID: "pbi", DurationSeconds: 1200},
			{ID: "pbi-3", CourseID: "pbi", DurationSeconds: 1200},
		},
		"sql": {
			{ID: "sql-1", CourseID: "sql", DurationSeconds: 1200},
			{ID: "sql-2", CourseID: "sql", DurationSeconds: 1200},
		},
	}
	order := []string{"pbi", "sql"}

	// Equal split of 3600s gives each course 1800s (2160s with tolerance):
	// one 1200s lesson per course per day.
	buckets := BuildMultiCoursePlan(queues, order, 3600, nil)

	if len(buckets) != 3 {
		t.Fatalf("expected 3 days, got %d", len(buckets))
	}
	wantDays := [][]string{
		{"pbi-1", "sql-1"},
		{"pbi-2", "sql-2"},
		{"pbi-3"},
	}
	for i, want := range wantDays {
		if len(buckets[i]) != len(want) {
			t.Fatalf("day %d: expected %v, got %v", i, want, buckets[i])
		}
		for j, id := range want {
			if buckets[i][j].ID != id {
				t.Errorf("day %d slot %d: expected %s, got %s", i, j, id, buckets[i][j].ID)
			}
		}
	}
}

func TestBuildMultiCoursePlanWeightedDistribution(t *testing.T) {
	queues := map[string][]models.Lesson{
		"pbi": {
			{ID: "pbi-1", CourseID: "pbi", DurationSeconds: 1200},
			{ID: "pbi-2", CourseID: "pbi", DurationSeconds: 1200},
		},
		"sql": {
			{ID: "sql-1", CourseID: "sql", DurationSeconds: 1200},
		},
	}
	order := []string{"pbi", "sql"}
	weights := map[string]int{"pbi": 75, "sql": 25}

	// 75% of 3600s ⇒ 2700s (3240s with tolerance): both pbi lessons fit day
	// one. sql's 900s sub-budget still admits its first lesson
	// unconditionally.
	buckets := BuildMultiCoursePlan(queues, order, 3600, weights)

	if len(buckets) != 1 {
		t.Fatalf("expected 1 day, got %d", len(buckets))
	}
	got := flatten(buckets)
	want := []string{"pbi-1", "pbi-2", "sql-1"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestFilterPending(t *testing.T) {
	lessons := []models.Lesson{
		lesson("pbi-1", 300),
		lesson("pbi-2", 300),
		lesson("pbi-3", 300),
	}
	completed := map[string]bool{"pbi-2": true}

	pending := FilterPending(lessons, completed)

	if len(pending) != 2 {
		t.Fatalf("expected 2 pending lessons, got %d", len(pending))
	}
	if pending[0].ID != "pbi-1" || pending[1].ID != "pbi-3" {
		t.Errorf("unexpected pending order: %s, %s", pending[0].ID, pending[1].ID)
	}
}
