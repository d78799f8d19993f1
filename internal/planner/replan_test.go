package planner

import (
	"testing"
	"time"

	"study-plan-service/internal/models"
)

func planDay(dateStr string, ids ...string) models.StudyPlanDay {
	day := models.StudyPlanDay{Date: dateStr}
	for _, id := range ids {
		day.Lessons = append(day.Lessons, models.Lesson{ID: id, DurationSeconds: 600})
	}
	return day
}

func TestNeedsReplan(t *testing.T) {
	today := date(2024, time.January, 10)

	testCases := []struct {
		name       string
		plan       models.StudyPlan
		completed  map[string]bool
		wantReplan bool
		wantReason Reason
	}{
		{
			name: "overdue lesson means behind",
			plan: models.StudyPlan{Plan: []models.StudyPlanDay{
				planDay("2024-01-09", "pbi-1", "pbi-2"),
				planDay("2024-01-10", "pbi-3"),
			}},
			completed:  map[string]bool{"pbi-1": true},
			wantReplan: true,
			wantReason: ReasonBehind,
		},
		{
			name: "70 percent of today complete means ahead",
			plan: models.StudyPlan{Plan: []models.StudyPlanDay{
				planDay("2024-01-09", "pbi-1"),
				planDay("2024-01-10", "pbi-2", "pbi-3", "pbi-4", "pbi-5", "pbi-6", "pbi-7", "pbi-8", "pbi-9", "pbi-10", "pbi-11"),
			}},
			completed: map[string]bool{
				"pbi-1": true,
				"pbi-2": true, "pbi-3": true, "pbi-4": true, "pbi-5": true,
				"pbi-6": true, "pbi-7": true, "pbi-8": true,
			},
			wantReplan: true,
			wantReason: ReasonAhead,
		},
		{
			name: "half of today complete is not ahead",
			plan: models.StudyPlan{Plan: []models.StudyPlanDay{
				planDay("2024-01-10", "pbi-1", "pbi-2"),
			}},
			completed:  map[string]bool{"pbi-1": true},
			wantReplan: false,
			wantReason: ReasonNone,
		},
		{
			name: "behind wins over ahead",
			plan: models.StudyPlan{Plan: []models.StudyPlanDay{
				planDay("2024-01-08", "pbi-0"),
				planDay("2024-01-10", "pbi-1", "pbi-2", "pbi-3"),
			}},
			completed: map[string]bool{
				"pbi-1": true, "pbi-2": true, "pbi-3": true,
			},
			wantReplan: true,
			wantReason: ReasonBehind,
		},
		{
			name: "exactly at threshold is not ahead",
			plan: models.StudyPlan{Plan: []models.StudyPlanDay{
				planDay("2024-01-10", "pbi-1", "pbi-2", "pbi-3", "pbi-4", "pbi-5"),
			}},
			completed: map[string]bool{
				"pbi-1": true, "pbi-2": true, "pbi-3": true,
			},
			wantReplan: false,
			wantReason: ReasonNone,
		},
		{
			name:       "empty plan never replans",
			plan:       models.StudyPlan{},
			completed:  map[string]bool{},
			wantReplan: false,
			wantReason: ReasonNone,
		},
		{
			name: "all past lessons done and today untouched",
			plan: models.StudyPlan{Plan: []models.StudyPlanDay{
				planDay("2024-01-08", "pbi-1"),
				planDay("2024-01-10", "pbi-2", "pbi-3"),
			}},
			completed:  map[string]bool{"pbi-1": true},
			wantReplan: false,
			wantReason: ReasonNone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := NeedsReplan(tc.plan, tc.completed, today)
			if got != tc.wantReplan {
				t.Errorf("expected needsReplan=%v, got %v", tc.wantReplan, got)
			}
			if reason != tc.wantReason {
				t.Errorf("expected reason %q, got %q", tc.wantReason, reason)
			}
		})
	}
}
