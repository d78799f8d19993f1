package service

import (
	"testing"

	"study-plan-service/internal/models"
)

func TestCourseForLesson(t *testing.T) {
	profile := &models.StudyProfile{
		UserID: "user-1",
		CoursePlans: map[string]models.CoursePlan{
			"powerbi": {
				Plan: models.StudyPlan{
					Plan: []models.StudyPlanDay{
						{
							Date: "2024-01-01",
							Lessons: []models.Lesson{
								{ID: "powerbi-1", CourseID: "powerbi"},
								{ID: "old-lesson-2"}, // persisted before courseId
							},
						},
					},
				},
			},
		},
	}

	tests := []struct {
		name     string
		lessonID string
		want     string
	}{
		{"stamped lesson in a plan", "powerbi-1", "powerbi"},
		{"plan lesson without courseId uses the plan key", "old-lesson-2", "powerbi"},
		{"unknown lesson falls back to the id prefix", "sql-avancado-7", "sql-avancado"},
		{"unknown lesson with no prefix", "orphan", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := courseForLesson(profile, tt.lessonID); got != tt.want {
				t.Errorf("courseForLesson(%q) = %q, want %q", tt.lessonID, got, tt.want)
			}
		})
	}
}
