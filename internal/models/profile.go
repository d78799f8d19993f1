package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Metadata struct {
	CreatedAt int `json:"createdAt" bson:"createdAt"`
	UpdatedAt int `json:"updatedAt" bson:"updatedAt"`
}

// StudyProfile is the per-learner progress document. CompletedLessons only
// grows through explicit toggles (a toggle may also remove) and is cleared
// only by a full reset. StudyStreak increments at most once per calendar day.
type StudyProfile struct {
	ID               bson.ObjectID         `json:"id,omitempty" bson:"_id,omitempty"`
	UserID           string                `json:"userId" bson:"userId"`
	CompletedLessons []string              `json:"completedLessons" bson:"completedLessons"`
	StudyStreak      int                   `json:"studyStreak" bson:"studyStreak"`
	LastStreakUpdate string                `json:"lastStreakUpdate,omitempty" bson:"lastStreakUpdate,omitempty"`
	CoursePlans      map[string]CoursePlan `json:"coursePlans" bson:"coursePlans"`
	LessonNotes      map[string]string     `json:"lessonNotes" bson:"lessonNotes"`
	Metadata         Metadata              `json:"metadata" bson:"metadata"`
}

// CompletedSet materializes the completed-lesson list as a lookup set for the
// planner.
func (p *StudyProfile) CompletedSet() map[string]bool {
	set := make(map[string]bool, len(p.CompletedLessons))
	for _, id := range p.CompletedLessons {
		set[id] = true
	}
	return set
}

// IsCompleted reports whether the lesson has been marked complete.
func (p *StudyProfile) IsCompleted(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// LegacyCourseIDFromLessonID guesses the course a lesson belongs to from its
// ID prefix ("<courseId>-<n>"). Migration shim for plans persisted before
// lessons carried an explicit courseId; new data must never rely on it.
func LegacyCourseIDFromLessonID(lessonID string) string {
	if i := strings.LastIndex(lessonID, "-"); i > 0 {
		return lessonID[:i]
	}
	return ""
}
