package models

type EventType string

const (
	EventTypePlanGenerated     EventType = "plan.generated"
	EventTypePlanReplanned     EventType = "plan.replanned"
	EventTypeLessonCompleted   EventType = "lesson.completed"
	EventTypeLessonUncompleted EventType = "lesson.uncompleted"
	EventTypeStreakIncremented EventType = "streak.incremented"
	EventTypeStreakReset       EventType = "streak.reset"
)

// StudyEvent is the payload published to the study.events topic exchange.
// EventType doubles as the routing key.
type StudyEvent struct {
	EventType EventType      `json:"eventType"`
	UserID    string         `json:"userId"`
	CourseID  string         `json:"courseId,omitempty"`
	LessonID  string         `json:"lessonId,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Timestamp int            `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// UserRegisteredEvent comes from the auth side on the user-events exchange;
// we bootstrap an empty study profile from it.
type UserRegisteredEvent struct {
	UserID   string `json:"userId"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// LessonDurationUpdatedEvent comes from the catalog ingestion pipeline when a
// lesson's measured duration changes.
type LessonDurationUpdatedEvent struct {
	LessonID string `json:"lessonId"`
	Seconds  int    `json:"seconds"`
}
