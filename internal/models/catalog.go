package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Lesson is the atomic unit of course content. DurationSeconds of 0 means the
// duration table has no entry for it; the catalog repository substitutes the
// default when resolving durations.
type Lesson struct {
	ID              string `json:"lessonId" bson:"lessonId"`
	CourseID        string `json:"courseId" bson:"courseId"`
	Title           string `json:"title" bson:"title"`
	DurationSeconds int    `json:"durationSeconds" bson:"durationSeconds"`
	Order           int    `json:"order" bson:"order"`
}

// CourseModule is an ordered group of lessons within a course.
type CourseModule struct {
	ID      string   `json:"moduleId" bson:"moduleId"`
	Title   string   `json:"title" bson:"title"`
	Order   int      `json:"order" bson:"order"`
	Lessons []Lesson `json:"lessons" bson:"lessons"`
}

type Course struct {
	ID       bson.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	CourseID string         `json:"courseId" bson:"courseId"`
	Title    string         `json:"title" bson:"title"`
	Area     string         `json:"area,omitempty" bson:"area,omitempty"`
	Modules  []CourseModule `json:"modules" bson:"modules"`
}

// OrderedLessons flattens the course tree into the canonical study order
// (module order, then lesson order within each module).
func (c *Course) OrderedLessons() []Lesson {
	var lessons []Lesson
	for _, m := range c.Modules {
		lessons = append(lessons, m.Lessons...)
	}
	return lessons
}

// LessonDuration is one entry of the duration table, kept in its own
// collection because durations are produced by a separate ingestion pipeline.
type LessonDuration struct {
	LessonID string `json:"lessonId" bson:"lessonId"`
	Seconds  int    `json:"seconds" bson:"seconds"`
}
