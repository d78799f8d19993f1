package models

type GeneratePlanRequest struct {
	Settings StudySettings `json:"settings"`
}

type ToggleLessonRequest struct {
	LessonID string `json:"lessonId"`
}

// ToggleLessonResponse reports the post-toggle state so the UI can update
// optimistically held values.
type ToggleLessonResponse struct {
	LessonID         string `json:"lessonId"`
	Completed        bool   `json:"completed"`
	StudyStreak      int    `json:"studyStreak"`
	StreakIncreased  bool   `json:"streakIncreased"`
	LastStreakUpdate string `json:"lastStreakUpdate,omitempty"`
}

type UpdateNoteRequest struct {
	Text string `json:"text"`
}

type PlanStatusResponse struct {
	NeedsReplan bool   `json:"needsReplan"`
	Reason      string `json:"reason"`
}

type SummaryRequest struct {
	LessonID string `json:"lessonId"`
}

type QuizRequest struct {
	LessonID string `json:"lessonId"`
	Count    int    `json:"count,omitempty"`
}

type FlashcardsRequest struct {
	LessonID string `json:"lessonId"`
	Count    int    `json:"count,omitempty"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	AnswerIndex   int      `json:"answerIndex"`
	Justification string   `json:"justification,omitempty"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type LessonSummary struct {
	LessonID  string   `json:"lessonId"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints,omitempty"`
}
