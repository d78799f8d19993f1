package models

import "time"

type StudyMode string

const (
	ModeSuave         StudyMode = "suave"
	ModeRegular       StudyMode = "regular"
	ModeIntensivo     StudyMode = "intensivo"
	ModePersonalizado StudyMode = "personalizado"
)

// Weekday tags as stored in settings. Portuguese short names, matching the
// learner-facing planner UI.
const (
	DayDom = "dom"
	DaySeg = "seg"
	DayTer = "ter"
	DayQua = "qua"
	DayQui = "qui"
	DaySex = "sex"
	DaySab = "sab"
)

var weekdayTags = map[string]time.Weekday{
	DayDom: time.Sunday,
	DaySeg: time.Monday,
	DayTer: time.Tuesday,
	DayQua: time.Wednesday,
	DayQui: time.Thursday,
	DaySex: time.Friday,
	DaySab: time.Saturday,
}

// WeekdayFromTag resolves a settings weekday tag. The second return is false
// for unknown tags.
func WeekdayFromTag(tag string) (time.Weekday, bool) {
	d, ok := weekdayTags[tag]
	return d, ok
}

// ModeMinutes returns the daily minutes preset for a study mode.
// Personalizado keeps whatever the learner configured.
func ModeMinutes(mode StudyMode, custom int) int {
	switch mode {
	case ModeSuave:
		return 30
	case ModeRegular:
		return 60
	case ModeIntensivo:
		return 120
	default:
		return custom
	}
}

type StudySettings struct {
	Mode               StudyMode      `json:"mode" bson:"mode"`
	MinutesPerDay      int            `json:"minutesPerDay" bson:"minutesPerDay"`
	DaysOfWeek         []string       `json:"daysOfWeek" bson:"daysOfWeek"`
	FocusArea          string         `json:"focusArea,omitempty" bson:"focusArea,omitempty"`
	StartDate          string         `json:"startDate" bson:"startDate"`
	SelectedCourses    []string       `json:"selectedCourses,omitempty" bson:"selectedCourses,omitempty"`
	CourseDistribution map[string]int `json:"courseDistribution,omitempty" bson:"courseDistribution,omitempty"`
}

// AllowedWeekdays converts the stored tags to a lookup set, dropping unknown
// tags so one bad value does not poison the schedule walk.
func (s *StudySettings) AllowedWeekdays() map[time.Weekday]bool {
	allowed := make(map[time.Weekday]bool)
	for _, tag := range s.DaysOfWeek {
		if d, ok := WeekdayFromTag(tag); ok {
			allowed[d] = true
		}
	}
	return allowed
}

// DailySeconds is the packing budget derived from the mode preset.
func (s *StudySettings) DailySeconds() int {
	return ModeMinutes(s.Mode, s.MinutesPerDay) * 60
}
