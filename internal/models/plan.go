package models

// DateLayout is the wire format for every calendar date in plans and
// progress state.
const DateLayout = "2006-01-02"

// StudyPlanDay is one scheduled study session. Dates within a plan are
// strictly increasing and always fall on a weekday allowed by the settings.
type StudyPlanDay struct {
	Date    string   `json:"date" bson:"date"`
	Lessons []Lesson `json:"lessons" bson:"lessons"`
}

// StudyPlan is produced wholesale by one planning run. Re-planning discards
// and replaces it; it is never patched in place.
type StudyPlan struct {
	Plan                   []StudyPlanDay `json:"plan" bson:"plan"`
	ExpectedCompletionDate string         `json:"expectedCompletionDate" bson:"expectedCompletionDate"`
}

// DayFor returns the plan day scheduled for the given date, or nil.
func (p *StudyPlan) DayFor(date string) *StudyPlanDay {
	for i := range p.Plan {
		if p.Plan[i].Date == date {
			return &p.Plan[i]
		}
	}
	return nil
}

// CoursePlan pairs the settings a plan was built from with the plan itself,
// keyed by course ID inside the study profile. Version is the optimistic
// concurrency stamp: plan writes carry the version they were computed from and
// fail when a concurrent write got there first.
type CoursePlan struct {
	Settings StudySettings `json:"settings" bson:"settings"`
	Plan     StudyPlan     `json:"plan" bson:"plan"`
	Version  int64         `json:"version" bson:"version"`
}
