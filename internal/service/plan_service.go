package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"study-plan-service/internal/event"
	"study-plan-service/internal/models"
	"study-plan-service/internal/planner"
	"study-plan-service/internal/repository"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	ErrNoDailyBudget   = errors.New("daily study minutes must be positive")
	ErrNoCourses       = errors.New("no selectable courses for plan generation")
	ErrProfileNotFound = errors.New("study profile not found")
	ErrPlanNotFound    = errors.New("no plan exists for this course")
)

type PlanService struct {
	profileRepo *repository.ProfileRepository
	catalogRepo *repository.CatalogRepository
	publisher   event.Publisher
}

func NewPlanService(profileRepo *repository.ProfileRepository, catalogRepo *repository.CatalogRepository, publisher event.Publisher) *PlanService {
	return &PlanService{
		profileRepo: profileRepo,
		catalogRepo: catalogRepo,
		publisher:   publisher,
	}
}

// GeneratePlan builds a fresh study plan from the learner's settings and
// persists one CoursePlan per selected course. Existing plans for those
// courses are replaced wholesale.
func (s *PlanService) GeneratePlan(ctx context.Context, userID string, settings models.StudySettings) (map[string]models.CoursePlan, error) {
	if settings.DailySeconds() <= 0 {
		return nil, ErrNoDailyBudget
	}
	if len(settings.AllowedWeekdays()) == 0 {
		return nil, planner.ErrNoStudyDays
	}

	profile, err := s.profileRepo.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed := profile.CompletedSet()

	courses, err := s.selectCourses(ctx, settings)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, ErrNoCourses
	}

	startDate := resolveStartDate(settings.StartDate)
	today := planner.Normalize(time.Now())

	var master []planner.DayBucket
	courseOrder := make([]string, 0, len(courses))
	if len(courses) == 1 {
		pending := planner.FilterPending(s.courseLessons(ctx, courses[0]), completed)
		master = planner.BuildMasterPlan(pending, settings.DailySeconds())
		courseOrder = append(courseOrder, courses[0].CourseID)
	} else {
		// Multiple courses share each study day, each with its slice of the
		// daily budget.
		queues := make(map[string][]models.Lesson, len(courses))
		for _, course := range courses {
			queues[course.CourseID] = planner.FilterPending(s.courseLessons(ctx, course), completed)
			courseOrder = append(courseOrder, course.CourseID)
		}
		master = planner.BuildMultiCoursePlan(queues, courseOrder, settings.DailySeconds(), settings.CourseDistribution)
	}

	scheduled, err := planner.ApplySchedule(master, settings.AllowedWeekdays(), startDate, today)
	if err != nil {
		return nil, err
	}

	// Build every course's plan before touching the store, then persist them
	// in one document update: a failed write leaves no partial generation.
	generated := make(map[string]models.CoursePlan, len(courses))
	expectedVersions := make(map[string]int64, len(courses))
	for _, courseID := range courseOrder {
		generated[courseID] = models.CoursePlan{
			Settings: settings,
			Plan:     projectCoursePlan(scheduled, courseID, today),
		}
		expectedVersions[courseID] = profile.CoursePlans[courseID].Version
	}

	if err := s.profileRepo.SaveCoursePlans(ctx, userID, generated, expectedVersions); err != nil {
		return nil, err
	}

	for courseID, coursePlan := range generated {
		coursePlan.Version = expectedVersions[courseID] + 1
		generated[courseID] = coursePlan

		if pubErr := s.publisher.PublishStudyEvent(&models.StudyEvent{
			EventType: models.EventTypePlanGenerated,
			UserID:    userID,
			CourseID:  courseID,
		}); pubErr != nil {
			log.Printf("Warning: failed to publish plan.generated for %s: %v", courseID, pubErr)
		}
	}

	return generated, nil
}

// projectCoursePlan narrows a combined schedule to one course's lessons while
// keeping the shared dates. Days that carry nothing for the course are
// dropped.
func projectCoursePlan(scheduled models.StudyPlan, courseID string, today time.Time) models.StudyPlan {
	var plan models.StudyPlan
	for _, day := range scheduled.Plan {
		var mine []models.Lesson
		for _, lesson := range day.Lessons {
			if lesson.CourseID == courseID {
				mine = append(mine, lesson)
			}
		}
		if len(mine) > 0 {
			plan.Plan = append(plan.Plan, models.StudyPlanDay{Date: day.Date, Lessons: mine})
		}
	}
	if len(plan.Plan) > 0 {
		plan.ExpectedCompletionDate = plan.Plan[len(plan.Plan)-1].Date
	} else {
		plan.ExpectedCompletionDate = planner.FormatDate(today)
	}
	return plan
}

// Replan rebuilds one course plan from today, keeping the stored settings.
func (s *PlanService) Replan(ctx context.Context, userID, courseID string, reason planner.Reason) (*models.CoursePlan, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	current, ok := profile.CoursePlans[courseID]
	if !ok {
		return nil, ErrPlanNotFound
	}

	course, err := s.catalogRepo.FindByCourseID(ctx, courseID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("course %s no longer in catalog: %w", courseID, ErrPlanNotFound)
		}
		return nil, err
	}

	settings := current.Settings
	if settings.DailySeconds() <= 0 {
		return nil, ErrNoDailyBudget
	}

	today := planner.Normalize(time.Now())
	pending := planner.FilterPending(s.courseLessons(ctx, course), profile.CompletedSet())

	master := planner.BuildMasterPlan(pending, settings.DailySeconds())
	plan, err := planner.ApplySchedule(master, settings.AllowedWeekdays(), today, today)
	if err != nil {
		return nil, err
	}

	replanned := models.CoursePlan{Settings: settings, Plan: plan}
	if err := s.profileRepo.SaveCoursePlan(ctx, userID, courseID, replanned, current.Version); err != nil {
		return nil, err
	}
	replanned.Version = current.Version + 1

	if pubErr := s.publisher.PublishStudyEvent(&models.StudyEvent{
		EventType: models.EventTypePlanReplanned,
		UserID:    userID,
		CourseID:  courseID,
		Reason:    string(reason),
	}); pubErr != nil {
		log.Printf("Warning: failed to publish plan.replanned for %s: %v", courseID, pubErr)
	}

	return &replanned, nil
}

// CheckReplan reports whether the course plan has drifted from reality.
func (s *PlanService) CheckReplan(ctx context.Context, userID, courseID string) (bool, planner.Reason, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, planner.ReasonNone, ErrProfileNotFound
		}
		return false, planner.ReasonNone, err
	}

	current, ok := profile.CoursePlans[courseID]
	if !ok {
		return false, planner.ReasonNone, ErrPlanNotFound
	}

	needed, reason := planner.NeedsReplan(current.Plan, profile.CompletedSet(), time.Now())
	return needed, reason, nil
}

// GetPlans returns all stored course plans for the user.
func (s *PlanService) GetPlans(ctx context.Context, userID string) (map[string]models.CoursePlan, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile.CoursePlans, nil
}

func (s *PlanService) DeletePlan(ctx context.Context, userID, courseID string) error {
	return s.profileRepo.DeleteCoursePlan(ctx, userID, courseID)
}

// selectCourses resolves the settings' course selection against the catalog.
// Unknown IDs are logged and skipped; with no explicit selection, every
// catalog course matching the focus area is planned.
func (s *PlanService) selectCourses(ctx context.Context, settings models.StudySettings) ([]*models.Course, error) {
	if len(settings.SelectedCourses) == 0 {
		courses, err := s.catalogRepo.FindAllCourses(ctx)
		if err != nil {
			return nil, err
		}
		if settings.FocusArea == "" {
			return courses, nil
		}
		var filtered []*models.Course
		for _, c := range courses {
			if c.Area == settings.FocusArea {
				filtered = append(filtered, c)
			}
		}
		return filtered, nil
	}

	var courses []*models.Course
	for _, courseID := range settings.SelectedCourses {
		course, err := s.catalogRepo.FindByCourseID(ctx, courseID)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				log.Printf("Warning: selected course %s not found in catalog, skipping", courseID)
				continue
			}
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// courseLessons loads a course's lessons in study order with durations
// resolved and the owning course stamped on each lesson.
func (s *PlanService) courseLessons(ctx context.Context, course *models.Course) []models.Lesson {
	lessons := s.catalogRepo.ResolveDurations(ctx, course.OrderedLessons())
	for i := range lessons {
		if lessons[i].CourseID == "" {
			lessons[i].CourseID = course.CourseID
		}
	}
	return lessons
}

func resolveStartDate(raw string) time.Time {
	if raw != "" {
		if t, err := time.ParseInLocation(models.DateLayout, raw, time.Local); err == nil {
			return planner.Normalize(t)
		}
		log.Printf("Warning: invalid start date %q, using today", raw)
	}
	return planner.Normalize(time.Now())
}
