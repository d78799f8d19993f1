package service

import (
	"context"
	"log"
	"time"

	"study-plan-service/internal/event"
	"study-plan-service/internal/models"
	"study-plan-service/internal/planner"
	"study-plan-service/internal/repository"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

type ProgressService struct {
	profileRepo *repository.ProfileRepository
	publisher   event.Publisher
}

func NewProgressService(profileRepo *repository.ProfileRepository, publisher event.Publisher) *ProgressService {
	return &ProgressService{
		profileRepo: profileRepo,
		publisher:   publisher,
	}
}

func (s *ProgressService) GetProfile(ctx context.Context, userID string) (*models.StudyProfile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// ToggleLesson flips a lesson's completion state. Completing the last pending
// lesson of any plan's today-bucket increments the streak, at most once per
// calendar day. Un-completing never decrements: the streak is a one-way
// ratchet that only the daily lapse sweep resets.
func (s *ProgressService) ToggleLesson(ctx context.Context, userID, lessonID string) (*models.ToggleLessonResponse, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	nowCompleted := !profile.IsCompleted(lessonID)

	var completed []string
	if nowCompleted {
		completed = append(profile.CompletedLessons, lessonID)
	} else {
		completed = make([]string, 0, len(profile.CompletedLessons))
		for _, id := range profile.CompletedLessons {
			if id != lessonID {
				completed = append(completed, id)
			}
		}
	}

	if err := s.profileRepo.UpdateCompletedLessons(ctx, userID, completed); err != nil {
		return nil, err
	}

	response := &models.ToggleLessonResponse{
		LessonID:         lessonID,
		Completed:        nowCompleted,
		StudyStreak:      profile.StudyStreak,
		LastStreakUpdate: profile.LastStreakUpdate,
	}

	if nowCompleted {
		now := time.Now()
		completedSet := make(map[string]bool, len(completed))
		for _, id := range completed {
			completedSet[id] = true
		}

		if planner.ShouldIncrementStreak(profile.CoursePlans, completedSet, profile.LastStreakUpdate, now) {
			newStreak := profile.StudyStreak + 1
			todayStr := planner.FormatDate(planner.Normalize(now))
			if err := s.profileRepo.UpdateStreak(ctx, userID, newStreak, todayStr); err != nil {
				return nil, err
			}
			response.StudyStreak = newStreak
			response.StreakIncreased = true
			response.LastStreakUpdate = todayStr

			if pubErr := s.publisher.PublishStudyEvent(&models.StudyEvent{
				EventType: models.EventTypeStreakIncremented,
				UserID:    userID,
				Data:      map[string]any{"streak": newStreak},
			}); pubErr != nil {
				log.Printf("Warning: failed to publish streak.incremented: %v", pubErr)
			}
		}
	}

	eventType := models.EventTypeLessonCompleted
	if !nowCompleted {
		eventType = models.EventTypeLessonUncompleted
	}
	if pubErr := s.publisher.PublishStudyEvent(&models.StudyEvent{
		EventType: eventType,
		UserID:    userID,
		CourseID:  courseForLesson(profile, lessonID),
		LessonID:  lessonID,
	}); pubErr != nil {
		log.Printf("Warning: failed to publish %s: %v", eventType, pubErr)
	}

	return response, nil
}

// courseForLesson resolves which course a lesson belongs to, for event
// enrichment. Stored plans are authoritative; a lesson no plan knows (plans
// already regenerated past it, or persisted before lessons carried a
// courseId) falls back to the legacy ID-prefix convention. Empty when neither
// source can tell.
func courseForLesson(profile *models.StudyProfile, lessonID string) string {
	for courseID, cp := range profile.CoursePlans {
		for _, day := range cp.Plan.Plan {
			for _, lesson := range day.Lessons {
				if lesson.ID == lessonID {
					if lesson.CourseID != "" {
						return lesson.CourseID
					}
					return courseID
				}
			}
		}
	}
	return models.LegacyCourseIDFromLessonID(lessonID)
}

// SetNote stores a lesson note; empty text removes it.
func (s *ProgressService) SetNote(ctx context.Context, userID, lessonID, text string) error {
	err := s.profileRepo.SetLessonNote(ctx, userID, lessonID, text)
	if err == mongo.ErrNoDocuments {
		return ErrProfileNotFound
	}
	return err
}

func (s *ProgressService) GetNotes(ctx context.Context, userID string) (map[string]string, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.LessonNotes == nil {
		return map[string]string{}, nil
	}
	return profile.LessonNotes, nil
}

// ResetProgress clears completion state and the streak. Plans survive; the
// next generation or replan rebuilds them from the full catalog.
func (s *ProgressService) ResetProgress(ctx context.Context, userID string) error {
	err := s.profileRepo.ResetProgress(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrProfileNotFound
		}
		return err
	}

	if pubErr := s.publisher.PublishStudyEvent(&models.StudyEvent{
		EventType: models.EventTypeStreakReset,
		UserID:    userID,
		Reason:    "progress reset",
	}); pubErr != nil {
		log.Printf("Warning: failed to publish streak.reset: %v", pubErr)
	}
	return nil
}
