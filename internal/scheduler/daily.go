package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"study-plan-service/internal/event"
	"study-plan-service/internal/models"
	"study-plan-service/internal/planner"
	"study-plan-service/internal/repository"
	"study-plan-service/internal/service"
)

// DailyMaintenance runs the once-a-day sweep over all study profiles: streaks
// that lapsed (a full allowed study day missed) are reset, and plans that
// drifted from reality are rebuilt.
type DailyMaintenance struct {
	profileRepo *repository.ProfileRepository
	planService *service.PlanService
	publisher   event.Publisher
	runHour     int
	pageSize    int
	shutdown    chan struct{}
	wg          sync.WaitGroup
}

func NewDailyMaintenance(
	profileRepo *repository.ProfileRepository,
	planService *service.PlanService,
	publisher event.Publisher,
	runHour, pageSize int,
) *DailyMaintenance {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &DailyMaintenance{
		profileRepo: profileRepo,
		planService: planService,
		publisher:   publisher,
		runHour:     runHour,
		pageSize:    pageSize,
		shutdown:    make(chan struct{}),
	}
}

func (m *DailyMaintenance) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.loop()
	}()
	log.Printf("Daily maintenance scheduled for %02d:00 local time", m.runHour)
}

func (m *DailyMaintenance) Close() {
	close(m.shutdown)
	m.wg.Wait()
}

func (m *DailyMaintenance) loop() {
	for {
		wait := time.Until(m.nextRun(time.Now()))
		select {
		case <-m.shutdown:
			log.Println("Stopping daily maintenance")
			return
		case <-time.After(wait):
			m.RunSweep(context.Background())
		}
	}
}

// nextRun returns the next wall-clock occurrence of the configured hour.
func (m *DailyMaintenance) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), m.runHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunSweep walks every profile once. Exported so an operator can trigger the
// sweep outside the schedule.
func (m *DailyMaintenance) RunSweep(ctx context.Context) {
	started := time.Now()
	log.Println("Daily maintenance sweep starting")

	var swept, streakResets, replans int
	for page := 1; ; page++ {
		profiles, err := m.profileRepo.FindPage(ctx, page, m.pageSize)
		if err != nil {
			log.Printf("Daily maintenance aborted on page %d: %v", page, err)
			return
		}
		if len(profiles) == 0 {
			break
		}

		for _, profile := range profiles {
			select {
			case <-m.shutdown:
				log.Println("Daily maintenance interrupted by shutdown")
				return
			default:
			}

			swept++
			if m.sweepStreak(ctx, profile) {
				streakResets++
			}
			replans += m.sweepPlans(ctx, profile)
		}

		if len(profiles) < m.pageSize {
			break
		}
	}

	log.Printf("Daily maintenance done: %d profiles, %d streak resets, %d replans in %s",
		swept, streakResets, replans, time.Since(started).Round(time.Millisecond))
}

func (m *DailyMaintenance) sweepStreak(ctx context.Context, profile *models.StudyProfile) bool {
	if profile.StudyStreak == 0 {
		return false
	}
	if !planner.StreakLapsed(profile.LastStreakUpdate, time.Now()) {
		return false
	}

	if err := m.profileRepo.UpdateStreak(ctx, profile.UserID, 0, profile.LastStreakUpdate); err != nil {
		log.Printf("Failed to reset streak for user %s: %v", profile.UserID, err)
		return false
	}

	if pubErr := m.publisher.PublishStudyEvent(&models.StudyEvent{
		EventType: models.EventTypeStreakReset,
		UserID:    profile.UserID,
		Reason:    "streak lapsed",
	}); pubErr != nil {
		log.Printf("Warning: failed to publish streak.reset: %v", pubErr)
	}
	return true
}

func (m *DailyMaintenance) sweepPlans(ctx context.Context, profile *models.StudyProfile) int {
	completed := profile.CompletedSet()
	now := time.Now()

	replanned := 0
	for courseID, plan := range profile.CoursePlans {
		needed, reason := planner.NeedsReplan(plan.Plan, completed, now)
		if !needed {
			continue
		}

		_, err := m.planService.Replan(ctx, profile.UserID, courseID, reason)
		if err != nil {
			// A conflict means someone else already rebuilt this plan.
			if errors.Is(err, repository.ErrPlanConflict) {
				continue
			}
			log.Printf("Failed to replan course %s for user %s: %v", courseID, profile.UserID, err)
			continue
		}
		replanned++
	}
	return replanned
}
