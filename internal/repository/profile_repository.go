package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"study-plan-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrPlanConflict is returned when a course-plan write lost the optimistic
// concurrency race: another writer persisted a newer version first.
var ErrPlanConflict = errors.New("course plan version conflict")

type ProfileRepository struct {
	collection *mongo.Collection
	mu         *sync.Mutex
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{
		collection: db.Collection("StudyProfile"),
		mu:         &sync.Mutex{},
	}
}

func (r *ProfileRepository) New(ctx context.Context, profile *models.StudyProfile) (*models.StudyProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if profile.ID.IsZero() {
		profile.ID = bson.NewObjectID()
	}
	if profile.CompletedLessons == nil {
		profile.CompletedLessons = []string{}
	}
	if profile.CoursePlans == nil {
		profile.CoursePlans = map[string]models.CoursePlan{}
	}
	if profile.LessonNotes == nil {
		profile.LessonNotes = map[string]string{}
	}

	currentTime := int(time.Now().Unix())
	if profile.Metadata.CreatedAt == 0 {
		profile.Metadata.CreatedAt = currentTime
	}
	profile.Metadata.UpdatedAt = currentTime

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to insert study profile: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.StudyProfile, error) {
	var profile models.StudyProfile
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// EnsureProfile returns the profile for the user, creating an empty one when
// none exists yet (first contact, e.g. via the user.registered event).
func (r *ProfileRepository) EnsureProfile(ctx context.Context, userID string) (*models.StudyProfile, error) {
	profile, err := r.FindByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to look up study profile: %w", err)
	}

	return r.New(ctx, &models.StudyProfile{UserID: userID})
}

func (r *ProfileRepository) UpdateCompletedLessons(ctx context.Context, userID string, completed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if completed == nil {
		completed = []string{}
	}
	update := bson.M{
		"$set": bson.M{
			"completedLessons":   completed,
			"metadata.updatedAt": int(time.Now().Unix()),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to update completed lessons: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ProfileRepository) UpdateStreak(ctx context.Context, userID string, streak int, lastUpdate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	update := bson.M{
		"$set": bson.M{
			"studyStreak":        streak,
			"lastStreakUpdate":   lastUpdate,
			"metadata.updatedAt": int(time.Now().Unix()),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SaveCoursePlan persists a full CoursePlan under the given course key. The
// write only succeeds when the stored plan still carries expectedVersion (or
// no plan exists yet and expectedVersion is 0); otherwise ErrPlanConflict is
// returned and the caller must reload before retrying.
func (r *ProfileRepository) SaveCoursePlan(ctx context.Context, userID, courseID string, plan models.CoursePlan, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	planKey := "coursePlans." + courseID
	plan.Version = expectedVersion + 1

	filter := bson.M{
		"userId": userID,
		"$or": []bson.M{
			{planKey + ".version": expectedVersion},
			{planKey: bson.M{"$exists": false}},
		},
	}
	update := bson.M{
		"$set": bson.M{
			planKey:              plan,
			"metadata.updatedAt": int(time.Now().Unix()),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save course plan: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrPlanConflict
	}
	return nil
}

// SaveCoursePlans persists several course plans in one document update, so a
// multi-course generation is all-or-nothing. Every plan's write is guarded by
// the version it was computed from; one stale version fails the whole update
// with ErrPlanConflict and nothing is written.
func (r *ProfileRepository) SaveCoursePlans(ctx context.Context, userID string, plans map[string]models.CoursePlan, expectedVersions map[string]int64) error {
	if len(plans) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	filter := coursePlansWriteFilter(userID, expectedVersions)
	update := coursePlansWriteUpdate(plans, expectedVersions, time.Now())

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save course plans: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrPlanConflict
	}
	return nil
}

func coursePlansWriteFilter(userID string, expectedVersions map[string]int64) bson.M {
	conditions := []bson.M{{"userId": userID}}
	for courseID, version := range expectedVersions {
		planKey := "coursePlans." + courseID
		conditions = append(conditions, bson.M{"$or": []bson.M{
			{planKey + ".version": version},
			{planKey: bson.M{"$exists": false}},
		}})
	}
	return bson.M{"$and": conditions}
}

func coursePlansWriteUpdate(plans map[string]models.CoursePlan, expectedVersions map[string]int64, now time.Time) bson.M {
	set := bson.M{"metadata.updatedAt": int(now.Unix())}
	for courseID, plan := range plans {
		plan.Version = expectedVersions[courseID] + 1
		set["coursePlans."+courseID] = plan
	}
	return bson.M{"$set": set}
}

func (r *ProfileRepository) DeleteCoursePlan(ctx context.Context, userID, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	update := bson.M{
		"$unset": bson.M{"coursePlans." + courseID: ""},
		"$set":   bson.M{"metadata.updatedAt": int(time.Now().Unix())},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to delete course plan: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetLessonNote stores or clears a lesson note. Empty text removes the entry.
func (r *ProfileRepository) SetLessonNote(ctx context.Context, userID, lessonID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	noteKey := "lessonNotes." + lessonID
	var update bson.M
	if text == "" {
		update = bson.M{
			"$unset": bson.M{noteKey: ""},
			"$set":   bson.M{"metadata.updatedAt": int(time.Now().Unix())},
		}
	} else {
		update = bson.M{
			"$set": bson.M{
				noteKey:              text,
				"metadata.updatedAt": int(time.Now().Unix()),
			},
		}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to set lesson note: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ResetProgress clears completion and streak state. Course plans are kept;
// the next planning run rebuilds them from the full catalog.
func (r *ProfileRepository) ResetProgress(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	update := bson.M{
		"$set": bson.M{
			"completedLessons":   []string{},
			"studyStreak":        0,
			"lastStreakUpdate":   "",
			"metadata.updatedAt": int(time.Now().Unix()),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// FindPage returns one page of profiles for the daily maintenance sweep.
func (r *ProfileRepository) FindPage(ctx context.Context, page, limit int) ([]*models.StudyProfile, error) {
	opts := options.Find()
	opts.SetSort(bson.M{"metadata.createdAt": 1})
	opts.SetSkip(int64((page - 1) * limit))
	opts.SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to page study profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*models.StudyProfile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode study profiles: %w", err)
	}
	return profiles, nil
}

func (r *ProfileRepository) CountProfiles(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count study profiles: %w", err)
	}
	return count, nil
}

func (r *ProfileRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "metadata.updatedAt", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
