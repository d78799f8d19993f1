package repository

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"study-plan-service/internal/models"
	"study-plan-service/internal/planner"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const durationCacheTTL = 12 * time.Hour

type CatalogRepository struct {
	courses   *mongo.Collection
	durations *mongo.Collection
	cache     *redis.Client
}

func NewCatalogRepository(db *mongo.Database, cache *redis.Client) *CatalogRepository {
	return &CatalogRepository{
		courses:   db.Collection("Course"),
		durations: db.Collection("LessonDuration"),
		cache:     cache,
	}
}

func (r *CatalogRepository) FindAllCourses(ctx context.Context) ([]*models.Course, error) {
	opts := options.Find().SetSort(bson.M{"courseId": 1})
	cursor, err := r.courses.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer cursor.Close(ctx)

	var courses []*models.Course
	if err = cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("failed to decode courses: %w", err)
	}
	return courses, nil
}

func (r *CatalogRepository) FindByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	err := r.courses.FindOne(ctx, bson.M{"courseId": courseID}).Decode(&course)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// FindLesson locates a lesson by scanning its course tree. Callers that
// already hold the course should walk OrderedLessons themselves.
func (r *CatalogRepository) FindLesson(ctx context.Context, lessonID string) (*models.Lesson, *models.Course, error) {
	var course models.Course
	err := r.courses.FindOne(ctx, bson.M{"modules.lessons.lessonId": lessonID}).Decode(&course)
	if err != nil {
		return nil, nil, err
	}
	for _, lesson := range course.OrderedLessons() {
		if lesson.ID == lessonID {
			found := lesson
			return &found, &course, nil
		}
	}
	return nil, nil, mongo.ErrNoDocuments
}

// ResolveDurations fills DurationSeconds for every lesson, preferring the
// Redis cache, then the duration table, then the lesson's own value, and
// finally the default. Cache misses are written back with a TTL.
func (r *CatalogRepository) ResolveDurations(ctx context.Context, lessons []models.Lesson) []models.Lesson {
	resolved := make([]models.Lesson, len(lessons))
	for i, lesson := range lessons {
		lesson.DurationSeconds = r.lessonSeconds(ctx, lesson)
		resolved[i] = lesson
	}
	return resolved
}

func (r *CatalogRepository) lessonSeconds(ctx context.Context, lesson models.Lesson) int {
	cacheKey := durationCacheKey(lesson.ID)
	if cached, err := r.cache.Get(ctx, cacheKey).Result(); err == nil {
		if seconds, convErr := strconv.Atoi(cached); convErr == nil && seconds > 0 {
			return seconds
		}
	}

	var entry models.LessonDuration
	err := r.durations.FindOne(ctx, bson.M{"lessonId": lesson.ID}).Decode(&entry)
	if err == nil && entry.Seconds > 0 {
		r.cacheDuration(ctx, cacheKey, entry.Seconds)
		return entry.Seconds
	}
	if err != nil && err != mongo.ErrNoDocuments {
		log.Printf("Warning: duration lookup failed for lesson %s: %v", lesson.ID, err)
	}

	if lesson.DurationSeconds > 0 {
		r.cacheDuration(ctx, cacheKey, lesson.DurationSeconds)
		return lesson.DurationSeconds
	}
	return planner.DefaultLessonSeconds
}

// UpsertDuration stores a new duration and drops the cached value so the next
// resolution observes it.
func (r *CatalogRepository) UpsertDuration(ctx context.Context, lessonID string, seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("invalid duration %d for lesson %s", seconds, lessonID)
	}

	filter := bson.M{"lessonId": lessonID}
	update := bson.M{"$set": bson.M{"lessonId": lessonID, "seconds": seconds}}
	_, err := r.durations.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert lesson duration: %w", err)
	}

	if err := r.cache.Del(ctx, durationCacheKey(lessonID)).Err(); err != nil {
		log.Printf("Warning: failed to invalidate duration cache for %s: %v", lessonID, err)
	}
	return nil
}

func (r *CatalogRepository) cacheDuration(ctx context.Context, key string, seconds int) {
	if err := r.cache.Set(ctx, key, strconv.Itoa(seconds), durationCacheTTL).Err(); err != nil {
		log.Printf("Warning: failed to cache lesson duration: %v", err)
	}
}

func durationCacheKey(lessonID string) string {
	return "study:duration:" + lessonID
}

func (r *CatalogRepository) CreateIndexes(ctx context.Context) error {
	courseIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "courseId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "modules.lessons.lessonId", Value: 1}},
		},
	}
	if _, err := r.courses.Indexes().CreateMany(ctx, courseIndexes); err != nil {
		return fmt.Errorf("failed to create course indexes: %w", err)
	}

	durationIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "lessonId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := r.durations.Indexes().CreateMany(ctx, durationIndexes); err != nil {
		return fmt.Errorf("failed to create duration indexes: %w", err)
	}
	return nil
}
