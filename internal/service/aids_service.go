package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"study-plan-service/internal/llm"
	"study-plan-service/internal/models"
	"study-plan-service/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrAidGeneration wraps upstream LLM failures so handlers can map them to a
// bad-gateway response instead of a server error.
var ErrAidGeneration = errors.New("study aid generation failed")

var ErrLessonNotFound = errors.New("lesson not found in catalog")

const (
	aidsCacheTTL     = 24 * time.Hour
	defaultQuizCount = 5
	defaultCardCount = 10
	maxAidItemCount  = 20
)

type AidsService struct {
	catalogRepo *repository.CatalogRepository
	llmClient   *llm.Client
	cache       *redis.Client
}

func NewAidsService(catalogRepo *repository.CatalogRepository, llmClient *llm.Client, cache *redis.Client) *AidsService {
	return &AidsService{
		catalogRepo: catalogRepo,
		llmClient:   llmClient,
		cache:       cache,
	}
}

// GenerateSummary produces (or returns the cached) summary for a lesson.
// Generation failures never touch plan or progress state.
func (s *AidsService) GenerateSummary(ctx context.Context, lessonID string) (*models.LessonSummary, error) {
	cacheKey := aidsCacheKey("summary", lessonID, 0)
	var cached models.LessonSummary
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	lesson, course, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	systemPrompt := "Você é um tutor que escreve resumos de aulas. Responda somente com JSON no formato " +
		`{"summary": "...", "keyPoints": ["...", "..."]}. Sem texto fora do JSON.`
	userPrompt := fmt.Sprintf("Resuma a aula %q do curso %q em um parágrafo, com 3 a 5 pontos-chave.",
		lesson.Title, course.Title)

	raw, err := s.completeJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var summary models.LessonSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil || summary.Summary == "" {
		return nil, fmt.Errorf("%w: malformed summary payload", ErrAidGeneration)
	}
	summary.LessonID = lessonID

	s.cacheSet(ctx, cacheKey, summary)
	return &summary, nil
}

// GenerateQuiz produces multiple-choice questions for a lesson. Every
// question must carry exactly four options and a valid answer index.
func (s *AidsService) GenerateQuiz(ctx context.Context, lessonID string, count int) ([]models.QuizQuestion, error) {
	count = clampCount(count, defaultQuizCount)

	cacheKey := aidsCacheKey("quiz", lessonID, count)
	var cached []models.QuizQuestion
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	lesson, course, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	systemPrompt := "Você é um tutor que cria questões de múltipla escolha. Responda somente com um array JSON de objetos " +
		`{"question": "...", "options": ["a", "b", "c", "d"], "answerIndex": 0, "justification": "..."}. ` +
		"Cada questão tem exatamente 4 alternativas. Sem texto fora do JSON."
	userPrompt := fmt.Sprintf("Crie %d questões sobre a aula %q do curso %q.", count, lesson.Title, course.Title)

	raw, err := s.completeJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err != nil || len(questions) == 0 {
		return nil, fmt.Errorf("%w: malformed quiz payload", ErrAidGeneration)
	}
	for _, q := range questions {
		if q.Question == "" || len(q.Options) != 4 || q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
			return nil, fmt.Errorf("%w: quiz question failed shape validation", ErrAidGeneration)
		}
	}

	s.cacheSet(ctx, cacheKey, questions)
	return questions, nil
}

// GenerateFlashcards produces front/back study cards for a lesson.
func (s *AidsService) GenerateFlashcards(ctx context.Context, lessonID string, count int) ([]models.Flashcard, error) {
	count = clampCount(count, defaultCardCount)

	cacheKey := aidsCacheKey("flashcards", lessonID, count)
	var cached []models.Flashcard
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	lesson, course, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	systemPrompt := "Você é um tutor que cria flashcards de estudo. Responda somente com um array JSON de objetos " +
		`{"front": "...", "back": "..."}. Sem texto fora do JSON.`
	userPrompt := fmt.Sprintf("Crie %d flashcards sobre a aula %q do curso %q.", count, lesson.Title, course.Title)

	raw, err := s.completeJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var cards []models.Flashcard
	if err := json.Unmarshal([]byte(raw), &cards); err != nil || len(cards) == 0 {
		return nil, fmt.Errorf("%w: malformed flashcards payload", ErrAidGeneration)
	}
	for _, card := range cards {
		if card.Front == "" || card.Back == "" {
			return nil, fmt.Errorf("%w: flashcard failed shape validation", ErrAidGeneration)
		}
	}

	s.cacheSet(ctx, cacheKey, cards)
	return cards, nil
}

func (s *AidsService) findLesson(ctx context.Context, lessonID string) (*models.Lesson, *models.Course, error) {
	lesson, course, err := s.catalogRepo.FindLesson(ctx, lessonID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, ErrLessonNotFound
		}
		return nil, nil, err
	}
	return lesson, course, nil
}

func (s *AidsService) completeJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	content, err := s.llmClient.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAidGeneration, err)
	}
	raw, err := llm.ExtractJSON(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAidGeneration, err)
	}
	return raw, nil
}

func (s *AidsService) cacheGet(ctx context.Context, key string, dest any) bool {
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("Warning: dropping corrupt aids cache entry %s: %v", key, err)
		s.cache.Del(ctx, key)
		return false
	}
	return true
}

func (s *AidsService) cacheSet(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, aidsCacheTTL).Err(); err != nil {
		log.Printf("Warning: failed to cache study aid %s: %v", key, err)
	}
}

func aidsCacheKey(kind, lessonID string, count int) string {
	if count > 0 {
		return fmt.Sprintf("study:aids:%s:%s:%d", kind, lessonID, count)
	}
	return fmt.Sprintf("study:aids:%s:%s", kind, lessonID)
}

func clampCount(count, fallback int) int {
	if count <= 0 {
		return fallback
	}
	if count > maxAidItemCount {
		return maxAidItemCount
	}
	return count
}
