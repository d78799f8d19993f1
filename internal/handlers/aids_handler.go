package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"study-plan-service/internal/middleware"
	"study-plan-service/internal/models"
	"study-plan-service/internal/service"

	"github.com/gofiber/fiber/v3"
)

type AidsHandler struct {
	aidsService *service.AidsService
}

func NewAidsHandler(aidsService *service.AidsService) *AidsHandler {
	return &AidsHandler{
		aidsService: aidsService,
	}
}

func (h *AidsHandler) RegisterRoutes(app *fiber.App) {
	aidsGroup := app.Group("/protected/study/aids")
	aidsGroup.Post("/summary", h.GenerateSummary, middleware.PermissionRequired(middleware.GenerateAidsPermission))
	aidsGroup.Post("/quiz", h.GenerateQuiz, middleware.PermissionRequired(middleware.GenerateAidsPermission))
	aidsGroup.Post("/flashcards", h.GenerateFlashcards, middleware.PermissionRequired(middleware.GenerateAidsPermission))
}

func (h *AidsHandler) GenerateSummary(c fiber.Ctx) error {
	var request models.SummaryRequest
	if err := c.Bind().Body(&request); err != nil || request.LessonID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Lesson ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	summary, err := h.aidsService.GenerateSummary(ctx, request.LessonID)
	if err != nil {
		return h.mapAidsError(c, request.LessonID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": summary,
	})
}

func (h *AidsHandler) GenerateQuiz(c fiber.Ctx) error {
	var request models.QuizRequest
	if err := c.Bind().Body(&request); err != nil || request.LessonID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Lesson ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	questions, err := h.aidsService.GenerateQuiz(ctx, request.LessonID, request.Count)
	if err != nil {
		return h.mapAidsError(c, request.LessonID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"questions": questions,
		},
	})
}

func (h *AidsHandler) GenerateFlashcards(c fiber.Ctx) error {
	var request models.FlashcardsRequest
	if err := c.Bind().Body(&request); err != nil || request.LessonID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Lesson ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cards, err := h.aidsService.GenerateFlashcards(ctx, request.LessonID, request.Count)
	if err != nil {
		return h.mapAidsError(c, request.LessonID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"flashcards": cards,
		},
	})
}

func (h *AidsHandler) mapAidsError(c fiber.Ctx, lessonID string, err error) error {
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lesson not found",
		})
	case errors.Is(err, service.ErrAidGeneration):
		log.Printf("Study aid generation failed for lesson %s: %v", lessonID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Study aid generation is temporarily unavailable",
		})
	default:
		log.Printf("Study aid request failed for lesson %s: %v", lessonID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate study aid",
		})
	}
}
