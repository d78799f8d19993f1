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

type ProgressHandler struct {
	progressService *service.ProgressService
}

func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

func (h *ProgressHandler) RegisterRoutes(app *fiber.App) {
	progressGroup := app.Group("/protected/study/progress")
	progressGroup.Get("/", h.GetProgress, middleware.PermissionRequired(middleware.ReadProgressPermission))
	progressGroup.Post("/toggle", h.ToggleLesson, middleware.PermissionRequired(middleware.WriteProgressPermission))
	progressGroup.Post("/reset", h.ResetProgress, middleware.PermissionRequired(middleware.WriteProgressPermission))

	notesGroup := app.Group("/protected/study/notes")
	notesGroup.Get("/", h.GetNotes, middleware.PermissionRequired(middleware.ReadProgressPermission))
	notesGroup.Put("/:lessonId", h.SetNote, middleware.PermissionRequired(middleware.WriteProgressPermission))

	app.Get("/protected/study/streak", h.GetStreak, middleware.PermissionRequired(middleware.ReadProgressPermission))
}

func (h *ProgressHandler) GetProgress(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := h.progressService.GetProfile(ctx, userID)
	if err != nil {
		return h.mapProgressError(c, userID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"completedLessons": profile.CompletedLessons,
			"studyStreak":      profile.StudyStreak,
			"lastStreakUpdate": profile.LastStreakUpdate,
		},
	})
}

func (h *ProgressHandler) ToggleLesson(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	var request models.ToggleLessonRequest
	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if request.LessonID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Lesson ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.progressService.ToggleLesson(ctx, userID, request.LessonID)
	if err != nil {
		return h.mapProgressError(c, userID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": result,
	})
}

func (h *ProgressHandler) ResetProgress(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.progressService.ResetProgress(ctx, userID); err != nil {
		return h.mapProgressError(c, userID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Study progress reset",
	})
}

func (h *ProgressHandler) GetNotes(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	notes, err := h.progressService.GetNotes(ctx, userID)
	if err != nil {
		return h.mapProgressError(c, userID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"notes": notes,
		},
	})
}

func (h *ProgressHandler) SetNote(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	lessonID := c.Params("lessonId")
	if lessonID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Lesson ID is required",
		})
	}

	var request models.UpdateNoteRequest
	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.progressService.SetNote(ctx, userID, lessonID, request.Text); err != nil {
		return h.mapProgressError(c, userID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Note saved",
	})
}

func (h *ProgressHandler) GetStreak(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := h.progressService.GetProfile(ctx, userID)
	if err != nil {
		return h.mapProgressError(c, userID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"studyStreak":      profile.StudyStreak,
			"lastStreakUpdate": profile.LastStreakUpdate,
		},
	})
}

func (h *ProgressHandler) mapProgressError(c fiber.Ctx, userID string, err error) error {
	if errors.Is(err, service.ErrProfileNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Study profile not found",
		})
	}
	log.Printf("Progress operation failed for user %s: %v", userID, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to process study progress",
	})
}
