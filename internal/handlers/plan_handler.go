package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"study-plan-service/internal/middleware"
	"study-plan-service/internal/models"
	"study-plan-service/internal/planner"
	"study-plan-service/internal/repository"
	"study-plan-service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type PlanHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

func (h *PlanHandler) RegisterRoutes(app *fiber.App) {
	// Health check - always public
	app.Get("/health", h.HealthCheck)

	// PROTECTED ROUTES - gateway injects X-User-ID after authentication
	protectedGroup := app.Group("/protected/study/plan")

	protectedGroup.Get("/", h.GetPlans, middleware.PermissionRequired(middleware.ReadStudyPlanPermission))
	protectedGroup.Post("/generate", h.GeneratePlan, middleware.PermissionRequired(middleware.WriteStudyPlanPermission))
	protectedGroup.Post("/:courseId/replan", h.Replan, middleware.PermissionRequired(middleware.WriteStudyPlanPermission))
	protectedGroup.Get("/:courseId/status", h.PlanStatus, middleware.PermissionRequired(middleware.ReadStudyPlanPermission))
	protectedGroup.Delete("/:courseId", h.DeletePlan, middleware.PermissionRequired(middleware.DeleteStudyPlanPermission))
}

func (h *PlanHandler) HealthCheck(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "healthy",
		"service": "study-plan-service",
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (h *PlanHandler) GetPlans(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	plans, err := h.planService.GetPlans(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Study profile not found",
			})
		}
		log.Printf("Failed to get plans for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve study plans",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"coursePlans": plans,
		},
	})
}

func (h *PlanHandler) GeneratePlan(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	var request models.GeneratePlanRequest
	if err := c.Bind().Body(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	plans, err := h.planService.GeneratePlan(ctx, userID, request.Settings)
	if err != nil {
		return h.mapPlanError(c, userID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"coursePlans": plans,
		},
	})
}

func (h *PlanHandler) Replan(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	courseID := c.Params("courseId")
	if courseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Course ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	reason := planner.Reason(c.Query("reason", string(planner.ReasonNone)))
	plan, err := h.planService.Replan(ctx, userID, courseID, reason)
	if err != nil {
		return h.mapPlanError(c, userID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"coursePlan": plan,
		},
	})
}

func (h *PlanHandler) PlanStatus(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	courseID := c.Params("courseId")
	if courseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Course ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	needed, reason, err := h.planService.CheckReplan(ctx, userID, courseID)
	if err != nil {
		return h.mapPlanError(c, userID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": models.PlanStatusResponse{
			NeedsReplan: needed,
			Reason:      string(reason),
		},
	})
}

func (h *PlanHandler) DeletePlan(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	courseID := c.Params("courseId")
	if courseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Course ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.planService.DeletePlan(ctx, userID, courseID); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Study profile not found",
			})
		}
		log.Printf("Failed to delete plan %s for user %s: %v", courseID, userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete study plan",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Study plan deleted",
	})
}

func (h *PlanHandler) mapPlanError(c fiber.Ctx, userID string, err error) error {
	switch {
	case errors.Is(err, service.ErrProfileNotFound), errors.Is(err, service.ErrPlanNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, planner.ErrNoStudyDays),
		errors.Is(err, service.ErrNoDailyBudget),
		errors.Is(err, service.ErrNoCourses):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, repository.ErrPlanConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Plan was modified concurrently, reload and retry",
		})
	default:
		log.Printf("Plan operation failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process study plan",
		})
	}
}
