package handlers

import (
	"context"
	"log"
	"time"

	"study-plan-service/internal/repository"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type CatalogHandler struct {
	catalogRepo *repository.CatalogRepository
}

func NewCatalogHandler(catalogRepo *repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{
		catalogRepo: catalogRepo,
	}
}

func (h *CatalogHandler) RegisterRoutes(app *fiber.App) {
	// PUBLIC ROUTES - the course catalog is browsable without login
	publicGroup := app.Group("/public/study/catalog")
	publicGroup.Get("/", h.ListCourses)
	publicGroup.Get("/:courseId", h.GetCourse)
}

func (h *CatalogHandler) ListCourses(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	courses, err := h.catalogRepo.FindAllCourses(ctx)
	if err != nil {
		log.Printf("Failed to list courses: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve course catalog",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"courses": courses,
		},
	})
}

func (h *CatalogHandler) GetCourse(c fiber.Ctx) error {
	courseID := c.Params("courseId")
	if courseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Course ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	course, err := h.catalogRepo.FindByCourseID(ctx, courseID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		log.Printf("Failed to get course %s: %v", courseID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve course",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"course": course,
		},
	})
}
