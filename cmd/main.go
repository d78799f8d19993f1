package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"study-plan-service/internal/config"
	"study-plan-service/internal/database/mongo"
	redisdb "study-plan-service/internal/database/redis"
	"study-plan-service/internal/event"
	"study-plan-service/internal/handlers"
	"study-plan-service/internal/llm"
	"study-plan-service/internal/middleware"
	"study-plan-service/internal/repository"
	"study-plan-service/internal/scheduler"
	"study-plan-service/internal/service"
	"study-plan-service/pkg/discovery"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/evolvia", "log", "study_plan_service")
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.ServiceConfig

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"*"},
	}))

	// Resolve the caller from the gateway header, or from a bearer token when
	// running without the gateway.
	app.Use("/protected", middleware.GatewayOrJWT())

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(mongo.Mongo_Database)
	catalogRepo := repository.NewCatalogRepository(mongo.Mongo_Database, redisdb.Redis_Client)

	// Create database indexes
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := profileRepo.CreateIndexes(ctx); err != nil {
		log.Printf("Warning: Failed to create profile indexes: %v", err)
	}
	if err := catalogRepo.CreateIndexes(ctx); err != nil {
		log.Printf("Warning: Failed to create catalog indexes: %v", err)
	}
	cancel()

	eventPublisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Printf("Warning: Failed to initialize event publisher: %v", err)
	}

	eventConsumer, err := event.NewEventConsumer(cfg.RabbitMQ.URI, profileRepo, catalogRepo)
	if err != nil {
		log.Printf("Warning: Failed to initialize event consumer: %v", err)
	} else {
		if err := eventConsumer.Start(); err != nil {
			log.Printf("Warning: Failed to start event consumer: %v", err)
			eventConsumer.Close()
		} else {
			log.Println("Successfully started event consumer")
			defer eventConsumer.Close()
		}
	}

	// Initialize services
	llmClient := llm.NewClient(cfg.LLM)
	planService := service.NewPlanService(profileRepo, catalogRepo, eventPublisher)
	progressService := service.NewProgressService(profileRepo, eventPublisher)
	aidsService := service.NewAidsService(catalogRepo, llmClient, redisdb.Redis_Client)

	// Initialize and register handlers
	handlers.NewPlanHandler(planService).RegisterRoutes(app)
	handlers.NewProgressHandler(progressService).RegisterRoutes(app)
	handlers.NewCatalogHandler(catalogRepo).RegisterRoutes(app)
	handlers.NewAidsHandler(aidsService).RegisterRoutes(app)

	// Start the daily maintenance sweep
	maintenance := scheduler.NewDailyMaintenance(profileRepo, planService, eventPublisher,
		cfg.Planner.MaintenanceHour, cfg.Planner.SweepPageSize)
	maintenance.Start()

	shutdownChan := make(chan os.Signal, 1)
	doneChan := make(chan bool, 1)

	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := app.Listen(fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
		doneChan <- true
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	// Stop the maintenance sweep
	maintenance.Close()

	// Close event publisher
	if eventPublisher != nil {
		if err := eventPublisher.Close(); err != nil {
			log.Printf("Error closing event publisher: %v", err)
		}
	}

	// Disconnect from MongoDB and Redis
	mongo.DisconnectMongo()
	redisdb.Close()

	// Deregister from service discovery
	if discovery.ServiceDiscovery != nil {
		if err := discovery.ServiceDiscovery.Deregister(); err != nil {
			log.Printf("Error deregistering from service discovery: %v", err)
		}
	}

	<-doneChan
	log.Println("Server shutdown complete")
}
