package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/courseflow/courseflow-api/internal/config"
	"github.com/courseflow/courseflow-api/internal/database"
	"github.com/courseflow/courseflow-api/internal/handler"
	"github.com/courseflow/courseflow-api/internal/middleware"
	"github.com/courseflow/courseflow-api/internal/models"
	"github.com/courseflow/courseflow-api/internal/repository"
	"github.com/courseflow/courseflow-api/internal/router"
	"github.com/courseflow/courseflow-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.ContentNode{}, &models.Activity{}, &models.ActivityMeta{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	contentRepo := repository.NewContentRepository(db)
	activityStore := repository.NewActivityStore(db)
	sessionStore := repository.NewSessionStore(redisClient, cfg.SessionTTL)
	itemRepo := repository.NewProgressItemRepository()
	aggregateRepo := repository.NewProgressAggregateRepository()

	curriculumService := service.NewCurriculumService(contentRepo, logger)
	progressService := service.NewProgressService(curriculumService, activityStore, sessionStore, itemRepo, aggregateRepo, validate, logger)

	progressHandler := handler.NewProgressHandler(progressService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProgressHandler: progressHandler,
		JWTMiddleware:   middleware.JWTOptional(cfg.JWTSecret),
		SessionTTL:      cfg.SessionTTL,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
