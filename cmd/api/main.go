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

	"github.com/campoverde/plano-api/internal/catalog"
	"github.com/campoverde/plano-api/internal/config"
	"github.com/campoverde/plano-api/internal/database"
	"github.com/campoverde/plano-api/internal/handler"
	"github.com/campoverde/plano-api/internal/middleware"
	"github.com/campoverde/plano-api/internal/models"
	"github.com/campoverde/plano-api/internal/repository"
	"github.com/campoverde/plano-api/internal/router"
	"github.com/campoverde/plano-api/internal/service"
	cloud "github.com/campoverde/plano-api/pkg/cloudinary"
	"github.com/campoverde/plano-api/pkg/pdfrender"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// A broken catalog means no plan can be served; refuse to start.
	cat, err := catalog.Default()
	if err != nil {
		log.Fatalf("failed to load template catalog: %v", err)
	}

	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		log.Fatalf("invalid deployment time zone %q: %v", cfg.TimeZone, err)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Organization{}, &models.ActionOverride{}, &models.CustomAction{}, &models.CollaborativeNote{}, &models.Evidence{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, plan view caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, activity events disabled")
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var renderer pdfrender.Renderer
	if cfg.PDFRenderURL != "" {
		httpRenderer, err := pdfrender.New(cfg.PDFRenderURL, cfg.PDFRenderTimeout, logger)
		if err != nil {
			log.Fatalf("failed to create pdf renderer: %v", err)
		}
		renderer = httpRenderer
	} else {
		logger.Warn().Msg("pdf render url not configured, pdf export disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	orgRepo := repository.NewOrganizationRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)
	customRepo := repository.NewCustomActionRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)

	activityService := service.NewActivityService(natsConn, cfg.ActivitySubjectBase, logger)
	planService := service.NewPlanService(cat, orgRepo, overrideRepo, customRepo, noteRepo, evidenceRepo, redisClient, cfg.PlanCacheTTL, activityService, location, logger)
	noteService := service.NewNoteService(noteRepo, orgRepo, redisClient, activityService, logger)
	evidenceService := service.NewEvidenceService(evidenceRepo, orgRepo, uploader, redisClient, activityService, cfg.EvidenceMaxSizeMB, logger)

	planHandler := handler.NewPlanHandler(planService, renderer, validate, logger)
	noteHandler := handler.NewNoteHandler(noteService, logger)
	evidenceHandler := handler.NewEvidenceHandler(evidenceService, logger)
	eventsHandler := handler.NewEventsHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		PlanHandler:     planHandler,
		NoteHandler:     noteHandler,
		EvidenceHandler: evidenceHandler,
		EventsHandler:   eventsHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
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
