package main

import (
	"fmt"
	"log"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lingotrail-backend/internal/config"
	"lingotrail-backend/internal/controller"
	"lingotrail-backend/internal/db"
	"lingotrail-backend/internal/model"
	"lingotrail-backend/internal/repository"
	"lingotrail-backend/internal/service"
	"lingotrail-backend/pkg/middleware"
	"lingotrail-backend/utilities"

	logger "lingotrail-backend/pkg/logging"
)

func main() {
	printStartUpBanner()

	// Load XML configuration from file.
	cfg, err := config.LoadConfig("config.xml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(logger.Options{
		Dir:        cfg.Logging.Dir,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	utilities.SetJWTSecrets(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret)

	// Initialize DB using the loaded config.
	db.InitDBFromConfig(cfg)
	// Run migrations.
	err = db.GetDB().AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Vocabulary{},
		&model.Sentence{},
		&model.TrailStep{},
		&model.Exercise{},
		&model.Session{},
		&model.SessionAnswer{},
		&model.UserProgress{},
	)
	if err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Create repositories.
	userRepo := repository.NewUserRepository()
	contentRepo := repository.NewContentRepository()
	stepRepo := repository.NewStepRepository()
	exerciseRepo := repository.NewExerciseRepository()
	sessionRepo := repository.NewSessionRepository()
	progressRepo := repository.NewProgressRepository()

	// Create services. One keyed-mutex scope serializes category, session,
	// and progress mutations.
	locks := utilities.NewKeyedMutex()
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	sequencerService := service.NewSequencerService(stepRepo, exerciseRepo, sessionRepo, progressRepo, contentRepo, locks)
	catalogService := service.NewCatalogService(exerciseRepo, contentRepo)
	progressService := service.NewProgressService(progressRepo, stepRepo, locks)
	sessionService := service.NewSessionService(
		sessionRepo, stepRepo, catalogService, progressService, locks,
		time.Duration(cfg.Session.TTLHours)*time.Hour,
	)
	reportService := service.NewReportService(progressService, contentRepo, userRepo)
	activityService := service.NewActivityService(utilities.GlobalEventBus)

	// Seed content on an empty database.
	if cfg.DB.Initialize {
		if err := seedContent(contentRepo, sequencerService, cfg.Session.DefaultPassingPerc); err != nil {
			log.Fatalf("failed to seed content: %v", err)
		}
	}

	// Optional eager expiry sweep; lazy expiry covers correctness without it.
	if cfg.Session.SweepIntervalMins > 0 {
		sweeper := service.NewSweeper(sessionService, time.Duration(cfg.Session.SweepIntervalMins)*time.Minute)
		sweeper.Start()
		defer sweeper.Stop()
	}

	// Initialize Gin router.
	r := gin.Default()

	// CORS configuration.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}
	r.Use(utilities.AuthMiddleware())

	controller.RegisterRoutes(r,
		authService, userService,
		sequencerService, sessionService, progressService, reportService,
		activityService,
		contentRepo,
	)

	// Start server on the host and port specified in the XML config.
	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("LINGOTRAIL", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("LINGOTRAIL API (v%s)\n\n", "1.0.0-Trailhead")
}
