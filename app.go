package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"folio/internal/handlers"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/oauth"
	"folio/internal/repositories"
	"folio/internal/services"
	"folio/pkg/assets"
	"folio/pkg/config"
	"folio/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const oauthStateCapacity = 4096

// App owns every long-lived collaborator of the server.
type App struct {
	Fiber *fiber.App

	cfg       *config.Config
	log       *zap.Logger
	db        *gorm.DB
	mq        *rabbitmq.Client
	states    oauth.StateStore
	scheduler *cron.Cron
	reconcile *services.ReconcileService
}

// NewApp connects to the store and the optional brokers, builds services and
// handlers and mounts every route under cfg.APIBasePath.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a.db = db
	if err := db.AutoMigrate(&models.User{}, &models.Portfolio{}); err != nil {
		a.closeStores()
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	if cfg.RedisURL != "" {
		store, err := oauth.NewRedisStateStore(cfg.RedisURL, cfg.OAuthStateTTL)
		if err != nil {
			a.closeStores()
			return nil, err
		}
		a.states = store
	} else {
		a.states = oauth.NewLRUStateStore(oauthStateCapacity, cfg.OAuthStateTTL)
	}

	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			a.closeStores()
			return nil, err
		}
		a.mq = mq
		events = mq
		if err := mq.ConsumePortfolioEvents(a.auditPortfolioEvent); err != nil {
			a.closeStores()
			return nil, err
		}
	}

	uploader, err := newUploader(context.Background(), cfg)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	// Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	portfolioRepo := repositories.NewGORMPortfolioRepository(db)

	// Services
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := services.NewAuthService(userRepo, tokens, cfg.DefaultProfileImage, log.Named("auth"))
	userService := services.NewUserService(userRepo, uploader, log.Named("user"))
	portfolioService := services.NewPortfolioService(portfolioRepo, userRepo, events, cfg.DefaultProfileImage, log.Named("portfolio"))
	a.reconcile = services.NewReconcileService(userRepo, portfolioRepo, log.Named("reconcile"))

	// Handlers
	var provider oauth.Provider
	if cfg.GoogleClientID != "" {
		provider = oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleCallbackURL,
		})
	}
	authHandler := handlers.NewAuthHandler(authService, userService, handlers.OAuthOptions{
		Provider:    provider,
		States:      a.states,
		FrontendURL: cfg.FrontendCallbackURL,
	}, log.Named("http"))
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, log.Named("http"))

	metrics := middleware.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:      "folio",
		ErrorHandler: a.errorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log.Named("http")))
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", metrics.Handler())

	api := app.Group(cfg.APIBasePath)
	requireAuth := middleware.AuthRequired(tokens, log.Named("auth"))
	authHandler.RegisterRoutes(api, requireAuth)
	portfolioHandler.RegisterRoutes(api, requireAuth)

	a.Fiber = app

	if err := a.startScheduler(); err != nil {
		a.closeStores()
		return nil, err
	}
	return a, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func newUploader(ctx context.Context, cfg *config.Config) (services.ImageUploader, error) {
	switch cfg.AssetBackend {
	case "cloudinary":
		return assets.NewCloudinaryUploader(assets.CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.AssetFolder,
		})
	case "s3":
		return assets.NewS3Uploader(ctx, assets.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			UsePathStyle:  cfg.S3UsePathStyle,
			PublicBaseURL: cfg.S3PublicBaseURL,
			Folder:        cfg.AssetFolder,
		})
	default:
		return assets.Disabled{}, nil
	}
}

// startScheduler runs the portfolio reference repair on RECONCILE_SCHEDULE.
// An empty schedule or "off" disables it.
func (a *App) startScheduler() error {
	schedule := strings.TrimSpace(a.cfg.ReconcileSchedule)
	if schedule == "" || schedule == "off" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		res, err := a.reconcile.Run(ctx)
		if err != nil {
			a.log.Error("portfolio reference reconciliation failed", zap.Error(err))
			return
		}
		a.log.Info("portfolio reference reconciliation finished",
			zap.Int("scanned", res.Scanned),
			zap.Int("repaired", res.Repaired))
	})
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}

	c.Start()
	a.scheduler = c
	a.log.Info("reconcile job scheduled", zap.String("schedule", schedule))
	return nil
}

// auditPortfolioEvent writes each consumed portfolio event to the audit log.
func (a *App) auditPortfolioEvent(event rabbitmq.PortfolioEvent) error {
	a.log.Named("audit").Info("portfolio event",
		zap.String("type", string(event.Type)),
		zap.String("portfolio_id", event.PortfolioID),
		zap.String("user_id", event.UserID),
		zap.String("title", event.Title),
		zap.Bool("is_published", event.IsPublished),
		zap.Time("occurred_at", event.OccurredAt))
	return nil
}

// errorHandler answers errors no handler turned into a response.
func (a *App) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	a.log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
}

// Listen serves HTTP on addr until Shutdown is called.
func (a *App) Listen(addr string) error {
	return a.Fiber.Listen(addr)
}

// Shutdown stops accepting requests, waits for the scheduler and closes
// every collaborator in reverse order of construction.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Fiber != nil {
		if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
		}
	}
	if a.scheduler != nil {
		select {
		case <-a.scheduler.Stop().Done():
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("reconcile job still running: %w", ctx.Err()))
		}
	}
	if err := a.closeStores(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeStores() error {
	var errs []error
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, err)
		}
		a.mq = nil
	}
	if a.states != nil {
		if err := a.states.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close oauth state store: %w", err))
		}
		a.states = nil
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
		a.db = nil
	}
	return errors.Join(errs...)
}
