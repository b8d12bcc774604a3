package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/helmet/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"connectaid/internal/config"
	"connectaid/internal/database"
	"connectaid/internal/domain"
	"connectaid/internal/handler"
	"connectaid/internal/jobs"
	"connectaid/internal/middleware"
	"connectaid/internal/repository"
	"connectaid/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zlog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, zlog.Named("migrate")); err != nil {
		zlog.Fatal("failed to apply migrations", zap.Error(err))
	}

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	minioClient, err := config.NewMinIOClient(cfg, zlog)
	if err != nil {
		zlog.Warn("failed to connect to minio, image upload disabled", zap.Error(err))
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redis, minioClient, cfg, zlog)
	handlers := handler.NewHandlers(services, cfg)

	if err := services.User.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		zlog.Error("failed to bootstrap admin account", zap.Error(err))
	}

	scheduler := jobs.NewScheduler(zlog.Named("jobs"))
	for _, job := range []jobs.Job{
		jobs.NewSessionCleanupJob(repos.Session, zlog.Named("jobs")),
		jobs.NewResetTokenCleanupJob(repos.User, zlog.Named("jobs")),
	} {
		if err := scheduler.AddJob(job); err != nil {
			zlog.Fatal("failed to register job", zap.Error(err))
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler(zlog),
		BodyLimit:    int(cfg.MaxImageBytes)*domain.MaxRequestImages*2 + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: cfg.CORSOrigins != "*",
	}))
	app.Use(middleware.RequestInfo())

	setupRoutes(app, handlers, services, cfg, zlog)

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("shutdown failed", zap.Error(err))
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, services *service.Services, cfg *config.Config, zlog *zap.Logger) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	limited := middleware.RateLimit(services.RateLimit, zlog.Named("ratelimit"))
	auth := v1.Group("/auth")
	auth.Post("/register", limited, h.Auth.Register)
	auth.Post("/login", limited, h.Auth.Login)
	auth.Post("/refresh", limited, h.Auth.RefreshToken)
	auth.Post("/logout", h.Auth.Logout)
	auth.Post("/forgot-password", limited, h.Auth.ForgotPassword)
	auth.Post("/reset-password", limited, h.Auth.ResetPassword)
	auth.Post("/verify-email", limited, h.Auth.VerifyEmail)
	auth.Post("/resend-verification", limited, h.Auth.ResendVerificationEmail)

	protected := v1.Group("", middleware.AuthRequired(services.Auth, cfg.AuthCookieName))

	users := protected.Group("/users")
	users.Get("/me", h.User.GetProfile)
	users.Put("/me", h.User.UpdateProfile)

	requests := protected.Group("/requests")
	requests.Post("/", h.Request.Create)
	requests.Get("/", h.Request.List)
	requests.Get("/:id", h.Request.Get)
	requests.Put("/:id", h.Request.Update)
	requests.Delete("/:id", h.Request.Delete)

	feedback := protected.Group("/feedback")
	feedback.Post("/", h.Feedback.Create)
	feedback.Get("/", h.Feedback.List)
	feedback.Delete("/:id", h.Feedback.Delete)

	admin := protected.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	admin.Get("/users", h.Admin.ListUsers)
	admin.Patch("/users", h.Admin.UpdateUser)
	admin.Get("/volunteers", h.Admin.ListPendingVolunteers)
	admin.Post("/volunteers", h.Admin.ReviewVolunteer)
	admin.Get("/stats", h.Admin.Stats)
	admin.Get("/audit", h.Audit.List)
}
