// Package server contains the HTTP handlers for the relationship API.
package server

import (
	"context"
	"log/slog"
	"time"

	"amizades/internal/cache"
	"amizades/internal/config"
	"amizades/internal/events"
	"amizades/internal/middleware"
	"amizades/internal/models"
	"amizades/internal/notifications"
	"amizades/internal/repository"
	"amizades/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "amizades-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	verifier       middleware.TokenVerifier
	profiles       service.ProfileDirectory
	publisher      events.Publisher
	relationships  *service.RelationshipService
}

// Option customizes a Server built by NewServerWithDeps.
type Option func(*Server)

// WithProfileDirectory replaces the database-backed profile directory.
func WithProfileDirectory(p service.ProfileDirectory) Option {
	return func(s *Server) { s.profiles = p }
}

// WithPublisher replaces the event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Server) { s.publisher = p }
}

// WithTokenVerifier replaces the JWT verifier.
func WithTokenVerifier(v middleware.TokenVerifier) Option {
	return func(s *Server) { s.verifier = v }
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; the profile cache and Redis notifications are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) *Server {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(serviceName),
		verifier:       middleware.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.profiles == nil {
		s.profiles = repository.NewProfileRepository(db, cache.NewProfileCache(redisClient, cfg.ProfileCacheTTL))
	}
	if s.publisher == nil {
		s.publisher = defaultPublisher(cfg, redisClient)
	}

	s.relationships = service.NewRelationshipService(service.Deps{
		DB:          db,
		Requests:    repository.NewRequestRepository(db),
		Friendships: repository.NewFriendshipRepository(db),
		Profiles:    s.profiles,
		Publisher:   s.publisher,
		Options: service.Options{
			SearchMinQuery:    cfg.SearchMinQuery,
			SearchLimit:       cfg.SearchLimit,
			SearchConcurrency: cfg.SearchConcurrency,
		},
	})
	return s
}

// defaultPublisher fans events out to every sink the configuration enables.
func defaultPublisher(cfg *config.Config, redisClient *redis.Client) *events.MultiPublisher {
	var sinks []events.Publisher
	if p := events.NewRedisPublisher(notifications.NewNotifier(redisClient)); p != nil {
		sinks = append(sinks, p)
	}
	if p := events.NewKafkaPublisher(cfg.KafkaBrokerList(), cfg.KafkaTopic); p != nil {
		sinks = append(sinks, p)
	}
	return events.NewMultiPublisher(sinks...)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api", middleware.AuthRequired(s.verifier))
	api.Get("/search-users", s.SearchUsers)
	api.Post("/send-friend-request", s.SendFriendRequest)
	api.Post("/accept-friend-request", s.AcceptFriendRequest)
	api.Get("/check-requests", s.CheckRequests)
	api.Get("/get-requests", s.GetRequests)
	api.Delete("/reject-request", s.RejectRequest)
	api.Get("/friends", s.GetFriends)
	api.Get("/friend-status/:userId", s.GetFriendStatus)
}

// NewApp builds the Fiber application with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Amizades API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database, and Redis when one is configured.
// Running without Redis is a supported mode and does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if c, ok := s.publisher.(events.Closer); ok {
		if err := c.Close(); err != nil {
			middleware.Logger.Error("error closing event publisher", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
