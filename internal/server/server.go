// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"time"

	_ "reelsocial/docs" // swagger docs
	"reelsocial/internal/bootstrap"
	"reelsocial/internal/catalog"
	"reelsocial/internal/config"
	"reelsocial/internal/featureflags"
	"reelsocial/internal/middleware"
	"reelsocial/internal/models"
	"reelsocial/internal/repository"
	"reelsocial/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

const serviceName = "reelsocial-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	runtime        *bootstrap.Runtime
	auth           *middleware.Authenticator
	featureFlags   *featureflags.Manager
	postRepo       repository.PostRepository
	postService    *service.PostService
	catalog        *catalog.Client
	projector      *catalog.Projector
}

// NewServer creates a new server instance, opening the configured post store
// and Redis.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}

	server, err := NewServerWithDeps(cfg, rt.PostRepo, rt.Redis)
	if err != nil {
		_ = rt.Close(context.Background())
		return nil, err
	}
	server.runtime = rt
	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer owns the store and Redis.
func NewServerWithDeps(cfg *config.Config, postRepo repository.PostRepository, redisClient *redis.Client) (*Server, error) {
	if postRepo == nil {
		return nil, errors.New("post repository is required")
	}

	catalogCfg := catalog.Config{
		BaseURL:      cfg.TMDBBaseURL,
		APIKey:       cfg.TMDBAPIKey,
		Language:     cfg.TMDBLanguage,
		ImageBaseURL: cfg.TMDBImageBaseURL,
		Timeout:      cfg.TMDBTimeout(),
	}

	server := &Server{
		config:         cfg,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(serviceName),
		auth:           middleware.NewAuthenticator(cfg.JWTSecret),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		postRepo:       postRepo,
		catalog:        catalog.NewClient(catalogCfg),
		projector:      catalog.NewProjector(catalogCfg),
	}
	server.postService = service.NewPostService(server.postRepo, server.featureFlags)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span; sets the traceID local read by ContextMiddleware
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Reelsocial Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	api.Get("/feature-flags", s.auth.Required(), s.GetFeatureFlags)

	// Post routes. Specific paths are registered before /:postId.
	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Post("/", s.auth.Required(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/movie", s.auth.Optional(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_movie_post"), s.CreateMoviePost)
	posts.Get("/:postId/likes", s.GetLikes)
	posts.Get("/:postId/like/:userId", s.CheckLike)
	posts.Post("/:postId/like", s.auth.Required(), s.LikePost)
	posts.Post("/:postId/unlike", s.auth.Required(), s.UnlikePost)
	posts.Get("/:postId", s.RecordView)
	posts.Put("/:postId", s.auth.Required(), s.UpdatePost)
	posts.Delete("/:postId", s.auth.Required(), s.DeletePost)

	// Movie catalog routes. Specific paths are registered before /:movieId.
	movies := api.Group("/movies")
	movies.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "movie_search"), s.SearchMovies)
	movies.Get("/tag/:tag", s.MoviesByTag)
	movies.Get("/top-rated", s.TopRatedMovies)
	movies.Get("/discover", s.DiscoverMovies)
	movies.Get("/:movieId/credits", s.MovieCredits)
	movies.Get("/:movieId/videos", s.MovieVideos)
	movies.Get("/:movieId", s.MovieDetail)
}

// App returns the Fiber app with middleware and routes installed, creating it
// on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "Reelsocial API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.postService.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis backs per-route rate limits; without it they fail open.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", "port", s.config.Port, "store", s.config.StoreDriver)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.runtime != nil {
		if err := s.runtime.Close(ctx); err != nil {
			middleware.Logger.Error("error closing runtime dependencies", "error", err)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
