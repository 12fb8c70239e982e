// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "pulse/docs" // swagger docs
	"pulse/internal/auth"
	"pulse/internal/config"
	"pulse/internal/database"
	"pulse/internal/middleware"
	"pulse/internal/repository"
	"pulse/internal/service"
	"pulse/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

const defaultAllowedOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"

// Server holds all dependencies and provides handlers
type Server struct {
	config  *config.Config
	db      *gorm.DB
	store   storage.Store
	app     *fiber.App
	metrics *middleware.Metrics
	tokens  *auth.TokenManager

	authService    *service.AuthService
	userService    *service.UserService
	followService  *service.FollowService
	postService    *service.PostService
	likeService    *service.LikeService
	commentService *service.CommentService
}

// NewServerWithDeps creates a Server using an already-opened database and
// upload store. The server owns both from here on and closes the database
// in Shutdown.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, store storage.Store) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: config is required")
	}
	if db == nil {
		return nil, errors.New("server: database is required")
	}
	if store == nil {
		return nil, errors.New("server: upload store is required")
	}

	timeout := cfg.DBQueryTimeout
	userRepo := repository.NewUserRepository(db, timeout)
	postRepo := repository.NewPostRepository(db, timeout)
	likeRepo := repository.NewLikeRepository(db, timeout)
	followRepo := repository.NewFollowRepository(db, timeout)
	commentRepo := repository.NewCommentRepository(db, timeout)

	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret:      cfg.JWTSecret,
		Issuer:      cfg.JWTIssuer,
		Audience:    cfg.JWTAudience,
		TTL:         cfg.TokenTTL,
		RememberTTL: cfg.RememberTokenTTL,
	})
	uploads := service.NewUploadService(store, service.UploadLimits{
		PostImageMaxBytes:  cfg.PostImageMaxBytes,
		ProfilePicMaxBytes: cfg.ProfilePicMaxBytes,
	})

	s := &Server{
		config: cfg,
		db:     db,
		store:  store,
		tokens: tokens,

		authService:    service.NewAuthService(userRepo, auth.NewBcryptHasher(), tokens),
		userService:    service.NewUserService(userRepo, uploads),
		followService:  service.NewFollowService(followRepo, userRepo),
		postService:    service.NewPostService(postRepo, uploads),
		likeService:    service.NewLikeService(likeRepo, postRepo),
		commentService: service.NewCommentService(commentRepo, postRepo),
	}
	if cfg.MetricsEnabled {
		s.metrics = middleware.InitMetrics("pulse-api")
	}
	return s, nil
}

// App returns the fiber app, building it with middleware and routes on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	bodyLimit := s.config.BodyLimitBytes
	if bodyLimit <= 0 {
		bodyLimit = fiber.DefaultBodyLimit
	}
	app := fiber.New(fiber.Config{
		AppName:      "Pulse API",
		BodyLimit:    bodyLimit,
		ErrorHandler: handleError,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Propagate request id into the request context for the logger.
	app.Use(middleware.ContextMiddleware())

	if s.metrics != nil {
		app.Use(middleware.MetricsMiddleware(s.metrics))
	}
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(helmet.New(helmet.Config{
		// Uploaded images are embedded by the web client from another origin.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultAllowedOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/api/status", s.Status)
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.metrics != nil {
		app.Get("/metrics", middleware.MetricsHandler(s.metrics))
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	if local, ok := s.store.(*storage.LocalStore); ok {
		app.Static(local.Prefix(), local.Dir(), fiber.Static{ByteRange: true})
	}

	gate := middleware.AuthRequired(s.tokens)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", s.Register)
	authGroup.Post("/login", s.Login)
	authGroup.Post("/logout", s.Logout)
	authGroup.Get("/me", gate, s.Me)

	posts := app.Group("/posts", gate)
	posts.Get("/", s.GetFeed)
	posts.Post("/", s.CreatePost)
	// Specific routes before the generic /:id
	posts.Get("/user/:userId", s.GetUserPosts)
	posts.Post("/:postId/like", s.LikePost)
	posts.Delete("/:postId/like", s.UnlikePost)
	posts.Post("/:postId/comment", s.CreateComment)
	posts.Get("/:postId/comments", s.GetComments)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.DeletePost)

	users := app.Group("/users", gate)
	users.Get("/search", s.SearchUsers)
	users.Put("/profile", s.UpdateProfile)
	users.Post("/:userId/follow", s.FollowUser)
	users.Delete("/:userId/follow", s.UnfollowUser)
	users.Get("/:id", s.GetUserProfile)
}

// Status godoc
// @Summary API status
// @Tags system
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /api/status [get]
func (s *Server) Status(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Status:    "Online",
		Message:   "API is up and running",
		Timestamp: time.Now().UTC(),
	})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "up", Time: time.Now()})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
		middleware.Logger.WarnContext(ctx, "readiness check failed", slog.String("error", err.Error()))
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(HealthResponse{
		Status: overall,
		Checks: map[string]string{"database": dbStatus},
		Time:   time.Now(),
	})
}

// Start builds the app and listens on the configured port. It blocks until
// the listener closes.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests, waits for in-flight ones and closes the
// database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
			shutdownErr = err
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
		shutdownErr = errors.Join(shutdownErr, err)
	}

	middleware.Logger.Info("Server shutdown complete")
	return shutdownErr
}
