// Package server contains the HTTP handlers and page views for the application.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	_ "cookfeed/docs" // swagger docs
	"cookfeed/internal/assistant"
	"cookfeed/internal/cache"
	"cookfeed/internal/config"
	"cookfeed/internal/database"
	"cookfeed/internal/garden"
	"cookfeed/internal/media"
	"cookfeed/internal/middleware"
	"cookfeed/internal/models"
	"cookfeed/internal/repository"
	"cookfeed/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/swagger"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

//go:embed views
var viewsFS embed.FS

// The Prometheus collectors live in the default registry and can only be
// registered once per process.
var (
	promOnce       sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
)

func prometheusMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMiddleware = fiberprometheus.New("cookfeed")
	})
	return promMiddleware
}

// Deps are the collaborators a Server is built from. Redis, Uploader and
// Completer are optional.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Catalog   *garden.Catalog
	Uploader  media.Uploader
	Completer assistant.Completer
}

// Server holds all dependencies and provides handlers
type Server struct {
	config   *config.Config
	db       *gorm.DB
	redis    *redis.Client
	app      *fiber.App
	sessions *session.Store
	catalog  *garden.Catalog

	userRepo repository.UserRepository

	authService     *service.AuthService
	postService     *service.PostService
	shoppingService *service.ShoppingService
	chatService     *service.ChatService
}

// NewServer connects to the configured stores and builds every collaborator
// from cfg.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without cache", slog.String("error", err.Error()))
		rdb = nil
	}

	catalog, warnings, err := garden.Load(cfg.StaticDir)
	if err != nil {
		return nil, fmt.Errorf("gardening catalog: %w", err)
	}
	for _, w := range warnings {
		middleware.Logger.Warn("gardening catalog", slog.String("warning", w))
	}

	uploader, err := NewUploader(cfg)
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, Deps{
		DB:        db,
		Redis:     rdb,
		Catalog:   catalog,
		Uploader:  uploader,
		Completer: NewCompleter(cfg),
	})
}

// NewUploader picks the media host when it is configured and local disk otherwise.
func NewUploader(cfg *config.Config) (media.Uploader, error) {
	if cfg.MediaConfigured() {
		up, err := media.NewS3Uploader(media.S3Config{
			Bucket:        cfg.MediaCloudName,
			AccessKey:     cfg.MediaAPIKey,
			SecretKey:     cfg.MediaAPISecret,
			Region:        cfg.MediaRegion,
			Endpoint:      cfg.MediaEndpoint,
			PublicBaseURL: cfg.MediaPublicBaseURL,
			Timeout:       cfg.MediaTimeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("media host: %w", err)
		}
		return up, nil
	}
	if cfg.UploadDir == "" {
		return nil, nil
	}
	return media.NewLocalUploader(cfg.UploadDir), nil
}

// NewCompleter returns nil when no API key is configured so the chat
// endpoint reports itself unavailable.
func NewCompleter(cfg *config.Config) assistant.Completer {
	if !cfg.ChatConfigured() {
		return nil
	}
	return assistant.NewClient(assistant.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
func NewServerWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.DB == nil {
		return nil, errors.New("server: database is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("server: gardening catalog is required")
	}

	userRepo := repository.NewUserRepository(deps.DB)
	postRepo := repository.NewPostRepository(deps.DB, deps.Redis)
	shoppingRepo := repository.NewShoppingRepository(deps.DB)

	s := &Server{
		config:          cfg,
		db:              deps.DB,
		redis:           deps.Redis,
		catalog:         deps.Catalog,
		userRepo:        userRepo,
		authService:     service.NewAuthService(userRepo, cfg.BcryptCost),
		postService:     service.NewPostService(postRepo, deps.Uploader),
		shoppingService: service.NewShoppingService(shoppingRepo),
		chatService:     service.NewChatService(deps.Completer, cfg.ChatMaxTokens, cfg.ChatTimeout()),
	}
	s.sessions = newSessionStore(cfg, deps.Redis)

	engine, err := newViewEngine()
	if err != nil {
		return nil, err
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "CookFeed",
		Views:        engine,
		ViewsLayout:  "layouts/main",
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)

	return s, nil
}

func newViewEngine() (*html.Engine, error) {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, fmt.Errorf("views: %w", err)
	}
	return html.NewFileSystem(http.FS(sub), ".html"), nil
}

// errorHandler turns errors that escape a handler into the JSON error body.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = models.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
			code = models.CodeValidation
		case fiber.StatusMethodNotAllowed:
			code = models.CodeValidation
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: code})
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithAppError(c, err)
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	prom := prometheusMiddleware()
	app.Use(prom.Middleware)

	app.Use(helmet.New(helmet.Config{
		// Post images and gardening photos may come from other hosts.
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))

	if s.config.AllowedOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.AllowedOrigins,
			AllowHeaders:     "Origin, Content-Type, Accept",
			AllowCredentials: true,
			MaxAge:           86400,
		}))
	}

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || isProbePath(c.Path())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: cookieKey(s.config.SecretKey),
	}))
	app.Use(s.loadSession())

	// Runs after loadSession so logs carry the user id.
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	prometheusMiddleware().RegisterAt(app, "/metrics")

	app.Static("/static", s.config.StaticDir)
	if s.config.UploadDir != "" {
		app.Static("/uploads", s.config.UploadDir)
	}

	// Pages
	app.Get("/", s.IndexPage)
	app.Get("/shopping", s.ShoppingPage)
	app.Get("/new", s.PageLoginRequired(), s.NewPostPage)
	app.Get("/gardening", s.GardeningPage)
	app.Get("/garden-setup", s.GardenSetupPage)
	app.Get("/register", s.RegisterPage)
	app.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	app.Get("/login", s.LoginPage)
	app.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Get("/logout", s.Logout)
	app.Get("/profile", s.PageLoginRequired(), s.ProfilePage)

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Post("/", s.APILoginRequired(), s.CreatePost)
	posts.Post("/:id/react", s.ReactToPost)

	items := api.Group("/items")
	items.Get("/", s.ListItems)
	items.Post("/", s.AddItem)
	items.Put("/:id", s.ToggleItem)
	items.Delete("/:id", s.DeleteItem)

	api.Post("/chat", middleware.RateLimit(s.redis, 20, time.Minute, "chat"), s.Chat)
	api.Get("/gardening", s.GetGardening)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck pings the database and, when configured, Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start blocks serving HTTP on the configured port.
func (s *Server) Start() error {
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests, then closes the database and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("database: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("redis: %w", rerr))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
