package server

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/gofiber/storage/redis/v3"
	"github.com/rs/zerolog"

	"kwclassify/internal/config"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config
	Log zerolog.Logger

	storage fiber.Storage
}

// New creates a new server with middleware configured.
func New(cfg *config.Config, log zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:   "kwclassify",
		BodyLimit: cfg.BodyLimit(),
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}

			if code >= fiber.StatusInternalServerError {
				log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	s := &Server{App: app, Cfg: cfg, Log: log}

	// Global middleware
	app.Use(recover.New())
	if cfg.IsDev() {
		app.Use(logger.New())
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       86400,
	}))

	// Rate limiting middleware, per IP; counters live in Redis when configured
	limiterCfg := limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c fiber.Ctx) bool {
			// Progress polling is frequent by nature.
			return strings.HasPrefix(c.Path(), "/api/progress/")
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	}
	if cfg.RedisURL != "" {
		s.storage = redis.New(redis.Config{URL: cfg.RedisURL})
		limiterCfg.Storage = s.storage
		log.Info().Msg("rate limiter using redis storage")
	}
	app.Use(limiter.New(limiterCfg))

	return s
}

// ServeFrontend serves the static UI at "/" when the directory exists.
// It must be registered after the API routes.
func (s *Server) ServeFrontend() {
	info, err := os.Stat(s.Cfg.FrontendDir)
	if err != nil || !info.IsDir() {
		s.Log.Info().Str("dir", s.Cfg.FrontendDir).Msg("frontend directory not found, UI disabled")
		return
	}
	s.App.Get("/*", static.New(s.Cfg.FrontendDir))
}

// Start starts the server on the configured address.
func (s *Server) Start() error {
	s.Log.Info().Str("addr", s.Cfg.ServerAddr).Msg("starting server")
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown gracefully shuts down the server and releases the limiter storage.
func (s *Server) Shutdown() error {
	err := s.App.Shutdown()
	if s.storage != nil {
		if cerr := s.storage.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
