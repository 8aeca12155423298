package server

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	auth "github.com/goliatone/go-authd"
	"github.com/goliatone/go-authd/activitymap"
	"github.com/goliatone/go-authd/config"
)

const requestLogFormat = "${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n"

// Options controls the construction of the HTTP application
type Options struct {
	Config    *config.Config
	Directory auth.UserDirectory
	Logger    auth.Logger
	// RequestLog receives one access log line per request. Nil disables it.
	RequestLog io.Writer
	// Activity overrides the default logging activity sink
	Activity auth.ActivitySink
	// StartedAt is reported as the uptime origin by /health
	StartedAt time.Time
}

// New wires the auth engine into a fiber application with the public,
// auth and protected routes mounted.
func New(opts Options) *fiber.App {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = auth.NewLogger(cfg.Log.Level, cfg.Log.Format, io.Discard)
	}

	startedAt := opts.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	activity := opts.Activity
	if activity == nil {
		activity = activitymap.NewLogSink(logger)
	}

	hasher := auth.NewBcryptHasher(cfg.GetBcryptCost(), cfg.GetHashWorkers(), logger)
	tokens := auth.NewTokenServiceFromConfig(cfg, logger)
	carrier := auth.NewCookieSessionCarrierFromConfig(cfg)
	gate := auth.NewRouteAuthenticator(tokens, carrier, logger)

	auther := auth.NewAuthenticator(opts.Directory, hasher, tokens).
		WithLogger(logger).
		WithActivitySink(activity)

	controller := auth.NewAuthController(auther, carrier, gate,
		auth.WithControllerLogger(logger),
	)

	app := fiber.New(fiber.Config{
		AppName:               "authd",
		ErrorHandler:          auth.NewErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(corsConfig(cfg.CORS.AllowOrigins)))

	if opts.RequestLog != nil {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: requestLogFormat,
			Output: opts.RequestLog,
		}))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		logger.Info("hello authd")
		return c.SendString("hello world")
	})

	app.Get("/health", healthHandler(cfg.Environment, startedAt))

	app.Get("/api", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "authd API"})
	})

	auth.RegisterAuthRoutes(app.Group("/api/auth"), controller)
	auth.RegisterProtectedRoutes(app.Group("/api"), controller)

	return app
}

func healthHandler(environment string, startedAt time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "OK",
			"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
			"uptime":      time.Since(startedAt).Seconds(),
			"environment": environment,
		})
	}
}

// corsConfig allows credentials only for an explicit origin list
func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: !slices.Contains(origins, "*"),
	}
}
