package FiberConfig

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"SmartRoute/Config"
	"SmartRoute/Controllers"
	"SmartRoute/Geocoder"
	"SmartRoute/Observability"
	"SmartRoute/RouteOptimizer"
	"SmartRoute/middleware"
)

// Dependencies are the long-lived services the HTTP layer needs.
type Dependencies struct {
	Config   *Config.Config
	Log      *zap.Logger
	Geocoder Geocoder.Geocoder
	Metrics  *Observability.Collector
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	// Initialize handlers
	routeController := Controllers.NewRouteController(deps.Geocoder, deps.Config, deps.Metrics, deps.Log)
	geocodeController := Controllers.NewGeocodeController(deps.Geocoder, deps.Log)

	app.Get("/", index(deps.Config))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Handler())
	}

	// API group
	api := app.Group("/api", middleware.Verify(deps.Config.Auth.JWTSecret))
	api.Post("/geocode", geocodeController.Geocode)
	api.Post("/tsp", routeController.TSP)

	optimize := api.Group("/optimize")
	optimize.Post("/", routeController.Optimize)
	optimize.Post("/export", routeController.Export)
	optimize.Post("/upload", routeController.Upload)
}

// NewApp builds the fiber app with templates, middleware and routes.
func NewApp(deps Dependencies) *fiber.App {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	// Html Template engine
	engine := html.New(deps.Config.TemplatesDir, ".html")
	app := fiber.New(fiber.Config{
		Views:                 engine,
		AppName:               "SmartRoute",
		DisableStartupMessage: true,
		BodyLimit:             8 * 1024 * 1024,
		ErrorHandler:          errorHandler(deps.Log),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	requestLogger := middleware.RequestLogger
	if deps.Config.Log.RequestErrorsOnly {
		requestLogger = middleware.ErrorLogger
	}
	app.Use(requestLogger(deps.Log))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		MaxAge:       300,
	}))

	SetupRoutes(app, deps)
	return app
}

func index(cfg *Config.Config) fiber.Handler {
	modes := make([]string, 0, len(RouteOptimizer.AverageSpeeds))
	for mode := range RouteOptimizer.AverageSpeeds {
		modes = append(modes, string(mode))
	}
	sort.Strings(modes)

	return func(c *fiber.Ctx) error {
		return c.Render("index", fiber.Map{
			"Algorithms":        RouteOptimizer.Algorithms,
			"TravelModes":       modes,
			"DefaultAlgorithm":  cfg.Optimizer.DefaultAlgorithm,
			"DefaultTravelMode": cfg.Optimizer.DefaultTravelMode,
			"DefaultClosed":     cfg.Optimizer.DefaultClosed,
			"AuthEnabled":       cfg.Auth.JWTSecret != "",
		})
	}
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"status": "Error",
			"error":  err.Error(),
		})
	}
}
