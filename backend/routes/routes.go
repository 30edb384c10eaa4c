package routes

import (
	"github.com/DataDog/datadog-go/statsd"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"

	"yptstats/backend/config"
	"yptstats/backend/controllers"
	"yptstats/backend/handshake"
	"yptstats/backend/middleware"
	"yptstats/backend/utils"
)

// Deps are the collaborators the HTTP layer is wired to.
type Deps struct {
	Cfg       *config.Config
	Handshake *handshake.Service
	Logs      controllers.StudyLogSource
	Logger    logrus.FieldLogger
	Statsd    *statsd.Client
}

// NewApp builds the fiber app with middleware and all routes.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			if code == fiber.StatusNotFound {
				return utils.NotFound(c, err.Error())
			}
			return utils.Error(c, code, utils.CodeInternal, err)
		},
	})

	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
	}))
	app.Use(middleware.LoggingMiddleware(deps.Logger, deps.Statsd))

	SetupRoutes(app, deps)
	return app
}

func SetupRoutes(app *fiber.App, deps Deps) {
	cfg := deps.Cfg

	app.Get("/healthcheck", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	// Handshake routes
	handshakeController := controllers.NewHandshakeController(deps.Handshake, cfg, deps.Logger)
	app.Post("/api/create-handshake", handshakeController.CreateHandshake)
	app.Get("/api/await-member", middleware.GroupSession(cfg), handshakeController.AwaitMember)

	// User routes
	userSession := middleware.UserSession(cfg)
	app.Get("/api/me", userSession, handshakeController.Me)

	statsController := controllers.NewStatsController(deps.Logs, cfg, deps.Logger)
	app.Post("/api/stats", userSession, statsController.GetStats)

	// Maintenance routes
	if cfg.MaintenanceEnabled() {
		groupsController := controllers.NewGroupsController(deps.Handshake, deps.Logger)
		admin := app.Group("/api/admin", middleware.AdminMiddleware(cfg))
		admin.Delete("/groups", groupsController.DeleteAllGroups)
	}
}
