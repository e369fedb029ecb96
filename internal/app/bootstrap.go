package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"culture-match/internal/config"
	"culture-match/internal/delivery/http/handler"
	"culture-match/internal/delivery/http/middleware"
	"culture-match/internal/delivery/http/routes"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP surface over an already wired container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	timeout := cfg.Database.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c, err := NewContainer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(c.Logger, "/health", "/health/ready")
	errMw := middleware.NewErrorMiddleware(c.Logger)
	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	deps := map[string]handler.Pinger{}
	if c.DB != nil {
		deps["postgres"] = c.DB
	}
	if c.Cache != nil {
		deps["cache"] = c.Cache
	}

	routes.NewRegistry(
		handler.NewHealthHandler(deps),
		middleware.NewAuthMiddleware(c.JWT),
		routes.V1Handlers{
			Match:   handler.NewMatchHandler(c.Matching),
			Profile: handler.NewProfileHandler(c.Profile),
		},
	).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
