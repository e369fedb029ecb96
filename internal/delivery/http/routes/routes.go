package routes

import (
	"culture-match/internal/delivery/http/handler"
	"culture-match/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	api    V1Handlers
	authMw *middleware.AuthMiddleware
}

func NewRegistry(health *handler.HealthHandler, authMw *middleware.AuthMiddleware, api V1Handlers) *Registry {
	return &Registry{health: health, api: api, authMw: authMw}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1", r.authMw.Middleware()), r.api)
}
