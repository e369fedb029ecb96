package v1

import (
	"culture-match/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

// Handlers are mounted behind the auth middleware.
type Handlers struct {
	Match   *handler.MatchHandler
	Profile *handler.ProfileHandler
}

func Register(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Match != nil {
		h.Match.RegisterRoutes(r)
	}
	if h.Profile != nil {
		h.Profile.RegisterRoutes(r)
	}
}
