package handler

import (
	"errors"

	"culture-match/internal/delivery/http/dto"
	"culture-match/internal/delivery/http/middleware"
	"culture-match/internal/domain/matching"
	"culture-match/internal/pkg/jwt"
	"culture-match/internal/pkg/response"
	"culture-match/internal/repository"
	"culture-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ProfileHandler struct {
	uc usecase.ProfileUsecase
}

func NewProfileHandler(uc usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Put("/providers/me", middleware.RequireRole(jwt.RoleProvider), h.UpdateProvider)
	r.Put("/seekers/me/intake", middleware.RequireRole(jwt.RoleSeeker), h.UpdateIntake)
}

func (h *ProfileHandler) UpdateProvider(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req dto.UpdateProviderRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	p, err := h.uc.UpdateProviderProfile(c.Context(), userID, repository.ProviderUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhotoURL:     req.PhotoURL,
		Bio:          req.Bio,
		Expertise:    req.Expertise,
		Languages:    req.Languages,
		Countries:    req.Countries,
		HourlyRate:   req.HourlyRate,
		Currency:     req.Currency,
		Availability: req.Availability,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageUpdated, dto.NewProviderProfileResponse(p))
}

// UpdateIntake takes the intake answers as the request body.
func (h *ProfileHandler) UpdateIntake(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	quiz := map[string]any{}
	if err := c.Bind().Body(&quiz); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	s, err := h.uc.UpdateSeekerIntake(c.Context(), userID, quiz)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageUpdated, s)
}

func mapProfileUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, matching.ErrIncompleteProfile):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrProviderNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Provider profile not found", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
