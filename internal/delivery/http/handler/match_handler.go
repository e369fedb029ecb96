package handler

import (
	"errors"

	"culture-match/internal/delivery/http/dto"
	"culture-match/internal/delivery/http/middleware"
	"culture-match/internal/domain/matching"
	"culture-match/internal/pkg/jwt"
	"culture-match/internal/pkg/response"
	"culture-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MatchHandler struct {
	uc usecase.MatchingUsecase
}

func NewMatchHandler(uc usecase.MatchingUsecase) *MatchHandler {
	return &MatchHandler{uc: uc}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/match", middleware.RequireRole(jwt.RoleSeeker))
	grp.Post("/", h.FindMatches)
	grp.Get("/cache/info", h.CacheInfo)
	grp.Delete("/cache", h.ClearCache)
}

func (h *MatchHandler) FindMatches(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req dto.MatchRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
	}

	params := usecase.MatchParams{Limit: usecase.DefaultLimit, UseCache: true}
	if req.Limit != nil {
		params.Limit = *req.Limit
	}
	if req.UseCache != nil {
		params.UseCache = *req.UseCache
	}

	list, err := h.uc.FindMatches(c.Context(), userID, params)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchListResponse(list))
}

func (h *MatchHandler) CacheInfo(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	st, err := h.uc.CacheStatus(c.Context(), userID)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}

	ttl := int64(st.TTL.Seconds())
	if !st.Exists {
		ttl = 0
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CacheInfoResponse{
		CacheKey:   st.Key,
		Exists:     st.Exists,
		TTLSeconds: ttl,
	})
}

func (h *MatchHandler) ClearCache(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	if _, err := h.uc.ClearCache(c.Context(), userID); err != nil {
		return mapMatchingUsecaseError(err)
	}
	return response.NoContent(c)
}

func mapMatchingUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidLimit):
		return middleware.NewAppError(fiber.StatusBadRequest, "Limit must be between 1 and 50", nil, err)
	case errors.Is(err, matching.ErrIncompleteProfile):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrSeekerNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Seeker profile not found", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
