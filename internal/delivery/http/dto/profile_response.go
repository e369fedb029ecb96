package dto

import (
	"culture-match/internal/domain/matching"

	"github.com/google/uuid"
)

type UpdateProviderRequest struct {
	FirstName    *string        `json:"first_name"`
	LastName     *string        `json:"last_name"`
	PhotoURL     *string        `json:"photo_url"`
	Bio          *string        `json:"bio"`
	Expertise    []string       `json:"expertise"`
	Languages    []string       `json:"languages"`
	Countries    []string       `json:"countries"`
	HourlyRate   *float64       `json:"hourly_rate"`
	Currency     *string        `json:"currency"`
	Availability map[string]any `json:"availability"`
	IsActive     *bool          `json:"is_active"`
}

type ProviderProfileResponse struct {
	ID            uuid.UUID    `json:"id"`
	UserID        uuid.UUID    `json:"user_id"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	Bio           string       `json:"bio"`
	Expertise     []string     `json:"expertise"`
	Languages     matching.Set `json:"languages"`
	Countries     matching.Set `json:"countries"`
	HourlyRate    float64      `json:"hourly_rate"`
	Currency      string       `json:"currency"`
	Rating        float64      `json:"rating"`
	TotalSessions int          `json:"total_sessions"`
	IsVerified    bool         `json:"is_verified"`
}

func NewProviderProfileResponse(p matching.ProviderProfile) ProviderProfileResponse {
	expertise := p.Expertise
	if expertise == nil {
		expertise = []string{}
	}
	return ProviderProfileResponse{
		ID:            p.ProviderID,
		UserID:        p.UserID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Bio:           p.Bio,
		Expertise:     expertise,
		Languages:     p.Languages,
		Countries:     p.RegionExperience,
		HourlyRate:    p.Rate,
		Currency:      p.Currency,
		Rating:        p.Quality.Rating,
		TotalSessions: p.Quality.SessionCount,
		IsVerified:    p.Quality.Verified,
	}
}
