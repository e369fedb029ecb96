package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"culture-match/internal/domain/matching"
	"culture-match/internal/repository"

	"github.com/google/uuid"
)

const (
	MinHourlyRate = 25.0
	MaxHourlyRate = 500.0
)

type ProfileUsecase interface {
	UpdateProviderProfile(ctx context.Context, userID uuid.UUID, upd repository.ProviderUpdate) (matching.ProviderProfile, error)
	UpdateSeekerIntake(ctx context.Context, userID uuid.UUID, quiz map[string]any) (matching.SeekerProfile, error)
}

// Profile writes profiles and keeps the match cache consistent with them. A provider
// edit can change any seeker's ranking, so it drops every cached list.
type Profile struct {
	profiles repository.ProfileRepository
	cache    *MatchCache
	logger   *log.Logger
}

func NewProfileUsecase(profiles repository.ProfileRepository, cache *MatchCache, logger *log.Logger) *Profile {
	return &Profile{profiles: profiles, cache: cache, logger: logger}
}

func (u *Profile) UpdateProviderProfile(ctx context.Context, userID uuid.UUID, upd repository.ProviderUpdate) (matching.ProviderProfile, error) {
	if userID == uuid.Nil {
		return matching.ProviderProfile{}, ErrUnauthorized
	}
	if err := validateProviderUpdate(&upd); err != nil {
		return matching.ProviderProfile{}, err
	}

	raw, err := u.profiles.UpdateProvider(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return matching.ProviderProfile{}, ErrProviderNotFound
		}
		u.logf("[Profile] update provider user=%s failed: %v", userID, err)
		return matching.ProviderProfile{}, ErrInternal
	}

	n := u.cache.InvalidatePrefix(ctx, AllMatchesPrefix)
	u.logf("[Profile] provider user=%s updated, invalidated %d cached lists", userID, n)
	return matching.NormalizeProvider(raw), nil
}

func (u *Profile) UpdateSeekerIntake(ctx context.Context, userID uuid.UUID, quiz map[string]any) (matching.SeekerProfile, error) {
	if userID == uuid.Nil {
		return matching.SeekerProfile{}, ErrUnauthorized
	}
	profile, err := matching.NormalizeSeeker(matching.RawSeeker{ID: userID, Quiz: quiz})
	if err != nil {
		return matching.SeekerProfile{}, err
	}

	if err := u.profiles.UpsertSeekerQuiz(ctx, userID, quiz); err != nil {
		u.logf("[Profile] upsert intake seeker=%s failed: %v", userID, err)
		return matching.SeekerProfile{}, ErrInternal
	}

	// the old fingerprint's entry would only expire on TTL otherwise
	n := u.cache.InvalidatePrefix(ctx, SeekerCachePrefix(userID))
	u.logf("[Profile] seeker=%s intake updated, dropped %d cached lists", userID, n)
	return profile, nil
}

func validateProviderUpdate(upd *repository.ProviderUpdate) error {
	if upd.HourlyRate != nil {
		r := *upd.HourlyRate
		if math.IsNaN(r) || r < MinHourlyRate || r > MaxHourlyRate {
			return fmt.Errorf("%w: hourly rate must be between %.0f and %.0f", ErrInvalidInput, MinHourlyRate, MaxHourlyRate)
		}
		rounded := math.Round(r*100) / 100
		upd.HourlyRate = &rounded
	}
	if upd.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*upd.Currency))
		if len(c) != 3 {
			return fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidInput)
		}
		upd.Currency = &c
	}
	for _, list := range [][]string{upd.Expertise, upd.Languages, upd.Countries} {
		for _, v := range list {
			if strings.TrimSpace(v) == "" {
				return fmt.Errorf("%w: list values must not be blank", ErrInvalidInput)
			}
		}
	}
	return nil
}

func (u *Profile) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}
