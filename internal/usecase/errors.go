package usecase

import "errors"

var (
	ErrInvalidLimit     = errors.New("limit must be between 1 and 50")
	ErrSeekerNotFound   = errors.New("seeker not found")
	ErrProviderNotFound = errors.New("provider not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInternal         = errors.New("internal error")
)
