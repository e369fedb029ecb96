package seeder

import (
	"context"

	"culture-match/internal/database"
)

// Seeder upserts one set of demo rows and reports how many it wrote.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) (int, error)
}
