package seeder

import (
	"context"
	"errors"
	"fmt"
	"log"

	"culture-match/internal/database"
)

type Result struct {
	Name string
	Rows int
}

type Runner struct {
	Seeders []Seeder
	Logger  *log.Logger
}

// Run stops at the first failing seeder; earlier seeders stay committed.
func (r Runner) Run(ctx context.Context, db database.DB) ([]Result, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	out := make([]Result, 0, len(r.Seeders))
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		n, err := s.Run(ctx, db)
		if err != nil {
			return out, fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		if r.Logger != nil {
			r.Logger.Printf("[Seed] %s: %d rows", s.Name(), n)
		}
		out = append(out, Result{Name: s.Name(), Rows: n})
	}
	return out, nil
}
