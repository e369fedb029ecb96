package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"culture-match/internal/database"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

// requireColumns fails with every column of table that the current schema lacks.
func requireColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	rows, err := db.Query(ctx,
		`SELECT c FROM unnest($2::text[]) AS c
		 WHERE c NOT IN (
			SELECT column_name FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1
		 )`,
		table, columns,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		missing = append(missing, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s lacks %s, run migrations first", ErrSchemaMismatch, table, strings.Join(missing, ", "))
	}
	return nil
}
