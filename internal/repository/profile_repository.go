package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"culture-match/internal/database"
	"culture-match/internal/domain/matching"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = errors.New("not found")

	errMalformedAvailability = errors.New("malformed availability")
)

type ProviderUpdate struct {
	FirstName    *string
	LastName     *string
	PhotoURL     *string
	Bio          *string
	Expertise    []string
	Languages    []string
	Countries    []string
	HourlyRate   *float64
	Currency     *string
	Availability map[string]any
	IsActive     *bool
}

type ProfileRepository interface {
	ListActiveCandidates(ctx context.Context, limit int) ([]matching.RawProvider, error)
	GetSeeker(ctx context.Context, seekerID uuid.UUID) (matching.RawSeeker, error)
	UpdateProvider(ctx context.Context, userID uuid.UUID, upd ProviderUpdate) (matching.RawProvider, error)
	UpsertSeekerQuiz(ctx context.Context, seekerID uuid.UUID, quiz map[string]any) error
}

type PostgresProfileRepository struct {
	db     database.DB
	logger *log.Logger
}

func NewPostgresProfileRepository(db database.DB, logger *log.Logger) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db, logger: logger}
}

const providerColumns = `id, user_id, first_name, last_name, photo_url, bio,
	expertise, languages, countries, hourly_rate::float8, currency, availability,
	rating::float8, total_sessions, is_verified`

func (r *PostgresProfileRepository) ListActiveCandidates(ctx context.Context, limit int) ([]matching.RawProvider, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+providerColumns+`
		 FROM providers
		 WHERE is_active
		 ORDER BY rating DESC NULLS LAST, total_sessions DESC, id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.RawProvider, 0, limit)
	for rows.Next() {
		p, err := scanProvider(rows)
		if errors.Is(err, errMalformedAvailability) {
			// one bad row must not take matching down for every seeker
			r.logf("[Profile] skipping provider id=%s: %v", p.ID, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresProfileRepository) GetSeeker(ctx context.Context, seekerID uuid.UUID) (matching.RawSeeker, error) {
	row := r.db.QueryRow(ctx,
		`SELECT user_id, COALESCE(timezone, 'UTC'), quiz_data FROM seekers WHERE user_id = $1`,
		seekerID,
	)

	var (
		s    matching.RawSeeker
		quiz []byte
	)
	if err := row.Scan(&s.ID, &s.Timezone, &quiz); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return matching.RawSeeker{}, ErrNotFound
		}
		return matching.RawSeeker{}, err
	}
	q, err := decodeObject(quiz)
	if err != nil {
		return matching.RawSeeker{}, fmt.Errorf("decode quiz_data: %w", err)
	}
	s.Quiz = q
	return s, nil
}

// UpdateProvider applies the non-nil fields of upd to the provider owned by userID.
func (r *PostgresProfileRepository) UpdateProvider(ctx context.Context, userID uuid.UUID, upd ProviderUpdate) (matching.RawProvider, error) {
	var availability []byte
	if upd.Availability != nil {
		b, err := json.Marshal(upd.Availability)
		if err != nil {
			return matching.RawProvider{}, err
		}
		availability = b
	}

	row := r.db.QueryRow(ctx,
		`UPDATE providers SET
			first_name   = COALESCE($2, first_name),
			last_name    = COALESCE($3, last_name),
			photo_url    = COALESCE($4, photo_url),
			bio          = COALESCE($5, bio),
			expertise    = COALESCE($6, expertise),
			languages    = COALESCE($7, languages),
			countries    = COALESCE($8, countries),
			hourly_rate  = COALESCE($9, hourly_rate),
			currency     = COALESCE($10, currency),
			availability = COALESCE($11, availability),
			is_active    = COALESCE($12, is_active),
			updated_at   = now()
		 WHERE user_id = $1
		 RETURNING `+providerColumns,
		userID,
		upd.FirstName, upd.LastName, upd.PhotoURL, upd.Bio,
		upd.Expertise, upd.Languages, upd.Countries,
		upd.HourlyRate, upd.Currency, availability, upd.IsActive,
	)
	p, err := scanProvider(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return matching.RawProvider{}, ErrNotFound
		}
		return matching.RawProvider{}, err
	}
	return p, nil
}

func (r *PostgresProfileRepository) UpsertSeekerQuiz(ctx context.Context, seekerID uuid.UUID, quiz map[string]any) error {
	b, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO seekers (user_id, quiz_data) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET quiz_data = EXCLUDED.quiz_data, updated_at = now()`,
		seekerID, b,
	)
	return err
}

func scanProvider(row database.Row) (matching.RawProvider, error) {
	var (
		p            matching.RawProvider
		firstName    *string
		lastName     *string
		photoURL     *string
		bio          *string
		currency     *string
		availability []byte
	)
	if err := row.Scan(
		&p.ID, &p.UserID, &firstName, &lastName, &photoURL, &bio,
		&p.Expertise, &p.Languages, &p.Countries, &p.HourlyRate, &currency, &availability,
		&p.Rating, &p.TotalSessions, &p.IsVerified,
	); err != nil {
		return matching.RawProvider{}, err
	}
	p.FirstName = deref(firstName)
	p.LastName = deref(lastName)
	p.PhotoURL = deref(photoURL)
	p.Bio = deref(bio)
	p.Currency = deref(currency)

	a, err := decodeObject(availability)
	if err != nil {
		return matching.RawProvider{ID: p.ID}, fmt.Errorf("%w: %w", errMalformedAvailability, err)
	}
	p.Availability = a
	return p, nil
}

// decodeObject treats NULL and JSON null as an empty object.
func decodeObject(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *PostgresProfileRepository) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
