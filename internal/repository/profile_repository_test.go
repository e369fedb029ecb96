package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"testing"

	"culture-match/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject(t *testing.T) {
	m, err := decodeObject(nil)
	require.NoError(t, err)
	assert.Empty(t, m)
	assert.NotNil(t, m)

	m, err = decodeObject([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, m)

	m, err = decodeObject([]byte(`{"monday":["09:00-12:00"]}`))
	require.NoError(t, err)
	assert.Len(t, m, 1)

	_, err = decodeObject([]byte(`[1,2]`))
	assert.Error(t, err)
}

// stubRows scans each row's values into the destinations in column order.
type stubRows struct {
	rows [][]any
	pos  int
}

func (r *stubRows) Close()     {}
func (r *stubRows) Err() error { return nil }

func (r *stubRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, v := range row {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(v))
	}
	return nil
}

type stubDB struct {
	database.DB
	rows     [][]any
	queryErr error
}

func (d *stubDB) Query(context.Context, string, ...any) (database.Rows, error) {
	if d.queryErr != nil {
		return nil, d.queryErr
	}
	return &stubRows{rows: d.rows}, nil
}

func providerRow(id uuid.UUID, availability string) []any {
	first := "Coach"
	rate, rating := 120.0, 4.5
	return []any{
		id, uuid.New(), &first, nil, nil, nil,
		[]string{"relocation"}, []string{"en"}, []string{"Spain"}, &rate, nil, []byte(availability),
		&rating, 10, true,
	}
}

func TestListActiveCandidates_SkipsMalformedRow(t *testing.T) {
	good1, bad, good2 := uuid.New(), uuid.New(), uuid.New()
	db := &stubDB{rows: [][]any{
		providerRow(good1, `{"monday":["09:00-12:00"]}`),
		providerRow(bad, `{"monday":`),
		providerRow(good2, ``),
	}}
	var logs bytes.Buffer
	repo := NewPostgresProfileRepository(db, log.New(&logs, "", 0))

	got, err := repo.ListActiveCandidates(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, good1, got[0].ID)
	assert.Equal(t, good2, got[1].ID)
	assert.Equal(t, "Coach", got[0].FirstName)
	assert.Len(t, got[0].Availability, 1)
	assert.Empty(t, got[1].Availability)
	assert.Contains(t, logs.String(), bad.String())
}

func TestListActiveCandidates_QueryError(t *testing.T) {
	boom := errors.New("connection reset")
	repo := NewPostgresProfileRepository(&stubDB{queryErr: boom}, nil)

	_, err := repo.ListActiveCandidates(context.Background(), 10)
	assert.ErrorIs(t, err, boom)
}
