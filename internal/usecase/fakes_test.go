package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"culture-match/internal/domain/matching"
	"culture-match/internal/repository"

	"github.com/google/uuid"
)

type fakeProfiles struct {
	mu        sync.Mutex
	seekers   map[uuid.UUID]matching.RawSeeker
	providers []matching.RawProvider
	listErr   error
	seekerErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{seekers: map[uuid.UUID]matching.RawSeeker{}}
}

func (f *fakeProfiles) ListActiveCandidates(_ context.Context, limit int) ([]matching.RawProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := append([]matching.RawProvider(nil), f.providers...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProfiles) GetSeeker(_ context.Context, id uuid.UUID) (matching.RawSeeker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seekerErr != nil {
		return matching.RawSeeker{}, f.seekerErr
	}
	s, ok := f.seekers[id]
	if !ok {
		return matching.RawSeeker{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeProfiles) UpdateProvider(_ context.Context, userID uuid.UUID, upd repository.ProviderUpdate) (matching.RawProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.providers {
		if f.providers[i].UserID != userID {
			continue
		}
		if upd.HourlyRate != nil {
			r := *upd.HourlyRate
			f.providers[i].HourlyRate = &r
		}
		if upd.Expertise != nil {
			f.providers[i].Expertise = upd.Expertise
		}
		if upd.Bio != nil {
			f.providers[i].Bio = *upd.Bio
		}
		return f.providers[i], nil
	}
	return matching.RawProvider{}, repository.ErrNotFound
}

func (f *fakeProfiles) UpsertSeekerQuiz(_ context.Context, id uuid.UUID, quiz map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.seekers[id]
	s.ID = id
	s.Quiz = quiz
	f.seekers[id] = s
	return nil
}

func (f *fakeProfiles) addSeeker(quiz map[string]any) uuid.UUID {
	id := uuid.New()
	f.seekers[id] = matching.RawSeeker{ID: id, Timezone: "UTC", Quiz: quiz}
	return id
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

type memStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	err     error
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]memEntry{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	e, ok := m.entries[key]
	if !ok || (!e.expiresAt.IsZero() && time.Now().After(e.expiresAt)) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	e := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return m.err
}

func (m *memStore) DeleteByPrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) TTL(_ context.Context, key string) (time.Duration, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, false, m.err
	}
	e, ok := m.entries[key]
	if !ok {
		return 0, false, nil
	}
	return time.Until(e.expiresAt), true, nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// wordEmbedder maps text to a small bag-of-words vector so related texts are close.
type wordEmbedder struct{}

var embedVocab = []string{"work", "culture", "career", "family", "relocation", "language", "networking"}

func (wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(embedVocab)+1)
	vec[len(embedVocab)] = 0.1
	lower := strings.ToLower(text)
	for i, w := range embedVocab {
		if strings.Contains(lower, w) {
			vec[i] = 1
		}
	}
	return vec, nil
}

type failingBackend struct{}

func (failingBackend) EmbedText(context.Context, string) ([]float32, error) {
	return nil, errors.New("connection refused")
}

type stallingBackend struct{ d time.Duration }

func (s stallingBackend) EmbedText(context.Context, string) ([]float32, error) {
	time.Sleep(s.d)
	return []float32{1}, nil
}

type rejectingPool struct{}

func (rejectingPool) Submit(func()) error { return errors.New("pool overloaded") }

var fixedTime = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func intakeQuiz() map[string]any {
	return map[string]any{
		"target_countries":          []any{"Spain"},
		"cultural_goals":            []any{"work culture", "career growth"},
		"preferred_languages":       []any{"en", "es"},
		"industry":                  "software",
		"family_status":             "single",
		"previous_expat_experience": false,
		"timeline_urgency":          float64(3),
		"budget_range":              map[string]any{"min": float64(50), "max": float64(150)},
		"coaching_style":            "direct",
		"specific_challenges":       []any{"networking"},
	}
}

func rawProvider(langs, countries, expertise []string, rate, rating float64, sessions int, verified bool) matching.RawProvider {
	return matching.RawProvider{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		FirstName:     "Coach",
		Expertise:     expertise,
		Languages:     langs,
		Countries:     countries,
		HourlyRate:    &rate,
		Currency:      "USD",
		Availability:  map[string]any{"monday": []any{"09:00-12:00"}},
		Rating:        &rating,
		TotalSessions: sessions,
		IsVerified:    verified,
	}
}

func seedProviders(f *fakeProfiles) {
	f.providers = []matching.RawProvider{
		rawProvider([]string{"en", "es"}, []string{"Spain"}, []string{"spanish work culture"}, 150, 4.8, 120, true),
		rawProvider([]string{"de"}, []string{"Germany"}, []string{"relocation"}, 500, 4.5, 300, true),
		rawProvider([]string{"en"}, []string{"Spain", "Portugal"}, []string{"career networking"}, 90, 4.1, 20, false),
		rawProvider([]string{"fr"}, []string{"France"}, []string{"family relocation"}, 60, 3.9, 5, false),
	}
}
