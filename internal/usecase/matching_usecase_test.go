package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"culture-match/internal/domain/matching"
	"culture-match/internal/embedding"
	"culture-match/internal/infrastructure/cache"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ CacheStore = (*cache.Redis)(nil)
	_ CacheStore = (*cache.Badger)(nil)
	_ TaskPool   = (*ants.Pool)(nil)
)

func newPool(t *testing.T) *ants.Pool {
	t.Helper()
	p, err := ants.NewPool(4)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

type harness struct {
	profiles *fakeProfiles
	store    *memStore
	cache    *MatchCache
	uc       *Matching
}

func newHarness(t *testing.T, emb matching.Embedder, pool TaskPool, opts MatchOptions) *harness {
	t.Helper()
	profiles := newFakeProfiles()
	seedProviders(profiles)
	store := newMemStore()
	mc := NewMatchCache(store, time.Hour, nil)
	if pool == nil {
		pool = newPool(t)
	}
	uc := NewMatchingUsecase(profiles, matching.NewScorer(emb), mc, pool, opts, nil)
	uc.now = func() time.Time { return fixedTime }
	return &harness{profiles: profiles, store: store, cache: mc, uc: uc}
}

func TestFindMatches_InvalidLimit(t *testing.T) {
	h := newHarness(t, nil, nil, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())

	for _, limit := range []int{0, -1, 51} {
		_, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: limit})
		assert.ErrorIs(t, err, ErrInvalidLimit, "limit %d", limit)
	}
}

func TestFindMatches_SeekerErrors(t *testing.T) {
	h := newHarness(t, nil, nil, MatchOptions{})

	_, err := h.uc.FindMatches(context.Background(), uuid.New(), MatchParams{Limit: 10})
	assert.ErrorIs(t, err, ErrSeekerNotFound)

	q := intakeQuiz()
	delete(q, "coaching_style")
	id := h.profiles.addSeeker(q)
	_, err = h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10})
	assert.ErrorIs(t, err, matching.ErrIncompleteProfile)

	h.profiles.seekerErr = errors.New("db down")
	_, err = h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestFindMatches_CandidateErrorIsInternal(t *testing.T) {
	h := newHarness(t, nil, nil, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())
	h.profiles.listErr = errors.New("timeout")

	_, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestFindMatches_LiveRanking(t *testing.T) {
	h := newHarness(t, wordEmbedder{}, nil, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())

	list, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceLive, list.Source)
	require.Len(t, list.Matches, 4)
	assert.Equal(t, 4, list.TotalMatches)

	assert.Equal(t, h.profiles.providers[0].ID, list.Matches[0].ProviderID)
	for i, m := range list.Matches {
		assert.Equal(t, i+1, m.Rank)
		require.NotNil(t, m.SubScores)
		assert.Equal(t, matching.GoalPathSemantic, m.SubScores.GoalPath)
		if i > 0 {
			assert.GreaterOrEqual(t, list.Matches[i-1].Score, m.Score)
		}
	}
}

func TestFindMatches_Deterministic(t *testing.T) {
	h := newHarness(t, wordEmbedder{}, nil, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())

	first, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFindMatches_TruncatesToLimit(t *testing.T) {
	h := newHarness(t, nil, nil, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())

	list, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 2, UseCache: true})
	require.NoError(t, err)
	assert.Len(t, list.Matches, 2)
	assert.Equal(t, 2, list.TotalMatches)

	// the cached entry keeps the full list so a larger limit can be served from it
	list, err = h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 4, UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceCache, list.Source)
	assert.Len(t, list.Matches, 4)
}

func TestFindMatches_CacheRoundTrip(t *testing.T) {
	h := newHarness(t, wordEmbedder{}, nil, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())

	live, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10, UseCache: true})
	require.NoError(t, err)
	require.Equal(t, matching.SourceLive, live.Source)
	assert.Equal(t, 1, h.store.len())

	cached, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10, UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceCache, cached.Source)
	assert.Equal(t, live.Matches, cached.Matches)
	assert.True(t, live.GeneratedAt.Equal(cached.GeneratedAt))

	bypass, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10, UseCache: false})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceLive, bypass.Source)

	st, err := h.uc.CacheStatus(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, st.Exists)
	assert.Greater(t, st.TTL, 59*time.Minute)
}

func TestFindMatches_SeekerEditMissesCache(t *testing.T) {
	h := newHarness(t, nil, nil, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())

	_, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10, UseCache: true})
	require.NoError(t, err)
	before, err := h.uc.CacheStatus(context.Background(), id)
	require.NoError(t, err)

	q := intakeQuiz()
	q["preferred_languages"] = []any{"en"}
	require.NoError(t, h.profiles.UpsertSeekerQuiz(context.Background(), id, q))

	after, err := h.uc.CacheStatus(context.Background(), id)
	require.NoError(t, err)
	assert.NotEqual(t, before.Key, after.Key)
	assert.False(t, after.Exists)

	list, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10, UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceLive, list.Source)
}

func TestProviderMutationInvalidatesAllSeekers(t *testing.T) {
	h := newHarness(t, nil, nil, MatchOptions{})
	a := h.profiles.addSeeker(intakeQuiz())
	qb := intakeQuiz()
	qb["target_countries"] = []any{"Germany"}
	b := h.profiles.addSeeker(qb)

	for _, id := range []uuid.UUID{a, b} {
		_, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10, UseCache: true})
		require.NoError(t, err)
		st, err := h.uc.CacheStatus(context.Background(), id)
		require.NoError(t, err)
		require.True(t, st.Exists)
	}

	profiles := NewProfileUsecase(h.profiles, h.cache, nil)
	rate := 140.0
	_, err := profiles.UpdateProviderProfile(context.Background(), h.profiles.providers[3].UserID, providerRate(rate))
	require.NoError(t, err)

	for _, id := range []uuid.UUID{a, b} {
		st, err := h.uc.CacheStatus(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, st.Exists)

		list, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10, UseCache: true})
		require.NoError(t, err)
		assert.Equal(t, matching.SourceLive, list.Source)
	}
}

func TestFindMatches_EmbeddingOutageFallsBack(t *testing.T) {
	client := embedding.NewClient(failingBackend{}, time.Second, nil)
	h := newHarness(t, client, nil, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())

	start := time.Now()
	list, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10, UseCache: true})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), DefaultDeadline)

	assert.Equal(t, matching.SourceFallback, list.Source)
	require.NotEmpty(t, list.Matches)
	for _, m := range list.Matches {
		assert.Equal(t, matching.FallbackScore, m.Score)
		assert.Nil(t, m.SubScores)
	}
	assert.True(t, list.Matches[0].Provider.Verified)
	assert.Equal(t, 0, h.store.len(), "fallback lists are not cached")
}

func TestFindMatches_DeadlineFallsBack(t *testing.T) {
	client := embedding.NewClient(stallingBackend{d: 3 * time.Second}, 10*time.Second, nil)
	h := newHarness(t, client, nil, MatchOptions{Deadline: 100 * time.Millisecond})
	id := h.profiles.addSeeker(intakeQuiz())

	start := time.Now()
	list, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 3})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, matching.SourceFallback, list.Source)
	assert.Len(t, list.Matches, 3)
}

func TestFindMatches_PoolRejectionFallsBack(t *testing.T) {
	h := newHarness(t, nil, rejectingPool{}, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())

	list, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceFallback, list.Source)
	assert.Len(t, list.Matches, 4)
}

func TestFindMatches_NoEmbedderStaysLive(t *testing.T) {
	h := newHarness(t, nil, nil, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())

	list, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceLive, list.Source)
	for _, m := range list.Matches {
		assert.Equal(t, matching.GoalPathLexical, m.SubScores.GoalPath)
	}
}

func TestFindMatches_EmptyPool(t *testing.T) {
	h := newHarness(t, nil, nil, MatchOptions{})
	h.profiles.providers = nil
	id := h.profiles.addSeeker(intakeQuiz())

	list, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10, UseCache: true})
	require.NoError(t, err)
	assert.Empty(t, list.Matches)
	assert.NotNil(t, list.Matches)
	assert.Equal(t, 0, h.store.len())
}

func TestFindMatches_CallerCancelled(t *testing.T) {
	h := newHarness(t, nil, nil, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.uc.FindMatches(ctx, id, MatchParams{Limit: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindMatches_CacheStoreDownDegrades(t *testing.T) {
	h := newHarness(t, nil, nil, MatchOptions{})
	id := h.profiles.addSeeker(intakeQuiz())
	h.store.err = errors.New("connection reset")

	list, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10, UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceLive, list.Source)

	st, err := h.uc.CacheStatus(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, st.Exists)
}

func TestFindMatches_BadgerStore(t *testing.T) {
	store, err := cache.OpenBadger("", nil)
	require.NoError(t, err)
	defer store.Close()

	profiles := newFakeProfiles()
	seedProviders(profiles)
	id := profiles.addSeeker(intakeQuiz())
	uc := NewMatchingUsecase(profiles, matching.NewScorer(nil), NewMatchCache(store, time.Hour, nil), newPool(t), MatchOptions{}, nil)

	live, err := uc.FindMatches(context.Background(), id, MatchParams{Limit: 5, UseCache: true})
	require.NoError(t, err)
	cached, err := uc.FindMatches(context.Background(), id, MatchParams{Limit: 5, UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceCache, cached.Source)
	assert.Equal(t, live.Matches, cached.Matches)

	n, err := uc.ClearCache(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, uc.InvalidateAll(context.Background()))
}

func TestClearCache_OnlyTouchesSeeker(t *testing.T) {
	h := newHarness(t, nil, nil, MatchOptions{})
	a := h.profiles.addSeeker(intakeQuiz())
	b := h.profiles.addSeeker(intakeQuiz())
	for _, id := range []uuid.UUID{a, b} {
		_, err := h.uc.FindMatches(context.Background(), id, MatchParams{Limit: 10, UseCache: true})
		require.NoError(t, err)
	}

	n, err := h.uc.ClearCache(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, h.store.len())

	assert.Equal(t, 1, h.uc.InvalidateAll(context.Background()))
	assert.Equal(t, 0, h.store.len())
}

func TestMatchCacheKey(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, "match:11111111-2222-3333-4444-555555555555:abc", MatchCacheKey(id, "abc"))
	assert.Equal(t, "match:11111111-2222-3333-4444-555555555555:", SeekerCachePrefix(id))
}
