package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"culture-match/internal/domain/matching"
	"culture-match/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultLimit         = 10
	DefaultDeadline      = 10 * time.Second
	DefaultCandidatePool = 100
)

type MatchParams struct {
	Limit    int
	UseCache bool
}

type MatchOptions struct {
	Deadline      time.Duration
	CandidatePool int
}

// TaskPool runs fn on some worker. *ants.Pool satisfies it.
type TaskPool interface {
	Submit(fn func()) error
}

type MatchingUsecase interface {
	FindMatches(ctx context.Context, seekerID uuid.UUID, params MatchParams) (matching.RankedMatchList, error)
	CacheStatus(ctx context.Context, seekerID uuid.UUID) (CacheStatus, error)
	ClearCache(ctx context.Context, seekerID uuid.UUID) (int, error)
	InvalidateAll(ctx context.Context) int
}

type Matching struct {
	profiles repository.ProfileRepository
	scorer   *matching.Scorer
	cache    *MatchCache
	pool     TaskPool
	opts     MatchOptions
	logger   *log.Logger
	now      func() time.Time
}

func NewMatchingUsecase(profiles repository.ProfileRepository, scorer *matching.Scorer, cache *MatchCache, pool TaskPool, opts MatchOptions, logger *log.Logger) *Matching {
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultDeadline
	}
	if opts.CandidatePool <= 0 {
		opts.CandidatePool = DefaultCandidatePool
	}
	if scorer == nil {
		scorer = matching.NewScorer(nil)
	}
	if pool == nil {
		pool = goroutinePool{}
	}
	return &Matching{
		profiles: profiles,
		scorer:   scorer,
		cache:    cache,
		pool:     pool,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

func (u *Matching) FindMatches(ctx context.Context, seekerID uuid.UUID, params MatchParams) (matching.RankedMatchList, error) {
	if params.Limit < 1 || params.Limit > matching.MaxResults {
		return matching.RankedMatchList{}, ErrInvalidLimit
	}

	seeker, err := u.loadSeeker(ctx, seekerID)
	if err != nil {
		return matching.RankedMatchList{}, err
	}
	key := MatchCacheKey(seekerID, matching.Fingerprint(seeker))

	if params.UseCache {
		if cached, ok := u.cache.Get(ctx, key); ok {
			u.logf("[Match] Cache HIT: %s", key)
			out := cached.Truncate(params.Limit)
			out.Source = matching.SourceCache
			return out, nil
		}
		u.logf("[Match] Cache MISS: %s", key)
	}

	raws, err := u.profiles.ListActiveCandidates(ctx, u.opts.CandidatePool)
	if err != nil {
		u.logf("[Match] list candidates failed: %v", err)
		return matching.RankedMatchList{}, ErrInternal
	}
	providers := make([]matching.ProviderProfile, 0, len(raws))
	for _, r := range raws {
		providers = append(providers, matching.NormalizeProvider(r))
	}
	if len(providers) == 0 {
		return matching.RankedMatchList{
			Matches:     []matching.MatchResult{},
			GeneratedAt: u.now().UTC(),
			Source:      matching.SourceLive,
		}, nil
	}

	scored, outcome := u.scoreAll(ctx, seeker, providers)
	if err := ctx.Err(); err != nil {
		return matching.RankedMatchList{}, err
	}

	if outcome == matching.OutcomeFallback {
		u.logf("[Match] live scoring abandoned for seeker=%s, serving fallback ranking", seekerID)
		return matching.FallbackRank(providers, params.Limit, u.now()), nil
	}

	list := matching.RankLive(scored, u.now())
	u.cache.Put(ctx, key, list.Truncate(matching.MaxResults))
	return list.Truncate(params.Limit), nil
}

// scoreAll scores every provider under one batch deadline. Any incomplete batch, or a
// batch where embeddings never succeeded, is reported as OutcomeFallback and its
// partial scores are dropped.
func (u *Matching) scoreAll(ctx context.Context, seeker matching.SeekerProfile, providers []matching.ProviderProfile) ([]matching.Scored, matching.Outcome) {
	batchCtx, cancel := context.WithTimeout(ctx, u.opts.Deadline)
	defer cancel()

	prepared := u.scorer.Prepare(batchCtx, seeker)

	results := make([]matching.Scored, len(providers))
	var (
		wg        sync.WaitGroup
		completed atomic.Int64
		rejected  atomic.Bool
	)
	wg.Add(len(providers))

	go func() {
		for i := range providers {
			err := u.pool.Submit(func() {
				defer wg.Done()
				if batchCtx.Err() != nil {
					return
				}
				p := providers[i]
				results[i] = matching.Scored{Provider: p, Breakdown: prepared.Score(batchCtx, p)}
				completed.Add(1)
			})
			if err != nil {
				rejected.Store(true)
				wg.Done()
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-batchCtx.Done():
		return nil, matching.OutcomeFallback
	}

	if rejected.Load() || batchCtx.Err() != nil || int(completed.Load()) != len(providers) {
		return nil, matching.OutcomeFallback
	}

	var semantic, degraded int
	for _, r := range results {
		switch r.Breakdown.GoalPath {
		case matching.GoalPathSemantic:
			semantic++
		case matching.GoalPathDegraded:
			degraded++
		}
	}
	if degraded > 0 && semantic == 0 {
		return nil, matching.OutcomeFallback
	}
	return results, matching.OutcomeLive
}

func (u *Matching) CacheStatus(ctx context.Context, seekerID uuid.UUID) (CacheStatus, error) {
	seeker, err := u.loadSeeker(ctx, seekerID)
	if err != nil {
		return CacheStatus{}, err
	}
	return u.cache.Status(ctx, MatchCacheKey(seekerID, matching.Fingerprint(seeker))), nil
}

func (u *Matching) ClearCache(ctx context.Context, seekerID uuid.UUID) (int, error) {
	if seekerID == uuid.Nil {
		return 0, ErrUnauthorized
	}
	n := u.cache.InvalidatePrefix(ctx, SeekerCachePrefix(seekerID))
	u.logf("[Match] cleared %d cached lists for seeker=%s", n, seekerID)
	return n, nil
}

func (u *Matching) InvalidateAll(ctx context.Context) int {
	n := u.cache.InvalidatePrefix(ctx, AllMatchesPrefix)
	u.logf("[Match] invalidated %d cached lists", n)
	return n
}

func (u *Matching) loadSeeker(ctx context.Context, seekerID uuid.UUID) (matching.SeekerProfile, error) {
	if seekerID == uuid.Nil {
		return matching.SeekerProfile{}, ErrUnauthorized
	}
	raw, err := u.profiles.GetSeeker(ctx, seekerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return matching.SeekerProfile{}, ErrSeekerNotFound
		}
		u.logf("[Match] load seeker=%s failed: %v", seekerID, err)
		return matching.SeekerProfile{}, ErrInternal
	}
	return matching.NormalizeSeeker(raw)
}

func (u *Matching) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}

type goroutinePool struct{}

func (goroutinePool) Submit(fn func()) error {
	go fn()
	return nil
}
