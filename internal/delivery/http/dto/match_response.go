package dto

import (
	"time"

	"culture-match/internal/domain/matching"
)

type MatchRequest struct {
	Limit    *int  `json:"limit"`
	UseCache *bool `json:"use_cache"`
}

type MatchListResponse struct {
	Matches      []matching.MatchResult `json:"matches"`
	TotalMatches int                    `json:"total_matches"`
	GeneratedAt  time.Time              `json:"generated_at"`
	Source       matching.Source        `json:"source"`
	Cached       bool                   `json:"cached"`
}

func NewMatchListResponse(l matching.RankedMatchList) MatchListResponse {
	matches := l.Matches
	if matches == nil {
		matches = []matching.MatchResult{}
	}
	return MatchListResponse{
		Matches:      matches,
		TotalMatches: l.TotalMatches,
		GeneratedAt:  l.GeneratedAt,
		Source:       l.Source,
		Cached:       l.Source == matching.SourceCache,
	}
}

type CacheInfoResponse struct {
	CacheKey   string `json:"cache_key"`
	Exists     bool   `json:"exists"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

type CacheClearResponse struct {
	Removed int `json:"removed"`
}
