package matching

import (
	"sort"
	"time"
)

// FallbackScore is the neutral score carried by every fallback entry.
const FallbackScore = 50.0

// FallbackRank orders providers by quality signals alone. It never fails; an empty
// pool or a non-positive limit yields an empty list.
func FallbackRank(providers []ProviderProfile, limit int, now time.Time) RankedMatchList {
	out := RankedMatchList{
		Matches:     []MatchResult{},
		GeneratedAt: now.UTC(),
		Source:      SourceFallback,
	}
	if len(providers) == 0 || limit <= 0 {
		return out
	}

	sorted := append([]ProviderProfile(nil), providers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Quality, sorted[j].Quality
		if a.Verified != b.Verified {
			return a.Verified
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.SessionCount != b.SessionCount {
			return a.SessionCount > b.SessionCount
		}
		return sorted[i].ProviderID.String() < sorted[j].ProviderID.String()
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	for i, p := range sorted {
		out.Matches = append(out.Matches, MatchResult{
			ProviderID: p.ProviderID,
			Score:      FallbackScore,
			Rank:       i + 1,
			Provider:   summarize(p),
		})
	}
	out.TotalMatches = len(out.Matches)
	return out
}
