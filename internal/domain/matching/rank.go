package matching

import (
	"math"
	"sort"
	"time"
)

// MaxResults is the largest list a single request may ask for.
const MaxResults = 50

// Scored pairs a provider with its breakdown.
type Scored struct {
	Provider  ProviderProfile
	Breakdown ScoreBreakdown
}

// Outcome is the orchestrator's single decision about which ranking a request gets.
type Outcome int

const (
	OutcomeLive Outcome = iota
	OutcomeFallback
)

func (o Outcome) Source() Source {
	if o == OutcomeFallback {
		return SourceFallback
	}
	return SourceLive
}

// Less orders by score desc, rating desc, session count desc, then provider id.
func Less(a, b MatchResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Provider.Rating != b.Provider.Rating {
		return a.Provider.Rating > b.Provider.Rating
	}
	if a.Provider.SessionCount != b.Provider.SessionCount {
		return a.Provider.SessionCount > b.Provider.SessionCount
	}
	return a.ProviderID.String() < b.ProviderID.String()
}

// RankLive turns scored pairs into a ranked list regardless of input order.
func RankLive(scored []Scored, now time.Time) RankedMatchList {
	results := make([]MatchResult, 0, len(scored))
	for _, s := range scored {
		b := s.Breakdown
		b.Total = Round2(b.Total)
		results = append(results, MatchResult{
			ProviderID: s.Provider.ProviderID,
			Score:      b.Total,
			SubScores:  &b,
			Provider:   summarize(s.Provider),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return Less(results[i], results[j]) })
	AssignRanks(results)

	return RankedMatchList{
		Matches:      results,
		TotalMatches: len(results),
		GeneratedAt:  now.UTC(),
		Source:       SourceLive,
	}
}

// AssignRanks numbers results from 1 in slice order.
func AssignRanks(results []MatchResult) {
	for i := range results {
		results[i].Rank = i + 1
	}
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
