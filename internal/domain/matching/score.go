package matching

import (
	"context"
	"math"
	"strings"
)

const (
	WeightLanguage     = 0.25
	WeightRegion       = 0.20
	WeightGoal         = 0.30
	WeightBudget       = 0.15
	WeightAvailability = 0.10

	// BudgetTolerancePercent is how far above the seeker's maximum a rate may be and still earn partial credit.
	BudgetTolerancePercent = 20
)

// Embedder turns text into a vector. Implementations enforce their own deadline.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Scorer struct {
	embedder Embedder
}

// NewScorer returns a scorer. A nil embedder scores goal alignment lexically.
func NewScorer(embedder Embedder) *Scorer {
	return &Scorer{embedder: embedder}
}

// PreparedSeeker carries the per-request work that does not depend on the provider.
type PreparedSeeker struct {
	Profile SeekerProfile

	scorer    *Scorer
	vector    []float32
	embedErr  error
	goalsText string
}

// Prepare embeds the seeker's goals once so a batch of providers shares the call.
func (s *Scorer) Prepare(ctx context.Context, seeker SeekerProfile) PreparedSeeker {
	p := PreparedSeeker{Profile: seeker, scorer: s, goalsText: strings.TrimSpace(seeker.GoalsText)}
	if s == nil || s.embedder == nil || p.goalsText == "" {
		return p
	}
	p.vector, p.embedErr = s.embedder.Embed(ctx, p.goalsText)
	return p
}

// EmbeddingFailed reports whether the seeker-side embedding could not be produced.
func (p PreparedSeeker) EmbeddingFailed() bool {
	return p.embedErr != nil
}

func (s *Scorer) Score(ctx context.Context, seeker SeekerProfile, provider ProviderProfile) ScoreBreakdown {
	return s.Prepare(ctx, seeker).Score(ctx, provider)
}

func (p PreparedSeeker) Score(ctx context.Context, provider ProviderProfile) ScoreBreakdown {
	b := ScoreBreakdown{
		Language:     Jaccard(p.Profile.PreferredLanguages, provider.Languages),
		Region:       Jaccard(p.Profile.TargetRegions, provider.RegionExperience),
		Budget:       BudgetScore(p.Profile.BudgetMax, provider.Rate),
		Availability: AvailabilityScore(provider.HasAvailability),
	}
	b.Goal, b.GoalPath = p.goalScore(ctx, strings.TrimSpace(provider.ExpertiseText))

	total := 100 * (WeightLanguage*b.Language +
		WeightRegion*b.Region +
		WeightGoal*b.Goal +
		WeightBudget*b.Budget +
		WeightAvailability*b.Availability)
	b.Total = clamp(total, 0, 100)
	return b
}

func (p PreparedSeeker) goalScore(ctx context.Context, expertise string) (float64, GoalPath) {
	if p.goalsText == "" || expertise == "" {
		return 0, GoalPathLexical
	}
	if p.scorer == nil || p.scorer.embedder == nil {
		return LexicalOverlap(p.goalsText, expertise), GoalPathLexical
	}
	if p.embedErr != nil || len(p.vector) == 0 {
		return LexicalOverlap(p.goalsText, expertise), GoalPathDegraded
	}

	vec, err := p.scorer.embedder.Embed(ctx, expertise)
	if err != nil {
		return LexicalOverlap(p.goalsText, expertise), GoalPathDegraded
	}
	cos, ok := CosineSimilarity(p.vector, vec)
	if !ok {
		return LexicalOverlap(p.goalsText, expertise), GoalPathDegraded
	}
	return clamp((cos+1)/2, 0, 1), GoalPathSemantic
}

// Jaccard is |a∩b| / |a∪b|, or 0 when the union is empty.
func Jaccard(a, b Set) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inA := make(map[string]struct{}, len(a))
	for _, v := range a {
		inA[v] = struct{}{}
	}
	union := len(inA)
	inter := 0
	seenB := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, dup := seenB[v]; dup {
			continue
		}
		seenB[v] = struct{}{}
		if _, ok := inA[v]; ok {
			inter++
			continue
		}
		union++
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// CosineSimilarity returns the cosine of the angle between a and b. ok is false for
// empty, mismatched or zero-norm vectors.
func CosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(cos) {
		return 0, false
	}
	return clamp(cos, -1, 1), true
}

// BudgetScore compares in whole cents so decimal rates sit exactly on the boundaries.
func BudgetScore(budgetMax, rate float64) float64 {
	if rate <= 0 {
		// rate not set
		return 0.5
	}
	if budgetMax <= 0 {
		return 0
	}
	rateCents, maxCents := cents(rate), cents(budgetMax)
	if rateCents <= maxCents {
		return 1
	}
	// both sides are whole numbers well inside float64's exact range
	if rateCents*100 <= maxCents*(100+BudgetTolerancePercent) {
		return 0.5
	}
	return 0
}

func cents(v float64) float64 {
	return math.Round(v * 100)
}

func AvailabilityScore(hasAvailability bool) float64 {
	if hasAvailability {
		return 1
	}
	return 0.5
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
