package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Set is a sorted, de-duplicated list of lower-cased values.
type Set []string

func NewSet(values ...string) Set {
	seen := make(map[string]struct{}, len(values))
	out := make(Set, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s Set) Contains(v string) bool {
	i := sort.SearchStrings(s, v)
	return i < len(s) && s[i] == v
}

type SeekerProfile struct {
	SeekerID           uuid.UUID `json:"seeker_id"`
	TargetRegions      Set       `json:"target_regions"`
	PreferredLanguages Set       `json:"preferred_languages"`
	Goals              []string  `json:"goals"`
	Challenges         []string  `json:"challenges"`
	GoalsText          string    `json:"goals_text"`
	Industry           string    `json:"industry"`
	BudgetMin          float64   `json:"budget_min"`
	BudgetMax          float64   `json:"budget_max"`

	CoachingStyle      string `json:"coaching_style"`
	FamilyStatus       string `json:"family_status"`
	TimelineUrgency    int    `json:"timeline_urgency"`
	PreviousExperience bool   `json:"previous_experience"`
	Timezone           string `json:"timezone"`
}

type QualitySignals struct {
	Rating       float64 `json:"rating"`
	SessionCount int     `json:"session_count"`
	Verified     bool    `json:"verified"`
}

type ProviderProfile struct {
	ProviderID       uuid.UUID
	UserID           uuid.UUID
	Languages        Set
	RegionExperience Set
	Expertise        []string
	ExpertiseText    string
	Rate             float64
	Currency         string
	HasAvailability  bool
	Quality          QualitySignals

	FirstName string
	LastName  string
	PhotoURL  string
	Bio       string
}

// RawSeeker is a seeker row as read from the store. Quiz holds the intake answers
// decoded from JSON, so values are float64, string, bool, []any or map[string]any.
type RawSeeker struct {
	ID       uuid.UUID
	Timezone string
	Quiz     map[string]any
}

type RawProvider struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	FirstName     string
	LastName      string
	PhotoURL      string
	Bio           string
	Expertise     []string
	Languages     []string
	Countries     []string
	HourlyRate    *float64
	Currency      string
	Availability  map[string]any
	Rating        *float64
	TotalSessions int
	IsVerified    bool
}

type GoalPath string

const (
	GoalPathSemantic GoalPath = "semantic"
	GoalPathLexical  GoalPath = "lexical"
	GoalPathDegraded GoalPath = "degraded"
)

type ScoreBreakdown struct {
	Language     float64  `json:"language"`
	Region       float64  `json:"region"`
	Goal         float64  `json:"goal"`
	Budget       float64  `json:"budget"`
	Availability float64  `json:"availability"`
	GoalPath     GoalPath `json:"goal_path"`
	Total        float64  `json:"total"`
}

type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

type ProviderSummary struct {
	UserID       uuid.UUID `json:"user_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhotoURL     string    `json:"photo_url"`
	Bio          string    `json:"bio"`
	Expertise    []string  `json:"expertise"`
	Languages    Set       `json:"languages"`
	Regions      Set       `json:"regions"`
	Rate         float64   `json:"rate"`
	Currency     string    `json:"currency"`
	Rating       float64   `json:"rating"`
	SessionCount int       `json:"session_count"`
	Verified     bool      `json:"verified"`
}

type MatchResult struct {
	ProviderID uuid.UUID       `json:"provider_id"`
	Score      float64         `json:"score"`
	SubScores  *ScoreBreakdown `json:"sub_scores,omitempty"`
	Rank       int             `json:"rank"`
	Provider   ProviderSummary `json:"provider"`
}

type RankedMatchList struct {
	Matches      []MatchResult `json:"matches"`
	TotalMatches int           `json:"total_matches"`
	GeneratedAt  time.Time     `json:"generated_at"`
	Source       Source        `json:"source"`
}

// Truncate returns a copy holding at most limit matches.
func (l RankedMatchList) Truncate(limit int) RankedMatchList {
	if limit < 0 {
		limit = 0
	}
	out := l
	if len(l.Matches) > limit {
		out.Matches = append([]MatchResult(nil), l.Matches[:limit]...)
	} else {
		out.Matches = append([]MatchResult(nil), l.Matches...)
	}
	out.TotalMatches = len(out.Matches)
	return out
}

func summarize(p ProviderProfile) ProviderSummary {
	return ProviderSummary{
		UserID:       p.UserID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		PhotoURL:     p.PhotoURL,
		Bio:          p.Bio,
		Expertise:    append([]string{}, p.Expertise...),
		Languages:    p.Languages,
		Regions:      p.RegionExperience,
		Rate:         p.Rate,
		Currency:     p.Currency,
		Rating:       p.Quality.Rating,
		SessionCount: p.Quality.SessionCount,
		Verified:     p.Quality.Verified,
	}
}
