package matching

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var ErrIncompleteProfile = errors.New("incomplete seeker profile")

// RequiredQuizFactors are the intake answers a seeker must provide before matching.
var RequiredQuizFactors = []string{
	"target_countries",
	"cultural_goals",
	"preferred_languages",
	"industry",
	"family_status",
	"previous_expat_experience",
	"timeline_urgency",
	"budget_range",
	"coaching_style",
	"specific_challenges",
}

const (
	defaultBudgetMax = 500
	defaultCurrency  = "USD"
)

// MissingQuizFactors lists the required factors absent from quiz, in declaration order.
func MissingQuizFactors(quiz map[string]any) []string {
	missing := make([]string, 0)
	for _, k := range RequiredQuizFactors {
		if _, ok := quiz[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

func NormalizeSeeker(raw RawSeeker) (SeekerProfile, error) {
	if len(raw.Quiz) == 0 {
		return SeekerProfile{}, fmt.Errorf("%w: empty intake", ErrIncompleteProfile)
	}
	if missing := MissingQuizFactors(raw.Quiz); len(missing) > 0 {
		return SeekerProfile{}, fmt.Errorf("%w: missing %s", ErrIncompleteProfile, strings.Join(missing, ", "))
	}

	q := raw.Quiz
	goals := stringList(q["cultural_goals"])
	challenges := stringList(q["specific_challenges"])

	budgetMin, budgetMax := 0.0, float64(defaultBudgetMax)
	if br, ok := q["budget_range"].(map[string]any); ok {
		if v, ok := number(br["min"]); ok {
			budgetMin = v
		}
		if v, ok := number(br["max"]); ok {
			budgetMax = v
		}
	}

	urgency := 0
	if v, ok := number(q["timeline_urgency"]); ok {
		urgency = int(v)
	}

	tz := strings.TrimSpace(raw.Timezone)
	if tz == "" {
		tz = "UTC"
	}

	return SeekerProfile{
		SeekerID:           raw.ID,
		TargetRegions:      NewSet(stringList(q["target_countries"])...),
		PreferredLanguages: NewSet(stringList(q["preferred_languages"])...),
		Goals:              goals,
		Challenges:         challenges,
		GoalsText:          joinText(goals, challenges),
		Industry:           strings.TrimSpace(stringValue(q["industry"])),
		BudgetMin:          budgetMin,
		BudgetMax:          budgetMax,
		CoachingStyle:      strings.TrimSpace(stringValue(q["coaching_style"])),
		FamilyStatus:       strings.TrimSpace(stringValue(q["family_status"])),
		TimelineUrgency:    urgency,
		PreviousExperience: boolValue(q["previous_expat_experience"]),
		Timezone:           tz,
	}, nil
}

func NormalizeProvider(raw RawProvider) ProviderProfile {
	expertise := cleanList(raw.Expertise)

	rate := 0.0
	if raw.HourlyRate != nil && finite(*raw.HourlyRate) {
		rate = *raw.HourlyRate
	}
	rating := 0.0
	if raw.Rating != nil && finite(*raw.Rating) {
		rating = *raw.Rating
	}
	sessions := raw.TotalSessions
	if sessions < 0 {
		sessions = 0
	}
	currency := strings.ToUpper(strings.TrimSpace(raw.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	return ProviderProfile{
		ProviderID:       raw.ID,
		UserID:           raw.UserID,
		Languages:        NewSet(raw.Languages...),
		RegionExperience: NewSet(raw.Countries...),
		Expertise:        expertise,
		ExpertiseText:    joinText(expertise),
		Rate:             rate,
		Currency:         currency,
		HasAvailability:  len(raw.Availability) > 0,
		Quality: QualitySignals{
			Rating:       rating,
			SessionCount: sessions,
			Verified:     raw.IsVerified,
		},
		FirstName: strings.TrimSpace(raw.FirstName),
		LastName:  strings.TrimSpace(raw.LastName),
		PhotoURL:  strings.TrimSpace(raw.PhotoURL),
		Bio:       strings.TrimSpace(raw.Bio),
	}
}

type fingerprintInput struct {
	Regions            Set      `json:"regions"`
	Languages          Set      `json:"languages"`
	Goals              []string `json:"goals"`
	Challenges         []string `json:"challenges"`
	Industry           string   `json:"industry"`
	BudgetMin          float64  `json:"budget_min"`
	BudgetMax          float64  `json:"budget_max"`
	CoachingStyle      string   `json:"coaching_style"`
	FamilyStatus       string   `json:"family_status"`
	TimelineUrgency    int      `json:"timeline_urgency"`
	PreviousExperience bool     `json:"previous_experience"`
	Timezone           string   `json:"timezone"`
}

// Fingerprint is a stable content hash of the normalized profile. Free text is
// case-folded so case-only edits keep the key. The seeker id is not part of it; cache
// keys carry the id separately.
func Fingerprint(p SeekerProfile) string {
	in := fingerprintInput{
		Regions:            nonNilSet(p.TargetRegions),
		Languages:          nonNilSet(p.PreferredLanguages),
		Goals:              lowerList(p.Goals),
		Challenges:         lowerList(p.Challenges),
		Industry:           strings.ToLower(p.Industry),
		BudgetMin:          p.BudgetMin,
		BudgetMax:          p.BudgetMax,
		CoachingStyle:      strings.ToLower(p.CoachingStyle),
		FamilyStatus:       strings.ToLower(p.FamilyStatus),
		TimelineUrgency:    p.TimelineUrgency,
		PreviousExperience: p.PreviousExperience,
		Timezone:           p.Timezone,
	}

	b, _ := json.Marshal(in)
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return cleanList([]string{t})
	case []string:
		return cleanList(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return cleanList(out)
	default:
		return []string{}
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func lowerList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}

func nonNilSet(s Set) Set {
	if s == nil {
		return Set{}
	}
	return s
}

func joinText(parts ...[]string) string {
	all := make([]string, 0)
	for _, p := range parts {
		all = append(all, p...)
	}
	return strings.Join(all, " ")
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, finite(t)
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil && finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && finite(f)
	default:
		return 0, false
	}
}

func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	default:
		return false
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
