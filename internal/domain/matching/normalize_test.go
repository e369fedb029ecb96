package matching

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeQuiz() map[string]any {
	return map[string]any{
		"target_countries":          []any{"Germany", "Netherlands"},
		"cultural_goals":            []any{"workplace communication", "building friendships"},
		"preferred_languages":       []any{"English", "Spanish"},
		"industry":                  "software",
		"family_status":             "single",
		"previous_expat_experience": false,
		"timeline_urgency":          float64(3),
		"budget_range":              map[string]any{"min": float64(50), "max": float64(150)},
		"coaching_style":            "direct",
		"specific_challenges":       []any{"small talk"},
	}
}

func TestNormalizeSeeker_Complete(t *testing.T) {
	id := uuid.New()
	p, err := NormalizeSeeker(RawSeeker{ID: id, Timezone: "Europe/Berlin", Quiz: completeQuiz()})
	require.NoError(t, err)

	assert.Equal(t, id, p.SeekerID)
	assert.Equal(t, Set{"germany", "netherlands"}, p.TargetRegions)
	assert.Equal(t, Set{"english", "spanish"}, p.PreferredLanguages)
	assert.Equal(t, []string{"workplace communication", "building friendships"}, p.Goals)
	assert.Equal(t, "workplace communication building friendships small talk", p.GoalsText)
	assert.Equal(t, 50.0, p.BudgetMin)
	assert.Equal(t, 150.0, p.BudgetMax)
	assert.Equal(t, 3, p.TimelineUrgency)
	assert.Equal(t, "Europe/Berlin", p.Timezone)
}

func TestNormalizeSeeker_MissingFactors(t *testing.T) {
	q := completeQuiz()
	delete(q, "budget_range")
	delete(q, "industry")

	_, err := NormalizeSeeker(RawSeeker{ID: uuid.New(), Quiz: q})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompleteProfile))
	assert.Contains(t, err.Error(), "industry")
	assert.Contains(t, err.Error(), "budget_range")
}

func TestNormalizeSeeker_EmptyIntake(t *testing.T) {
	_, err := NormalizeSeeker(RawSeeker{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrIncompleteProfile)
}

func TestNormalizeSeeker_Defaults(t *testing.T) {
	q := completeQuiz()
	q["budget_range"] = map[string]any{}
	q["preferred_languages"] = "English"
	q["target_countries"] = []any{"Spain", 42, "  ", "spain"}

	p, err := NormalizeSeeker(RawSeeker{ID: uuid.New(), Quiz: q})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.BudgetMin)
	assert.Equal(t, 500.0, p.BudgetMax)
	assert.Equal(t, Set{"english"}, p.PreferredLanguages)
	assert.Equal(t, Set{"spain"}, p.TargetRegions)
	assert.Equal(t, "UTC", p.Timezone)
}

func TestFingerprint_StableAcrossCosmeticEdits(t *testing.T) {
	a, err := NormalizeSeeker(RawSeeker{ID: uuid.New(), Quiz: completeQuiz()})
	require.NoError(t, err)

	q := completeQuiz()
	q["preferred_languages"] = []any{"spanish", " ENGLISH ", "English"}
	q["target_countries"] = []any{"Netherlands", "germany"}
	q["cultural_goals"] = []any{"workplace   communication", "building friendships"}
	b, err := NormalizeSeeker(RawSeeker{ID: uuid.New(), Quiz: q})
	require.NoError(t, err)

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(a), 64)
}

func TestFingerprint_IgnoresCaseInFreeText(t *testing.T) {
	a, err := NormalizeSeeker(RawSeeker{ID: uuid.New(), Quiz: completeQuiz()})
	require.NoError(t, err)

	q := completeQuiz()
	for _, key := range []string{"cultural_goals", "specific_challenges"} {
		var upper []any
		for _, v := range stringList(q[key]) {
			upper = append(upper, strings.ToUpper(v))
		}
		q[key] = upper
	}
	q["industry"] = strings.ToUpper(stringValue(q["industry"]))
	q["coaching_style"] = strings.ToUpper(stringValue(q["coaching_style"]))
	b, err := NormalizeSeeker(RawSeeker{ID: a.SeekerID, Quiz: q})
	require.NoError(t, err)

	assert.NotEqual(t, a.Goals, b.Goals)
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_ChangesOnEdit(t *testing.T) {
	a, err := NormalizeSeeker(RawSeeker{ID: uuid.New(), Quiz: completeQuiz()})
	require.NoError(t, err)

	edits := map[string]any{
		"preferred_languages": []any{"English"},
		"cultural_goals":      []any{"career growth"},
		"budget_range":        map[string]any{"min": float64(50), "max": float64(200)},
		"industry":            "finance",
	}
	for key, value := range edits {
		q := completeQuiz()
		q[key] = value
		b, err := NormalizeSeeker(RawSeeker{ID: a.SeekerID, Quiz: q})
		require.NoError(t, err)
		assert.NotEqual(t, Fingerprint(a), Fingerprint(b), "edit to %s", key)
	}
}

func TestNormalizeProvider(t *testing.T) {
	rating := 4.7
	p := NormalizeProvider(RawProvider{
		ID:            uuid.New(),
		Expertise:     []string{" Relocation ", "", "Intercultural   training"},
		Languages:     []string{"EN", "es", "en"},
		Countries:     []string{"Spain"},
		Currency:      "eur",
		Availability:  map[string]any{"monday": []any{"09:00-12:00"}},
		Rating:        &rating,
		TotalSessions: -3,
	})

	assert.Equal(t, []string{"Relocation", "Intercultural training"}, p.Expertise)
	assert.Equal(t, "Relocation Intercultural training", p.ExpertiseText)
	assert.Equal(t, Set{"en", "es"}, p.Languages)
	assert.Equal(t, 0.0, p.Rate)
	assert.Equal(t, "EUR", p.Currency)
	assert.True(t, p.HasAvailability)
	assert.Equal(t, 4.7, p.Quality.Rating)
	assert.Equal(t, 0, p.Quality.SessionCount)

	empty := NormalizeProvider(RawProvider{ID: uuid.New()})
	assert.Equal(t, "USD", empty.Currency)
	assert.False(t, empty.HasAvailability)
	assert.NotNil(t, empty.Languages)
}
