package seeder

import (
	"context"
	"encoding/json"
	"fmt"

	"culture-match/internal/database"
)

type demoSeeker struct {
	Handle   string
	Timezone string
	Quiz     map[string]any
}

var demoSeekers = []demoSeeker{
	{
		Handle:   "maria",
		Timezone: "Europe/Madrid",
		Quiz: map[string]any{
			"target_countries":          []string{"Spain"},
			"cultural_goals":            []string{"workplace communication", "career transition"},
			"preferred_languages":       []string{"en", "es"},
			"industry":                  "software",
			"family_status":             "single",
			"previous_expat_experience": false,
			"timeline_urgency":          4,
			"budget_range":              map[string]any{"min": 50, "max": 150},
			"coaching_style":            "direct",
			"specific_challenges":       []string{"small talk", "networking"},
		},
	},
	{
		Handle:   "ken",
		Timezone: "Asia/Tokyo",
		Quiz: map[string]any{
			"target_countries":          []string{"Germany"},
			"cultural_goals":            []string{"german work culture", "building friendships"},
			"preferred_languages":       []string{"en"},
			"industry":                  "automotive",
			"family_status":             "married with children",
			"previous_expat_experience": true,
			"timeline_urgency":          2,
			"budget_range":              map[string]any{"min": 80, "max": 200},
			"coaching_style":            "supportive",
			"specific_challenges":       []string{"relocation planning"},
		},
	},
}

// DemoSeekerHandles lists the handles SeekersSeeder creates, for DemoSeekerID.
func DemoSeekerHandles() []string {
	out := make([]string, 0, len(demoSeekers))
	for _, s := range demoSeekers {
		out = append(out, s.Handle)
	}
	return out
}

type SeekersSeeder struct{}

func (SeekersSeeder) Name() string { return "seekers" }

func (SeekersSeeder) Run(ctx context.Context, db database.DB) (int, error) {
	if err := requireColumns(ctx, db, "seekers", "user_id", "timezone", "quiz_data"); err != nil {
		return 0, err
	}

	for _, s := range demoSeekers {
		quiz, err := json.Marshal(s.Quiz)
		if err != nil {
			return 0, err
		}
		_, err = db.Exec(ctx,
			`INSERT INTO seekers (user_id, timezone, quiz_data) VALUES ($1,$2,$3)
			 ON CONFLICT (user_id) DO UPDATE SET quiz_data = EXCLUDED.quiz_data, timezone = EXCLUDED.timezone, updated_at = now()`,
			DemoSeekerID(s.Handle), s.Timezone, quiz,
		)
		if err != nil {
			return 0, fmt.Errorf("seeker %s: %w", s.Handle, err)
		}
	}
	return len(demoSeekers), nil
}
