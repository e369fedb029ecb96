package seeder

import (
	"context"
	"encoding/json"
	"fmt"

	"culture-match/internal/database"
)

type demoProvider struct {
	Handle    string
	FirstName string
	LastName  string
	Bio       string
	Expertise []string
	Languages []string
	Countries []string
	Rate      float64
	Rating    float64
	Sessions  int
	Verified  bool
	Slots     map[string][]string
}

var demoProviders = []demoProvider{
	{
		Handle: "lucia", FirstName: "Lucía", LastName: "Fernández",
		Bio:       "Former HR lead helping newcomers settle into Spanish workplaces.",
		Expertise: []string{"workplace communication", "spanish business etiquette", "career transition"},
		Languages: []string{"en", "es"}, Countries: []string{"Spain", "Mexico"},
		Rate: 120, Rating: 4.8, Sessions: 140, Verified: true,
		Slots: map[string][]string{"monday": {"09:00-12:00"}, "thursday": {"14:00-18:00"}},
	},
	{
		Handle: "jonas", FirstName: "Jonas", LastName: "Becker",
		Bio:       "Intercultural trainer for engineers moving to Germany.",
		Expertise: []string{"german work culture", "relocation planning", "building friendships"},
		Languages: []string{"de", "en"}, Countries: []string{"Germany", "Austria"},
		Rate: 95, Rating: 4.6, Sessions: 88, Verified: true,
		Slots: map[string][]string{"tuesday": {"08:00-11:00"}},
	},
	{
		Handle: "aiko", FirstName: "Aiko", LastName: "Tanaka",
		Bio:       "Coach for families relocating to Japan.",
		Expertise: []string{"family relocation", "japanese etiquette", "language immersion"},
		Languages: []string{"ja", "en"}, Countries: []string{"Japan"},
		Rate: 180, Rating: 4.9, Sessions: 210, Verified: false,
	},
	{
		Handle: "mehdi", FirstName: "Mehdi", LastName: "Haddad",
		Bio:       "Helps professionals network and find community in France.",
		Expertise: []string{"networking", "french workplace norms", "small talk"},
		Languages: []string{"fr", "ar", "en"}, Countries: []string{"France", "Belgium"},
		Rate: 60, Rating: 4.2, Sessions: 35, Verified: false,
		Slots: map[string][]string{"saturday": {"10:00-13:00"}},
	},
}

type ProvidersSeeder struct{}

func (ProvidersSeeder) Name() string { return "providers" }

func (ProvidersSeeder) Run(ctx context.Context, db database.DB) (int, error) {
	if err := requireColumns(ctx, db, "providers",
		"id", "user_id", "expertise", "languages", "countries", "hourly_rate", "availability", "rating", "is_active",
	); err != nil {
		return 0, err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, p := range demoProviders {
		slots := p.Slots
		if slots == nil {
			slots = map[string][]string{}
		}
		availability, err := json.Marshal(slots)
		if err != nil {
			return 0, err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO providers (id, user_id, first_name, last_name, bio, expertise, languages, countries,
				hourly_rate, currency, availability, rating, total_sessions, is_verified, is_active)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'USD',$10,$11,$12,$13,true)
			 ON CONFLICT (id) DO UPDATE SET
				expertise = EXCLUDED.expertise,
				languages = EXCLUDED.languages,
				countries = EXCLUDED.countries,
				hourly_rate = EXCLUDED.hourly_rate,
				availability = EXCLUDED.availability,
				rating = EXCLUDED.rating,
				total_sessions = EXCLUDED.total_sessions,
				is_verified = EXCLUDED.is_verified,
				updated_at = now()`,
			demoID("provider:"+p.Handle),
			DemoProviderUserID(p.Handle),
			p.FirstName, p.LastName, p.Bio,
			p.Expertise, p.Languages, p.Countries,
			p.Rate, availability, p.Rating, p.Sessions, p.Verified,
		)
		if err != nil {
			return 0, fmt.Errorf("provider %s: %w", p.Handle, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(demoProviders), nil
}
