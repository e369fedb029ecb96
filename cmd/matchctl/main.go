package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"culture-match/internal/app"
	"culture-match/internal/config"
	"culture-match/internal/database/migration"
	dbpostgres "culture-match/internal/database/postgres"
	"culture-match/internal/database/seeder"
	"culture-match/internal/pkg/jwt"
	"culture-match/internal/usecase"
	"culture-match/migrations"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	seekerFlag := &cli.StringFlag{
		Name:     "seeker",
		Aliases:  []string{"s"},
		Usage:    "Seeker id, or the handle of a demo seeker",
		Required: true,
	}

	return &cli.App{
		Name:  "matchctl",
		Usage: "Operate the culture-match service from the command line",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending schema migrations",
				Action: migrateCommand,
			},
			{
				Name:   "seed",
				Usage:  "Insert or refresh the demo seekers and providers",
				Action: seedCommand,
			},
			{
				Name:   "match",
				Usage:  "Compute the ranked provider list for a seeker",
				Action: matchCommand,
				Flags: []cli.Flag{
					seekerFlag,
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of matches to return (1-50)",
						Value:   usecase.DefaultLimit,
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Skip the cache lookup and score live",
					},
				},
			},
			{
				Name:   "cache-info",
				Usage:  "Show the cache entry for a seeker's current intake",
				Action: cacheInfoCommand,
				Flags:  []cli.Flag{seekerFlag},
			},
			{
				Name:   "cache-clear",
				Usage:  "Drop every cached list for a seeker",
				Action: cacheClearCommand,
				Flags:  []cli.Flag{seekerFlag},
			},
			{
				Name:   "invalidate-all",
				Usage:  "Drop every cached match list",
				Action: invalidateAllCommand,
			},
			{
				Name:   "token",
				Usage:  "Mint an access token for local testing",
				Action: tokenCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User id, or the handle of a demo seeker",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "Token role (seeker, provider)",
						Value: jwt.RoleSeeker,
					},
				},
			},
		},
	}
}

func migrateCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pool, err := dbpostgres.Connect(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := migration.Runner{FS: migrations.FS}.Run(c.Context, pool)
	if err != nil {
		return err
	}
	for _, m := range applied {
		fmt.Fprintf(c.App.Writer, "applied V%d %s\n", m.Version, m.Name)
	}
	if len(applied) == 0 {
		fmt.Fprintln(c.App.Writer, "schema up to date")
	}
	return nil
}

func seedCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pool, err := dbpostgres.Connect(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	results, err := seeder.Runner{Seeders: seeder.Defaults()}.Run(c.Context, pool)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(c.App.Writer, "seeded %s: %d rows\n", r.Name, r.Rows)
	}
	for _, h := range seeder.DemoSeekerHandles() {
		fmt.Fprintf(c.App.Writer, "seeker %-8s %s\n", h, seeder.DemoSeekerID(h))
	}
	return nil
}

func matchCommand(c *cli.Context) error {
	seekerID, err := parseUser(c.String("seeker"))
	if err != nil {
		return err
	}
	return withContainer(c, func(ctx context.Context, ct *app.Container) error {
		start := time.Now()
		list, err := ct.Matching.FindMatches(ctx, seekerID, usecase.MatchParams{
			Limit:    c.Int("limit"),
			UseCache: !c.Bool("no-cache"),
		})
		if err != nil {
			return err
		}
		ct.Logger.Printf("[Match] seeker=%s source=%s matches=%d took=%s", seekerID, list.Source, list.TotalMatches, time.Since(start))
		return printJSON(c, list)
	})
}

func cacheInfoCommand(c *cli.Context) error {
	seekerID, err := parseUser(c.String("seeker"))
	if err != nil {
		return err
	}
	return withContainer(c, func(ctx context.Context, ct *app.Container) error {
		st, err := ct.Matching.CacheStatus(ctx, seekerID)
		if err != nil {
			return err
		}
		return printJSON(c, map[string]any{
			"cache_key":   st.Key,
			"exists":      st.Exists,
			"ttl_seconds": int64(st.TTL.Seconds()),
		})
	})
}

func cacheClearCommand(c *cli.Context) error {
	seekerID, err := parseUser(c.String("seeker"))
	if err != nil {
		return err
	}
	return withContainer(c, func(ctx context.Context, ct *app.Container) error {
		n, err := ct.Matching.ClearCache(ctx, seekerID)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "removed %d cached lists\n", n)
		return nil
	})
}

func invalidateAllCommand(c *cli.Context) error {
	return withContainer(c, func(ctx context.Context, ct *app.Container) error {
		fmt.Fprintf(c.App.Writer, "removed %d cached lists\n", ct.Matching.InvalidateAll(ctx))
		return nil
	})
}

func tokenCommand(c *cli.Context) error {
	userID, err := parseUser(c.String("user"))
	if err != nil {
		return err
	}
	role := c.String("role")
	if !jwt.ValidRole(role) {
		return fmt.Errorf("%w: %q", jwt.ErrUnknownRole, role)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	tok, err := jwt.NewHMACService(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL, app.TokenIssuer).GenerateAccessToken(userID, role)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, tok)
	return nil
}

func withContainer(c *cli.Context, fn func(ctx context.Context, ct *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ct, err := app.NewContainer(c.Context, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := ct.Close(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()
	return fn(c.Context, ct)
}

// parseUser accepts a uuid or a demo seeker handle.
func parseUser(v string) (uuid.UUID, error) {
	if id, err := uuid.Parse(v); err == nil {
		return id, nil
	}
	for _, h := range seeder.DemoSeekerHandles() {
		if h == v {
			return seeder.DemoSeekerID(h), nil
		}
	}
	return uuid.Nil, fmt.Errorf("unknown user %q: want a uuid or one of %v", v, seeder.DemoSeekerHandles())
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
