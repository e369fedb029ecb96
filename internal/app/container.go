package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"culture-match/internal/config"
	"culture-match/internal/database"
	dbpostgres "culture-match/internal/database/postgres"
	"culture-match/internal/domain/matching"
	"culture-match/internal/embedding"
	"culture-match/internal/infrastructure/cache"
	"culture-match/internal/pkg/jwt"
	"culture-match/internal/repository"
	"culture-match/internal/usecase"

	"github.com/panjf2000/ants/v2"
)

// TokenIssuer is the iss claim on every access token.
const TokenIssuer = "culture-match"

var errDatabaseNotConfigured = errors.New("database not configured: DB_HOST and DB_NAME are required")

type cacheBackend interface {
	usecase.CacheStore
	Ping(ctx context.Context) error
	Close() error
}

type Container struct {
	Config config.Config
	Logger *log.Logger

	DB       database.DB
	Cache    cacheBackend
	Pool     *ants.Pool
	JWT      jwt.Service
	Profiles repository.ProfileRepository

	Matching *usecase.Matching
	Profile  *usecase.Profile
}

func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	c := &Container{Config: cfg, Logger: logger}

	if !cfg.Database.Enabled() {
		return nil, errDatabaseNotConfigured
	}
	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	c.DB = db
	c.Profiles = repository.NewPostgresProfileRepository(db, logger)

	store, err := openCache(cfg.Cache, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Cache = store

	client, err := embedding.New(ctx, embedding.Options{
		Provider: cfg.Embedding.Provider,
		BaseURL:  cfg.Embedding.BaseURL,
		APIKey:   cfg.Embedding.APIKey,
		Model:    cfg.Embedding.Model,
		Timeout:  cfg.Embedding.Timeout,
	}, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	var embedder matching.Embedder
	if client != nil {
		embedder = client
	} else {
		logger.Printf("[Match] no embedding provider configured, goal scoring is lexical")
	}

	pool, err := ants.NewPool(cfg.Matching.Workers, ants.WithPanicHandler(func(p any) {
		logger.Printf("[Match] scoring task panicked: %v", p)
	}))
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("create scoring pool: %w", err)
	}
	c.Pool = pool

	c.JWT = jwt.NewHMACService(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL, TokenIssuer)

	matchCache := usecase.NewMatchCache(store, cfg.Matching.CacheTTL, logger)

	c.Matching = usecase.NewMatchingUsecase(c.Profiles, matching.NewScorer(embedder), matchCache, pool, usecase.MatchOptions{
		Deadline:      cfg.Matching.Deadline,
		CandidatePool: cfg.Matching.CandidatePool,
	}, logger)
	c.Profile = usecase.NewProfileUsecase(c.Profiles, matchCache, logger)

	return c, nil
}

func openCache(cfg config.CacheConfig, logger *log.Logger) (cacheBackend, error) {
	switch cfg.Driver {
	case config.CacheDriverRedis:
		return cache.NewRedis(cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger), nil
	case config.CacheDriverBadger:
		b, err := cache.OpenBadger(cfg.BadgerDir, logger)
		if err != nil {
			return nil, err
		}
		if err := b.StartGC(cfg.GCSchedule); err != nil {
			_ = b.Close()
			return nil, err
		}
		return b, nil
	default:
		logger.Printf("[Cache] disabled, every match request is computed live")
		return nil, nil
	}
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Pool != nil {
		c.Pool.Release()
	}
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
