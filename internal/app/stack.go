// Package app assembles the row store stack shared by the server and the
// command-line tools: backend, retries behind a circuit breaker, read cache
// and the mutation lock.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tileledger/internal/config"
	"tileledger/internal/infra"
	"tileledger/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	cacheEntries = 64
	lockTTL      = 30 * time.Second
)

// Stack is a ready-to-use store with its supporting infrastructure.
type Stack struct {
	Store   repository.Store
	Locker  infra.Locker
	Breaker *infra.CircuitBreaker
	redis   *redis.Client
}

// Close releases the store backend and the Redis connection, if any.
func (s *Stack) Close() {
	if err := s.Store.Close(); err != nil {
		log.Warn().Err(err).Msg("store close failed")
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}
}

// Open builds the store selected by STORE_DRIVER and makes sure its schema exists.
func Open(ctx context.Context, cfg *config.Config) (*Stack, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cbCfg := infra.DefaultCBConfig()
	cbCfg.IsSuccessful = func(err error) bool {
		return errors.Is(err, repository.ErrSchemaMismatch) || errors.Is(err, repository.ErrUnknownTable)
	}
	breaker := infra.NewCircuitBreaker(cbCfg)
	retrier := infra.NewRetrier(infra.RetryPolicy{
		Attempts:     cfg.StoreRetryAttempts,
		InitialDelay: cfg.StoreRetryDelay(),
		Multiplier:   infra.DefaultRetryPolicy().Multiplier,
	}, breaker)
	store := repository.NewResilientStore(backend, retrier)

	st := &Stack{Breaker: breaker}
	var cache infra.Cache
	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil {
			_ = backend.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		st.redis = rdb
		cache = infra.NewRedisCache(rdb, "tileledger:", cfg.CacheTTL())
		st.Locker = infra.NewRedisLocker(rdb, lockTTL)
	} else {
		cache = infra.NewLRUCache(cacheEntries, cfg.CacheTTL())
		st.Locker = infra.NewLocalLocker()
	}
	if cfg.CacheTTLSeconds > 0 {
		store = repository.NewCachedStore(store, cache)
	}
	st.Store = store

	if err := st.Store.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	log.Info().Str("driver", cfg.StoreDriver).Bool("redis", st.redis != nil).
		Dur("cache_ttl", cfg.CacheTTL()).Msg("store ready")
	return st, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return repository.NewMemoryStore(), nil
	case "sqlite", "postgres":
		db, err := infra.NewDatabase(cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", cfg.StoreDriver, err)
		}
		return repository.NewGormStore(db), nil
	case "sheets":
		if cfg.SheetID == "" {
			return nil, fmt.Errorf("SHEET_ID is required for the sheets driver")
		}
		opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
		if cfg.SheetCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.SheetCredentialsFile))
		}
		svc, err := sheets.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("sheets client: %w", err)
		}
		return repository.NewSheetsStore(svc, cfg.SheetID), nil
	}
	return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
}
