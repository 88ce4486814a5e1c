// Package app assembles the server from its components in dependency
// order: store, room catalog, directory, translation chain, fan-out, bus,
// history, HTTP surface.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"crosstalk/internal/api"
	"crosstalk/internal/bus"
	"crosstalk/internal/config"
	"crosstalk/internal/database"
	"crosstalk/internal/directory"
	"crosstalk/internal/fanout"
	"crosstalk/internal/history"
	"crosstalk/internal/room"
	"crosstalk/internal/translate"
	dbconfig "crosstalk/pkg/database"
	"crosstalk/pkg/interfaces"
)

// Application owns every long-lived component and their shutdown order.
type Application struct {
	cfg    *config.Config
	store  *database.Manager
	pool   *translate.Pool
	redis  *redis.Client
	server *api.Server
}

// NewApplication initializes all components. On any failure everything
// already initialized is released before returning.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dbCfg := dbconfig.DefaultConfig()
	dbCfg.DatabasePath = cfg.Database.Path

	store, err := database.NewManager(dbCfg, cfg.Translate.FallbackLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	rooms := room.NewManager(store)
	if err := rooms.LoadRooms(context.Background()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	dir := directory.New()

	// Translation chain, inside out: engine, optional redis cache, metrics
	// recording, worker pool. Sessions only ever see the pool.
	var translator interfaces.Translator = translate.NewHTTPTranslator(cfg.Translate.EngineURL)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			// The cache is an optimization; a dead redis must not stop the
			// chat server.
			log.Warn().Str("module", "app").Str("addr", cfg.Redis.Addr).Err(err).Msg("redis unreachable, translation cache disabled")
			_ = redisClient.Close()
			redisClient = nil
		} else {
			translator = translate.NewCached(translator, redisClient, cfg.Redis.CacheTTL)
			log.Info().Str("module", "app").Str("addr", cfg.Redis.Addr).Msg("translation cache enabled")
		}
	}

	translator = translate.NewInstrumented(translator, store)
	pool := translate.NewPool(translator, cfg.Translate.Workers, cfg.Translate.QueueSize)

	coordinator := fanout.NewCoordinator(pool, store, dir)
	b := bus.New(dir)
	replayer := history.NewReplayer(store, coordinator, cfg.Translate.HistoryLimit)

	server := api.NewServer(cfg, store, rooms, dir, coordinator, b, replayer)

	return &Application{
		cfg:    cfg,
		store:  store,
		pool:   pool,
		redis:  redisClient,
		server: server,
	}, nil
}

// Start runs the HTTP server and blocks until it stops.
func (a *Application) Start() error {
	log.Info().
		Str("module", "app").
		Int("workers", a.cfg.Translate.Workers).
		Int("history_limit", a.cfg.Translate.HistoryLimit).
		Str("fallback_language", a.cfg.Translate.FallbackLanguage).
		Msg("starting")
	return a.server.Start()
}

// Shutdown stops components in reverse dependency order: HTTP first so no
// new sessions arrive, then the pool, then the store so pending writes
// flush.
func (a *Application) Shutdown(ctx context.Context) error {
	log.Info().Str("module", "app").Msg("shutting down")

	if err := a.server.Shutdown(ctx); err != nil {
		log.Warn().Str("module", "app").Err(err).Msg("http shutdown incomplete")
	}

	a.pool.Close()

	if a.redis != nil {
		_ = a.redis.Close()
	}

	if err := a.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}

	log.Info().Str("module", "app").Msg("shutdown complete")
	return nil
}
