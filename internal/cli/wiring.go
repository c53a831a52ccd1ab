package cli

import (
	"context"
	"time"

	"millionaire-quiz/internal/app"
	"millionaire-quiz/internal/config"
	"millionaire-quiz/internal/infra/file"
	"millionaire-quiz/internal/infra/memory"
	pgstore "millionaire-quiz/internal/infra/postgres"
	infraredis "millionaire-quiz/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// backends holds the stores picked from configuration and their cleanup.
type backends struct {
	sessions app.SessionRepository
	configs  app.ConfigRepository
	closers  []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// newBackends chooses Postgres over the file loader for configurations and
// Redis over process memory for caching and session markers.
func newBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}

	var loader memory.ConfigLoader = file.NewLoader(cfg.Game.DataDir)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		loader = pgstore.NewConfigLoader(pool)
		log.Info().Msg("game configs from postgres")
	} else {
		log.Info().Str("dir", cfg.Game.DataDir).Msg("game configs from files")
	}

	configTTL := config.TTLDuration(cfg.Game.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		sessionTTL := config.TTLDuration(cfg.Redis.TTL, sessionIdle(cfg))
		b.configs = infraredis.NewConfigRepository(client, loader, configTTL)
		b.sessions = infraredis.NewSessionStore(client, sessionTTL)
		return b, nil
	}

	b.configs = memory.NewConfigRepository(loader, configTTL)
	b.sessions = memory.NewSessionStore()
	return b, nil
}

// sessionIdle is how long a session may go unused before it is evicted.
func sessionIdle(cfg config.Config) time.Duration {
	return config.TTLDuration(cfg.Game.SessionIdle, 30*time.Minute)
}

func defaultConfigID(cfg config.Config) string {
	if cfg.Game.ConfigID != "" {
		return cfg.Game.ConfigID
	}
	return file.DefaultConfigID
}
