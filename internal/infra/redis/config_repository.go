package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"millionaire-quiz/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ConfigLoader fetches game configurations from a backing store (Postgres, files).
type ConfigLoader interface {
	LoadConfig(ctx context.Context, configID string) (domain.GameConfig, error)
}

// ConfigRepository caches game configurations in Redis and falls back to a
// loader on cache miss. Configs are stored as JSON:
//
//	SET game:config:{configID} {json} EX {ttl}
type ConfigRepository struct {
	client *redis.Client
	loader ConfigLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewConfigRepository(client *redis.Client, loader ConfigLoader, ttl time.Duration) *ConfigRepository {
	return &ConfigRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ConfigRepository) GetConfig(ctx context.Context, configID string) (domain.GameConfig, error) {
	if cfg, ok := r.cached(ctx, configID); ok {
		return cfg, nil
	}

	result, err, _ := r.sf.Do(configID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cfg, ok := r.cached(ctx, configID); ok {
			return cfg, nil
		}

		cfg, err := r.loader.LoadConfig(ctx, configID)
		if err != nil {
			return domain.GameConfig{}, err
		}

		raw, err := json.Marshal(cfg)
		if err != nil {
			return domain.GameConfig{}, err
		}
		// best-effort fill; a Redis outage only costs another load
		if err := r.client.Set(ctx, r.key(configID), raw, r.ttlWithJitter()).Err(); err != nil {
			log.Warn().Err(err).Str("config", configID).Msg("cache game config")
		}
		return cfg, nil
	})
	if err != nil {
		return domain.GameConfig{}, err
	}
	return result.(domain.GameConfig), nil
}

// Invalidate removes the cached copy of configID.
func (r *ConfigRepository) Invalidate(ctx context.Context, configID string) error {
	return r.client.Del(ctx, r.key(configID)).Err()
}

func (r *ConfigRepository) cached(ctx context.Context, configID string) (domain.GameConfig, bool) {
	raw, err := r.client.Get(ctx, r.key(configID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("config", configID).Msg("read cached game config")
		}
		return domain.GameConfig{}, false
	}
	var cfg domain.GameConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		log.Warn().Err(err).Str("config", configID).Msg("decode cached game config")
		return domain.GameConfig{}, false
	}
	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Str("config", configID).Msg("cached game config is invalid")
		return domain.GameConfig{}, false
	}
	return cfg, true
}

func (r *ConfigRepository) key(configID string) string {
	return "game:config:" + configID
}

func (r *ConfigRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
