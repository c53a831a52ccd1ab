package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"millionaire-quiz/internal/domain"

	"golang.org/x/sync/singleflight"
)

// ConfigLoader fetches game configurations from a backing store (Postgres, files).
type ConfigLoader interface {
	LoadConfig(ctx context.Context, configID string) (domain.GameConfig, error)
}

// ConfigRepository caches game configurations with TTL to avoid repeated loads.
type ConfigRepository struct {
	loader ConfigLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedConfig
}

type cachedConfig struct {
	config    domain.GameConfig
	expiresAt time.Time
}

func NewConfigRepository(loader ConfigLoader, ttl time.Duration) *ConfigRepository {
	return &ConfigRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedConfig),
	}
}

func (r *ConfigRepository) GetConfig(ctx context.Context, configID string) (domain.GameConfig, error) {
	if cfg, ok := r.cached(configID); ok {
		return cfg, nil
	}

	result, err, _ := r.sf.Do(configID, func() (interface{}, error) {
		if cfg, ok := r.cached(configID); ok {
			return cfg, nil
		}

		cfg, err := r.loader.LoadConfig(ctx, configID)
		if err != nil {
			return domain.GameConfig{}, err
		}

		r.mu.Lock()
		r.cache[configID] = cachedConfig{
			config:    cfg,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return cfg, nil
	})
	if err != nil {
		return domain.GameConfig{}, err
	}
	return result.(domain.GameConfig), nil
}

func (r *ConfigRepository) cached(configID string) (domain.GameConfig, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[configID]; ok && entry.expiresAt.After(now) {
		return entry.config, true
	}
	return domain.GameConfig{}, false
}

func (r *ConfigRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticConfigLoader is a loader backed by an in-memory map (tests, demos).
type StaticConfigLoader struct {
	configs map[string]domain.GameConfig
}

func NewStaticConfigLoader(configs map[string]domain.GameConfig) *StaticConfigLoader {
	return &StaticConfigLoader{configs: configs}
}

func (l *StaticConfigLoader) LoadConfig(_ context.Context, configID string) (domain.GameConfig, error) {
	if cfg, ok := l.configs[configID]; ok {
		return cfg, nil
	}
	return domain.GameConfig{}, domain.ErrConfigNotFound
}
