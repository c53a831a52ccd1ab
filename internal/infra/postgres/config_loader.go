package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"millionaire-quiz/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ConfigLoader loads game configuration JSONB from Postgres.
type ConfigLoader struct {
	pool *pgxpool.Pool
}

func NewConfigLoader(pool *pgxpool.Pool) *ConfigLoader {
	return &ConfigLoader{pool: pool}
}

func (l *ConfigLoader) LoadConfig(ctx context.Context, configID string) (domain.GameConfig, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM game_configs WHERE id=$1`, configID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GameConfig{}, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, configID)
		}
		return domain.GameConfig{}, fmt.Errorf("load game config: %w", err)
	}
	var cfg domain.GameConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return domain.GameConfig{}, fmt.Errorf("unmarshal game config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return domain.GameConfig{}, fmt.Errorf("game config %s: %w", configID, err)
	}
	return cfg, nil
}
