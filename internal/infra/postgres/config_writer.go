package postgres

import (
	"context"
	"fmt"
	"time"

	"millionaire-quiz/internal/domain"

	"github.com/uptrace/bun"
)

type gameConfigRow struct {
	bun.BaseModel `bun:"table:game_configs"`

	ID        string            `bun:"id,pk"`
	Data      domain.GameConfig `bun:"data,type:jsonb,notnull"`
	UpdatedAt time.Time         `bun:"updated_at,notnull"`
}

// ConfigWriter stores game configurations through bun.
type ConfigWriter struct {
	db    *bun.DB
	clock func() time.Time
}

func NewConfigWriter(db *bun.DB) *ConfigWriter {
	return &ConfigWriter{db: db, clock: time.Now}
}

// Save validates cfg and upserts it under configID.
func (w *ConfigWriter) Save(ctx context.Context, configID string, cfg domain.GameConfig) error {
	if configID == "" {
		return fmt.Errorf("%w: empty config id", domain.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	row := &gameConfigRow{ID: configID, Data: cfg, UpdatedAt: w.clock().UTC()}
	_, err := w.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save game config %s: %w", configID, err)
	}
	return nil
}

// IDs lists stored configuration ids in order.
func (w *ConfigWriter) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := w.db.NewSelect().
		Model((*gameConfigRow)(nil)).
		Column("id").
		Order("id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("list game configs: %w", err)
	}
	return ids, nil
}
