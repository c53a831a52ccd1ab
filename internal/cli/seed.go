package cli

import (
	"context"

	"millionaire-quiz/internal/config"
	"millionaire-quiz/internal/infra/file"
	pgstore "millionaire-quiz/internal/infra/postgres"
	infraredis "millionaire-quiz/internal/infra/redis"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewSeedCmd stores a game configuration in Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var (
		id   string
		path string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate a JSON game config and upsert it into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg, id, path)
		},
	}
	cmd.Flags().StringVar(&id, "id", file.DefaultConfigID, "config id to store under")
	cmd.Flags().StringVar(&path, "file", "", "JSON config file (bundled ladder when empty)")
	return cmd
}

func runSeed(ctx context.Context, cfg config.Config, id, path string) error {
	game := file.Default()
	if path != "" {
		var err error
		if game, err = file.ReadConfig(path); err != nil {
			return err
		}
	}

	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := migrateDB(ctx, db); err != nil {
		return err
	}

	writer := pgstore.NewConfigWriter(db)
	if err := writer.Save(ctx, id, game); err != nil {
		return err
	}
	ids, err := writer.IDs(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("config", id).Int("steps", len(game.Steps)).Strs("stored", ids).Msg("game config seeded")

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := invalidateCached(ctx, client, id); err != nil {
			return err
		}
	}
	return nil
}

// invalidateCached drops the Redis copy of a reseeded config so servers
// load the new version on next use.
func invalidateCached(ctx context.Context, client *redis.Client, id string) error {
	if err := infraredis.NewConfigRepository(client, nil, 0).Invalidate(ctx, id); err != nil {
		return err
	}
	log.Info().Str("config", id).Msg("cached game config invalidated")
	return nil
}
