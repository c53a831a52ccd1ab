package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"millionaire-quiz/internal/app"
	"millionaire-quiz/internal/domain"
	pgstore "millionaire-quiz/internal/infra/postgres"
	pgmigrations "millionaire-quiz/internal/infra/postgres/migrations"
	infraredis "millionaire-quiz/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestGameAgainstPostgresAndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedConfig(t, ctx, pgURL, "tiny", sampleConfig())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewConfigLoader(pool)
	if _, err := loader.LoadConfig(ctx, "missing"); !errors.Is(err, domain.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	configRepo := infraredis.NewConfigRepository(redisClient, loader, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	immediate := app.SchedulerFunc(func(_ time.Duration, fn func()) { fn() })
	service := app.NewGameService(sessionStore, configRepo, app.WithScheduler(immediate))

	session, err := service.Start(ctx, "tiny")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if n, err := redisClient.Exists(ctx, "game:session:"+session.ID(), "game:config:tiny").Result(); err != nil || n != 2 {
		t.Fatalf("expected session and config keys in redis, got n=%d err=%v", n, err)
	}

	events, cancel, err := service.Subscribe(ctx, session.ID())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if _, err := service.Apply(ctx, session.ID(), domain.Action{Type: domain.ActionAnswer, AnswerID: "a1"}); err != nil {
		t.Fatalf("answer step 1: %v", err)
	}
	for _, id := range []domain.AnswerID{"b1", "b3"} {
		if _, err := service.Apply(ctx, session.ID(), domain.Action{Type: domain.ActionToggle, AnswerID: id}); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
	}
	if _, err := service.Apply(ctx, session.ID(), domain.Action{Type: domain.ActionSubmit}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	var nav *domain.Navigation
	timeout := time.After(5 * time.Second)
	for nav == nil {
		select {
		case ev := <-events:
			if ev.Type == domain.EventNavigate {
				nav = ev.Navigation
			}
		case <-timeout:
			t.Fatalf("no navigation event")
		}
	}
	if nav.Route != domain.RouteGameOver || nav.EarnedAmount != 100 {
		t.Fatalf("expected game over with 100 earned, got %+v", nav)
	}

	service.End(ctx, session.ID())
	if n, _ := redisClient.Exists(ctx, "game:session:"+session.ID()).Result(); n != 0 {
		t.Fatalf("expected session marker removed")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "game", "POSTGRES_PASSWORD": "gamepass", "POSTGRES_DB": "gamedb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://game:gamepass@%s:%s/gamedb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedConfig(t *testing.T, ctx context.Context, dsn, id string, cfg domain.GameConfig) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	writer := pgstore.NewConfigWriter(db)
	if err := writer.Save(ctx, id, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	// upsert twice to exercise the conflict path
	if err := writer.Save(ctx, id, cfg); err != nil {
		t.Fatalf("save config again: %v", err)
	}
	ids, err := writer.IDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != id {
		t.Fatalf("expected stored ids [%s], got %v (%v)", id, ids, err)
	}
}

func sampleConfig() domain.GameConfig {
	return domain.GameConfig{
		Version:  1,
		Currency: "USD",
		Steps: []domain.Step{
			{
				ID:     "s1",
				Amount: 100,
				Question: domain.Question{
					ID:   "q1",
					Text: "What is 2 + 2?",
					Answers: []domain.Answer{
						{ID: "a1", Text: "4"},
						{ID: "a2", Text: "5"},
					},
					CorrectAnswerIDs: []domain.AnswerID{"a1"},
				},
			},
			{
				ID:     "s2",
				Amount: 200,
				Question: domain.Question{
					ID:   "q2",
					Text: "Which are even?",
					Answers: []domain.Answer{
						{ID: "b1", Text: "2"},
						{ID: "b2", Text: "4"},
						{ID: "b3", Text: "5"},
					},
					CorrectAnswerIDs: []domain.AnswerID{"b1", "b2"},
				},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
