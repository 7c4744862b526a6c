package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"cyberhunt/internal/app"
	"cyberhunt/internal/domain"
	"cyberhunt/internal/infra/postgres"
	pgmigrations "cyberhunt/internal/infra/postgres/migrations"
	infraredis "cyberhunt/internal/infra/redis"
	"cyberhunt/internal/metrics"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

func TestHuntEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedClues(t, ctx, pgURL, sampleClues())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := postgres.NewClueLoader(pool, 12)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	repo := infraredis.NewQuestionRepository(redisClient, loader, "postgres", 5*time.Minute)
	service := app.NewGameService(repo, zap.NewNop(), metrics.New())
	service.LoadQuestions(ctx)

	if got := service.Snapshot().QuestionCount(); got != 3 {
		t.Fatalf("expected 3 clues from postgres, got %d", got)
	}
	if n, err := redisClient.Exists(ctx, "cyberhunt:questions:postgres").Result(); err != nil || n != 1 {
		t.Fatalf("expected clues cached in redis, got %d %v", n, err)
	}

	alice, err := service.RegisterTeam("Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	bob, err := service.RegisterTeam("Bob")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := service.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := service.SubmitAnswer(bob.ID, "Phishing")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Correct || res.Awarded != domain.QuestionPoints {
		t.Fatalf("expected correct answer worth 5, got %+v", res)
	}
	if _, err := service.UseHint(bob.ID); err != nil {
		t.Fatalf("hint: %v", err)
	}
	res, err = service.SubmitAnswer(bob.ID, "ransomware")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Awarded != domain.HintedPoints || res.TotalScore != 7 {
		t.Fatalf("expected hinted answer, got %+v", res)
	}

	lb := service.Leaderboard()
	if len(lb.Entries) != 2 || lb.Entries[0].TeamID != bob.ID || lb.Entries[1].TeamID != alice.ID {
		t.Fatalf("expected bob leading, got %+v", lb.Entries)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "hunt", "POSTGRES_PASSWORD": "huntpass", "POSTGRES_DB": "cyberhunt"},
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
	dsn := fmt.Sprintf("postgres://hunt:huntpass@%s:%s/cyberhunt?sslmode=disable", host, port.Port())
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

// seedClues migrates the schema and loads records through the import path.
// Postgres may still be finishing its init scripts when the port opens, so
// migration is retried briefly.
func seedClues(t *testing.T, ctx context.Context, dsn string, records []domain.QuestionRecord) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	var err error
	for i := 0; i < 20; i++ {
		if err = migrator.Init(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := postgres.ReplaceClues(ctx, db, records); err != nil {
		t.Fatalf("seed clues: %v", err)
	}
}

func sampleClues() []domain.QuestionRecord {
	return []domain.QuestionRecord{
		{ID: 1, Title: "What lures you with fake emails?", AnswerRegex: `^phish(ing)?$`, Hint: "think bait"},
		{ID: 2, Title: "Malware that holds files hostage", AnswerRegex: `ransom\s*ware`, Hint: "pay up"},
		{ID: 2, Title: "Duplicate ids still load in order", AnswerRegex: `^firewall$`},
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
