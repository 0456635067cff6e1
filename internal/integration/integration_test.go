package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizblox-service/internal/app"
	"quizblox-service/internal/domain"
	"quizblox-service/internal/infra/memory"
	infrapg "quizblox-service/internal/infra/postgres"
	infraredis "quizblox-service/internal/infra/redis"
	pgmigrations "quizblox-service/internal/infra/postgres/migrations"
)

func TestQuizLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	users := infrapg.NewUserStore(pool)
	history := infrapg.NewHistoryStore(pool)
	auth := app.NewAuthService(users)

	user, err := auth.SignUp(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected a generated user ID")
	}
	if _, err := auth.Login(ctx, "alice", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	bank := memory.NewQuestionBank(memory.NewStaticBankLoader(samplePool()), time.Minute)
	service := app.NewQuizService(sessions, bank, nil, nil, history)

	const sid = "integration-session"
	view, err := service.StartQuiz(ctx, sid, app.StartQuizRequest{
		Source:        app.SourceLocal,
		QuestionCount: 2,
		TimerDuration: 20,
	})
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if view.TotalQuestions != 2 {
		t.Fatalf("total questions = %d, want 2", view.TotalQuestions)
	}

	record, complete, err := service.SubmitQuizAnswer(ctx, sid, "A", false)
	if err != nil {
		t.Fatalf("submit first answer: %v", err)
	}
	if !record.IsCorrect || complete {
		t.Fatalf("first answer: correct=%v complete=%v", record.IsCorrect, complete)
	}
	record, complete, err = service.SubmitQuizAnswer(ctx, sid, "B", false)
	if err != nil {
		t.Fatalf("submit second answer: %v", err)
	}
	if record.IsCorrect || !complete {
		t.Fatalf("second answer: correct=%v complete=%v", record.IsCorrect, complete)
	}

	result, err := service.FinishQuiz(ctx, sid, user.ID)
	if err != nil {
		t.Fatalf("finish quiz: %v", err)
	}
	if result.Score != 1 || result.TotalQuestions != 2 || result.Percentage != 50 {
		t.Fatalf("unexpected result: %+v", result)
	}

	// The session is gone once results are delivered.
	if _, ok, err := sessions.Quiz(ctx, sid); err != nil || ok {
		t.Fatalf("expected session cleared, ok=%v err=%v", ok, err)
	}

	records, err := history.History(ctx, user.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 1 || records[0].Score != 1 || records[0].TotalQuestions != 2 {
		t.Fatalf("unexpected history: %+v", records)
	}

	entries, err := history.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("top scores: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "alice" || entries[0].TotalScore != 1 {
		t.Fatalf("unexpected leaderboard: %+v", entries)
	}
}

func samplePool() []domain.Question {
	questions := make([]domain.Question, 3)
	for i, text := range []string{"One?", "Two?", "Three?"} {
		questions[i] = domain.Question{
			ID:   fmt.Sprintf("q%d", i+1),
			Text: text,
			Options: map[string]string{
				"A": "right", "B": "wrong-b", "C": "wrong-c", "D": "wrong-d",
			},
			CorrectLabel: "A",
		}
	}
	return questions
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
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
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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
