package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/auth"
	"quiz-admin-service/internal/config"
	"quiz-admin-service/internal/domain"
	"quiz-admin-service/internal/infra/bunstore"
	pgloader "quiz-admin-service/internal/infra/postgres"
	infraredis "quiz-admin-service/internal/infra/redis"
)

func TestSubmitAndAnalyticsEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db, err := bunstore.Open(ctx, config.DriverPostgres, pgURL)
	if err != nil {
		t.Fatalf("open bun: %v", err)
	}
	defer db.Close()
	if err := bunstore.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := bunstore.NewStore(db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	loader := pgloader.NewQuizLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizRepo := infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute)
	hub := infraredis.NewFeedHub(redisClient)
	go func() { _ = hub.Run(ctx) }()
	select {
	case <-hub.Ready():
	case <-time.After(10 * time.Second):
		t.Fatalf("feed hub never subscribed")
	}

	issuer := auth.NewIssuer("integration-secret", "quiz-admin-service", time.Hour, 24*time.Hour)
	accounts := app.NewAuthService(store, infraredis.NewRevocationStore(redisClient), issuer)
	quizzes := app.NewQuizService(store, quizRepo, store, hub)

	reg, err := accounts.Register(ctx, app.RegisterRequest{
		Username: "integration", Email: "it@example.com", Password: "password123", Password2: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	session, err := accounts.Authenticate(ctx, reg.Tokens.Access)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	created, err := quizzes.CreateQuiz(ctx, session, domain.QuizDraft{
		Title: "Integration quiz",
		Questions: []domain.QuestionDraft{
			{
				Text: "What is 2 + 2?",
				Type: domain.QuestionMultipleChoice,
				Choices: []domain.ChoiceDraft{
					{Text: "3"},
					{Text: "4", IsCorrect: true},
					{Text: "5"},
				},
			},
			{Text: "The sky is green", Type: domain.QuestionTrueFalse, CorrectTextAnswer: "false"},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	// pgx and bun must read the same tree.
	viaPgx, err := loader.LoadQuiz(ctx, created.ID)
	if err != nil {
		t.Fatalf("pgx load: %v", err)
	}
	viaBun, err := store.LoadQuiz(ctx, created.ID)
	if err != nil {
		t.Fatalf("bun load: %v", err)
	}
	if len(viaPgx.Questions) != 2 || len(viaBun.Questions) != 2 {
		t.Fatalf("unexpected question counts pgx=%d bun=%d", len(viaPgx.Questions), len(viaBun.Questions))
	}
	for i := range viaPgx.Questions {
		a, b := viaPgx.Questions[i], viaBun.Questions[i]
		if a.ID != b.ID || a.Type != b.Type || len(a.Choices) != len(b.Choices) {
			t.Fatalf("loaders disagree on question %d: %+v vs %+v", i, a, b)
		}
	}

	events, stopWatching, err := quizzes.Watch(ctx, session, created.ID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stopWatching()

	mcq := viaPgx.Questions[0]
	tf := viaPgx.Questions[1]
	right, _ := mcq.CorrectChoice()
	tfRight, _ := tf.CorrectChoice()
	drafts := []domain.SubmissionDraft{
		{TakerName: "all", Answers: []domain.Answer{
			{QuestionID: mcq.ID, SelectedChoiceID: right.ID},
			{QuestionID: tf.ID, SelectedChoiceID: tfRight.ID},
		}},
		{TakerName: "half", Answers: []domain.Answer{{QuestionID: mcq.ID, SelectedChoiceID: right.ID}}},
		{TakerName: "none"},
	}
	for _, d := range drafts {
		if _, err := quizzes.Submit(ctx, created.ID, d); err != nil {
			t.Fatalf("submit %s: %v", d.TakerName, err)
		}
	}

	for i := 0; i < len(drafts); i++ {
		select {
		case <-events:
		case <-time.After(10 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	report, err := quizzes.Analytics(ctx, session, created.ID)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	// percentages 100, 50, 0
	if report.TotalSubmissions != 3 || report.AveragePercentage != 50 || report.PassRate != 33 {
		t.Fatalf("unexpected analytics %+v", report)
	}
	if report.HighestScore != 2 || report.LowestScore != 0 {
		t.Fatalf("unexpected extremes %+v", report)
	}
	if report.QuestionAnalytics[0].Accuracy != 67 || report.QuestionAnalytics[1].Accuracy != 33 {
		t.Fatalf("unexpected question accuracy %+v", report.QuestionAnalytics)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container := startContainer(t, ctx, req)
	host, port := endpoint(t, ctx, container, "5432/tcp")
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port)
	return dsn, func() {
		_ = container.Terminate(context.Background())
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container := startContainer(t, ctx, req)
	host, port := endpoint(t, ctx, container, "6379/tcp")
	return fmt.Sprintf("redis://%s:%s", host, port), func() {
		_ = container.Terminate(context.Background())
	}
}

func startContainer(t *testing.T, ctx context.Context, req tc.ContainerRequest) tc.Container {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", req.Image, err)
	}
	return container
}

func endpoint(t *testing.T, ctx context.Context, container tc.Container, port nat.Port) (string, string) {
	t.Helper()
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return host, mapped.Port()
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
