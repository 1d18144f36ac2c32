package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/config"
	"quiz-admin-service/internal/infra/bunstore"
	"quiz-admin-service/internal/infra/memory"
	pgloader "quiz-admin-service/internal/infra/postgres"
	redisinfra "quiz-admin-service/internal/infra/redis"
	"quiz-admin-service/internal/logging"
)

// stores groups the persistence ports behind the selected storage driver.
type stores struct {
	quizzes     app.QuizStore
	submissions app.SubmissionStore
	admins      app.AdminStore
	loader      memory.QuizLoader
}

// deps is everything the services need, plus the handles to release on exit.
type deps struct {
	logger   *logrus.Logger
	stores   stores
	quizRepo app.QuizRepository
	revoked  app.RevocationStore
	feed     app.FeedHub
	redis    *redis.Client
	redisHub *redisinfra.FeedHub
	closers  []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{logger: logging.New(cfg.Log.Level, cfg.Log.Format)}
	ctx = logging.NewContext(ctx, logrus.NewEntry(d.logger))

	if err := d.openStores(ctx, cfg); err != nil {
		d.Close()
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.closers = append(d.closers, func() { _ = d.redis.Close() })
		if err := d.redis.Ping(ctx).Err(); err != nil {
			d.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if d.redis != nil {
		d.quizRepo = redisinfra.NewQuizRepository(d.redis, d.stores.loader, quizTTL)
		d.revoked = redisinfra.NewRevocationStore(d.redis)
		d.redisHub = redisinfra.NewFeedHub(d.redis)
		d.feed = d.redisHub
	} else {
		d.quizRepo = memory.NewQuizRepository(d.stores.loader, quizTTL)
		d.revoked = memory.NewRevocationStore()
		d.feed = memory.NewFeedHub()
	}
	return d, nil
}

func (d *deps) openStores(ctx context.Context, cfg config.Config) error {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		d.stores = stores{quizzes: store, submissions: store, admins: store, loader: store}
		d.logger.Warn("using in-memory storage; data is lost on restart")
		return nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := openSQL(ctx, cfg)
		if err != nil {
			return err
		}
		d.closers = append(d.closers, func() { _ = db.Close() })
		if err := bunstore.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		store := bunstore.NewStore(db)
		d.stores = stores{quizzes: store, submissions: store, admins: store, loader: store}

		if cfg.Storage.Driver == config.DriverPostgres {
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return fmt.Errorf("connect pgx pool: %w", err)
			}
			d.closers = append(d.closers, pool.Close)
			d.stores.loader = pgloader.NewQuizLoader(pool)
		}
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openSQL(ctx context.Context, cfg config.Config) (*bun.DB, error) {
	dsn := cfg.Storage.SQLitePath
	if cfg.Storage.Driver == config.DriverPostgres {
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("postgres url not configured")
		}
		dsn = cfg.Postgres.URL
	}
	return bunstore.Open(ctx, cfg.Storage.Driver, dsn)
}

func (d *deps) quizService() *app.QuizService {
	return app.NewQuizService(d.stores.quizzes, d.quizRepo, d.stores.submissions, d.feed)
}
