package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quizapp-client/internal/app"
	"quizapp-client/internal/config"
	"quizapp-client/internal/infra/backend"
	"quizapp-client/internal/infra/memory"
	"quizapp-client/internal/infra/postgres"
	redisinfra "quizapp-client/internal/infra/redis"
)

// deps is everything a command may need, resolved once from config. Redis and Postgres are
// optional; without them the in-memory implementations are used.
type deps struct {
	cfg       config.Config
	endpoints config.Endpoints
	api       *backend.Client
	quizzes   app.QuizRepository
	ledger    app.InviteLedger
	archive   app.QuizArchive

	redis *redis.Client
	pool  *pgxpool.Pool
}

func loadDeps(ctx context.Context, configPath string) (*deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	endpoints, err := cfg.Endpoints()
	if err != nil {
		return nil, err
	}
	log.Printf("environment %s: backend %s", endpoints.Name, endpoints.BackendURL)

	d := &deps{cfg: cfg, endpoints: endpoints}
	d.api = backend.New(backend.Config{
		BaseURL: endpoints.BackendURL,
		Timeout: config.TTLDuration(cfg.HTTP.Timeout, 15*time.Second),
	})

	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	if cfg.Postgres.URL != "" {
		group, err := postgres.Migrate(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, err
		}
		if group != nil && !group.IsZero() {
			log.Printf("archive migrated to %s", group)
		}
		d.pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	}

	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, time.Minute)
	ledgerTTL := config.TTLDuration(cfg.Invites.LedgerTTL, 30*24*time.Hour)
	if d.redis != nil {
		d.quizzes = redisinfra.NewQuizRepository(d.redis, d.api, quizTTL)
		d.ledger = redisinfra.NewInviteLedger(d.redis, ledgerTTL)
	} else {
		d.quizzes = memory.NewQuizRepository(d.api, quizTTL)
		d.ledger = memory.NewInviteLedger()
	}
	if d.pool != nil {
		d.archive = postgres.NewQuizArchive(d.pool)
	} else {
		d.archive = memory.NewQuizArchive()
	}
	return d, nil
}

func (d *deps) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Printf("close redis: %v", err)
		}
	}
}

func (d *deps) pageSize() int {
	if d.cfg.Results.PageSize > 0 {
		return d.cfg.Results.PageSize
	}
	return app.DefaultPageSize
}

func (d *deps) pollInterval() time.Duration {
	return config.TTLDuration(d.cfg.Results.PollInterval, app.DefaultPollInterval)
}
