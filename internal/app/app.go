// Package app wires the concierge components together for the CLI
// entrypoints: config, logger, database pool, Genkit client, knowledge
// adapters, pipeline, and notifier.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsuyoshi-3110/concierge/db"
	"github.com/tsuyoshi-3110/concierge/internal/aggregate"
	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/knowledge"
	"github.com/tsuyoshi-3110/concierge/internal/llm"
	"github.com/tsuyoshi-3110/concierge/internal/log"
	"github.com/tsuyoshi-3110/concierge/internal/notify"
	"github.com/tsuyoshi-3110/concierge/internal/pipeline"
	"github.com/tsuyoshi-3110/concierge/internal/retrieval"
	"github.com/tsuyoshi-3110/concierge/internal/source"
)

// App holds the assembled application.
type App struct {
	Config   *config.Config
	Logger   log.Logger
	Pool     *pgxpool.Pool
	Pipeline *pipeline.Pipeline
	Notifier *notify.Notifier
}

// poolDB adapts pgxpool.Pool to the knowledge store's query surface.
type poolDB struct {
	pool *pgxpool.Pool
}

func (p poolDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}

// Setup builds the full application from configuration. It runs
// migrations, opens the connection pool, and initializes Genkit, so it
// needs the database and the GEMINI_API_KEY to be reachable.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if cfg.DatabaseURL == "" {
		return nil, config.ErrMissingDatabaseURL
	}

	if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := newPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	client, err := llm.New(ctx, cfg, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing llm client: %w", err)
	}

	policy := cfg.Policy
	store := knowledge.New(poolDB{pool: pool}, logger)
	retriever := retrieval.New(client, store, policy.Retrieval, logger)

	agg := aggregate.New(
		source.NewHours(store, logger),
		source.NewStock(store, policy, logger),
		source.NewFAQ(store, policy, logger),
		source.NewMenu(store, policy, logger),
		source.NewSemantic(retriever, logger),
		policy,
		logger,
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Pool:     pool,
		Pipeline: pipeline.New(agg, client, policy, logger),
		Notifier: notify.New(cfg.EscalationWebhook, logger),
	}, nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func newPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}
