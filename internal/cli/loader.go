package cli

import (
	"context"
	"fmt"
	"time"

	"cyberhunt/internal/config"
	"cyberhunt/internal/infra/memory"
	pgloader "cyberhunt/internal/infra/postgres"
	"cyberhunt/internal/infra/sheet"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// newQuestionLoader picks the clue source named by questions.source. The
// returned func releases whatever the loader holds open.
func newQuestionLoader(ctx context.Context, cfg config.Config, log *zap.Logger) (memory.QuestionLoader, func(), error) {
	switch cfg.Questions.Source {
	case "", config.SourceSheet:
		timeout := config.TTLDuration(cfg.Questions.Timeout, 15*time.Second)
		log.Info("loading questions from sheet", zap.String("url", cfg.Questions.URL), zap.Int("limit", cfg.Questions.Limit))
		return sheet.NewLoader(cfg.Questions.URL, cfg.Questions.Limit, timeout), func() {}, nil

	case config.SourcePostgres:
		if cfg.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("questions.source is postgres but postgres.url is not configured")
		}
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("loading questions from postgres", zap.Int("limit", cfg.Questions.Limit))
		return pgloader.NewClueLoader(pool, cfg.Questions.Limit), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown questions.source %q", cfg.Questions.Source)
	}
}
