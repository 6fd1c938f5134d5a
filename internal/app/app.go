// Package app собирает зависимости сервиса викторин из конфига.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"wiki-quiz/internal/adapters/backend"
	"wiki-quiz/internal/adapters/fetcher"
	"wiki-quiz/internal/adapters/normalizer"
	"wiki-quiz/internal/adapters/quizgen"
	"wiki-quiz/internal/adapters/repo"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/infra/cache"
	"wiki-quiz/internal/infra/config"
	"wiki-quiz/internal/infra/db"
	applog "wiki-quiz/internal/infra/log"
	openai "wiki-quiz/internal/infra/openai"
	"wiki-quiz/internal/usecase/quiz"
)

// App держит собранный сервис и функции освобождения ресурсов.
type App struct {
	Service *quiz.Service
	closers []func()
}

// Close освобождает ресурсы в обратном порядке.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New собирает хранилище, блокировку, модель и конвейер.
func New(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (*App, error) {
	a := &App{}

	store, err := a.openStore(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var locker domain.URLLocker = cache.NewLocalLocker()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("app: redis недоступен")
		}
		locker = cache.NewRedisLocker(client, cfg.LockTTL)
	}

	primary, err := newStrategy(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	synth := quizgen.NewSynthesizer(primary, applog.Component(logger, "quizgen"))

	fetch := fetcher.NewHTTP(fetcher.Options{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
		MaxBytes:  cfg.Fetch.MaxBytes,
	})
	a.Service = quiz.NewService(fetch, normalizer.New(), synth, store, locker, applog.Component(logger, "quiz"))
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (domain.QuizRepo, error) {
	if cfg.UsePostgres() {
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("app: postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := db.Migrate(ctx, pool); err != nil {
			return nil, fmt.Errorf("app: migrate: %w", err)
		}
		logger.Info().Msg("app: хранилище postgres")
		return repo.NewPostgres(pool), nil
	}

	gdb, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}
	store, err := repo.NewSQLite(gdb)
	if err != nil {
		return nil, fmt.Errorf("app: sqlite schema: %w", err)
	}
	logger.Info().Str("path", cfg.SQLitePath).Msg("app: хранилище sqlite")
	return store, nil
}

// newStrategy выбирает модель: Gemini, затем OpenAI. Без ключей возвращает nil,
// и синтезатор работает только детерминированно.
func newStrategy(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (domain.QuizStrategy, error) {
	switch {
	case cfg.Gemini.APIKey != "":
		gemini, err := backend.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("backend", gemini.Name()).Msg("app: генеративная модель подключена")
		return quizgen.NewLLM(gemini, cfg.LLMTimeout), nil
	case cfg.OpenAI.APIKey != "":
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.LLMTimeout)
		b := backend.NewOpenAI(client, cfg.OpenAI.Model)
		logger.Info().Str("backend", b.Name()).Msg("app: генеративная модель подключена")
		return quizgen.NewLLM(b, cfg.LLMTimeout), nil
	default:
		logger.Info().Msg("app: модель не настроена, используется детерминированная викторина")
		return nil, nil
	}
}
