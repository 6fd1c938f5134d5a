package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wiki-quiz/internal/adapters/api"
	"wiki-quiz/internal/app"
	"wiki-quiz/internal/infra/config"
	applog "wiki-quiz/internal/infra/log"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <article-url>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv).Output(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("quizgen: не удалось собрать сервис")
	}
	defer application.Close()

	quiz, err := application.Service.Generate(ctx, flag.Arg(0))
	if err != nil {
		logger.Error().Err(err).Str("url", flag.Arg(0)).Msg("quizgen: генерация не удалась")
		application.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(api.NewQuizResponse(quiz)); err != nil {
		logger.Error().Err(err).Msg("quizgen: вывод результата")
	}
}
