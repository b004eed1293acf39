package main

import (
	"fmt"
	"os"

	"minerdash/internal/app/console"
	"minerdash/internal/config"
	"minerdash/internal/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("MINERDASH_CONFIG"))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, false)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Ошибка логгера: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := console.Run(cfg, log); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Ошибка выполнения: %v\n", err)
		os.Exit(1)
	}
}
