package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"minerdash/internal/adapters/market"
	"minerdash/internal/adapters/platform"
	"minerdash/internal/app/dashboard"
	"minerdash/internal/config"
	"minerdash/internal/logger"
	"minerdash/internal/shared/clock"
	"minerdash/internal/transport/httpapi"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("MINERDASH_CONFIG"))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Ошибка логгера: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	backend := platform.New(cfg.Platform.BaseURL, cfg.Platform.Token, cfg.Platform.Timeout, log)

	var mkt market.Source
	if cfg.Market.Enabled {
		mkt = market.NewBinance(cfg.Market.Quote, log)
	}

	app := dashboard.New(cfg, backend, mkt, clock.Interval{}, log)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if err := app.Start(startCtx); err != nil {
		cancelStart()
		log.Fatal("начальная загрузка не удалась", zap.Error(err))
	}
	cancelStart()

	srv := httpapi.New(cfg.HTTP.Addr, app, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Warn("http-сервер остановлен", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("останавливаемся...")
	app.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("ошибка остановки", zap.Error(err))
	} else {
		log.Info("сервер остановлен штатно")
	}
}
