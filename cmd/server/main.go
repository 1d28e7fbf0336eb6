package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/youruser/coverapp/internal/api"
	"github.com/youruser/coverapp/internal/config"
	"github.com/youruser/coverapp/internal/cover"
	imagepkg "github.com/youruser/coverapp/internal/image"
	"github.com/youruser/coverapp/internal/storage"
	"github.com/youruser/coverapp/internal/util"
)

func main() {
	cfg := config.MustLoad()

	logger, err := util.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	store, err := storage.New(cfg, logger)
	if err != nil {
		logger.Fatal("init upload storage", zap.Error(err))
	}
	if err := util.EnsureDir(cfg.Output.Dir); err != nil {
		logger.Fatal("create output dir", zap.String("dir", cfg.Output.Dir), zap.Error(err))
	}

	gen := cover.NewGenerator(
		imagepkg.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes, cfg.Fetch.MaxPixels),
		imagepkg.NewFontLoader(cfg.Fonts.Title, cfg.Fonts.Subtitle),
		cfg.Output.Dir,
		logger,
	)

	r := api.NewRouter(cfg, logger)
	api.RegisterRoutes(r, api.NewHandler(gen, store, logger), api.NewRateLimiter(cfg.RateLimit.PerMinute))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
