package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cardbot/internal/app"
	"cardbot/internal/config"
	"cardbot/internal/platform/logging"

	"go.uber.org/zap"
)

func main() {
	config.LoadEnvFiles()
	env, err := config.ParseEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(env.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.Build(ctx, env, logger)
	if err != nil {
		logger.Fatal("cannot start", zap.Error(err))
	}
	defer application.Close()

	router, closeRouter := newRouter(application, logger)
	defer closeRouter()

	httpServer := &http.Server{
		Addr:         env.AppAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: env.PassTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("addr", env.AppAddr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
