package main

import (
	"context"
	"net/http"
	"time"

	"cardbot/internal/app"
	"cardbot/internal/decks"
	"cardbot/internal/history"
	"cardbot/internal/httpx"
	"cardbot/internal/search"

	"go.uber.org/zap"
)

// newRouter mounts the health probes and the /v1 read API. The returned
// func stops the rate limiter's cleanup loop.
func newRouter(a *app.App, logger *zap.Logger) (http.Handler, func()) {
	if logger == nil {
		logger = zap.NewNop()
	}
	searchHandler := search.NewHTTPHandler(a.Search, a.Env.PassTimeout)
	deckHandler := decks.NewHTTPHandler(a.Decks, a.Env.PassTimeout)
	runHandler := history.NewHTTPHandler(a.Recorder)

	router := http.NewServeMux()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := a.Recorder.Ping(ctx); err != nil {
			http.Error(w, "history store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	v1 := http.NewServeMux()
	v1.HandleFunc("/v1/collections/search", searchHandler.Search)
	v1.HandleFunc("/v1/decks", deckHandler.List)
	v1.HandleFunc("/v1/runs", runHandler.List)

	limiter := httpx.NewRateLimitMiddleware(a.Env.APIRPS, a.Env.APIBurst)
	router.Handle("/v1/", httpx.Chain(v1,
		httpx.CORSMiddleware(a.Env.AllowedOrigins),
		limiter.Middleware,
		httpx.MethodMiddleware(http.MethodGet),
	))

	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware(false),
	)
	return handler, limiter.Close
}
