// Package app assembles the providers, pass orchestrator, history recorder
// and services shared by the bot and the HTTP API.
package app

import (
	"context"
	"fmt"
	"time"

	"cardbot/internal/config"
	"cardbot/internal/decks"
	"cardbot/internal/fetch"
	"cardbot/internal/history"
	"cardbot/internal/mtg"
	"cardbot/internal/platform/apiclient"
	"cardbot/internal/platform/archidekt"
	"cardbot/internal/platform/moxfield"
	"cardbot/internal/search"

	"go.uber.org/zap"
)

const historyConnectTimeout = 5 * time.Second

type App struct {
	Env      config.Env
	Sources  *config.BotConfig
	Recorder *history.Recorder
	Search   *search.Service
	Decks    *decks.Service

	closeHistory func()
}

// Build loads the sources file and opens the history store named by env.
func Build(ctx context.Context, env config.Env, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sources, err := config.LoadSources(env.BotConfig)
	if err != nil {
		return nil, err
	}

	openCtx, cancel := context.WithTimeout(ctx, historyConnectTimeout)
	defer cancel()
	repo, closeRepo, err := history.Open(openCtx, env.HistoryDSN)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if repo == nil {
		logger.Info("pass history disabled")
	}

	a := New(env, sources, repo, logger)
	a.closeHistory = closeRepo
	return a, nil
}

// New wires the services over the given sources. repo may be nil.
func New(env config.Env, sources *config.BotConfig, repo history.Repository, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := mtg.NewRegistry(
		archidekt.NewClient(apiclient.Config{
			UserAgent: env.ProviderUserAgent,
			RPS:       env.ArchidektRPS,
			Timeout:   env.ProviderTimeout,
		}, logger),
		moxfield.NewClient(apiclient.Config{
			UserAgent: env.ProviderUserAgent,
			RPS:       env.MoxfieldRPS,
			Timeout:   env.ProviderTimeout,
		}, logger),
	)
	orchestrator := fetch.New(registry, env.PaceDelay, logger.Named("fetch"))
	recorder := history.NewRecorder(repo, logger.Named("history"))

	logger.Info("sources loaded",
		zap.Int("collections", len(sources.MTG.Collections)),
		zap.Int("community_decks", len(sources.MTG.CommunityDecks)))

	return &App{
		Env:      env,
		Sources:  sources,
		Recorder: recorder,
		Search:   search.NewService(orchestrator, sources.CollectionSources(), recorder, logger.Named("search")),
		Decks:    decks.NewService(orchestrator, sources.DeckSources(), recorder, logger.Named("decks")),
	}
}

// Close releases the history store.
func (a *App) Close() {
	if a.closeHistory != nil {
		a.closeHistory()
	}
}
