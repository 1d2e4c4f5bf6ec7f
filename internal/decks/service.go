// Package decks lists the configured community decks.
package decks

import (
	"context"
	"time"

	"cardbot/internal/fetch"
	"cardbot/internal/history"
	"cardbot/internal/mtg"
	"cardbot/internal/render"

	"go.uber.org/zap"
)

type Orchestrator interface {
	RunDeckPass(ctx context.Context, sources []mtg.DeckSource) fetch.PassResult[mtg.DeckMetadata]
}

type Result struct {
	Message render.OutputMessage `json:"message"`
	Decks   []mtg.DeckMetadata   `json:"decks"`
	Errors  []fetch.Failure      `json:"errors"`
}

type Service struct {
	orchestrator Orchestrator
	sources      []mtg.DeckSource
	recorder     *history.Recorder
	logger       *zap.Logger
}

func NewService(orchestrator Orchestrator, sources []mtg.DeckSource, recorder *history.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orchestrator: orchestrator,
		sources:      sources,
		recorder:     recorder,
		logger:       logger,
	}
}

// List loads every deck. Decks are not merged; each loaded source yields
// one entry, in source order.
func (s *Service) List(ctx context.Context) Result {
	started := time.Now()
	pass := s.orchestrator.RunDeckPass(ctx, s.sources)

	loaded := pass.Successes()
	failures := []fetch.Failure{}
	var lines []string
	for _, out := range pass.Failures() {
		f := out.Failure()
		failures = append(failures, f)
		lines = append(lines, render.DeckErrorLine(out.Owner, s.sources[out.Index].RemoteDeckID, out.Err))
	}

	msg := render.Decks(loaded, lines, len(s.sources))

	s.recorder.Record(ctx, &history.Run{
		Kind:         history.KindDecks,
		SourceCount:  len(s.sources),
		SuccessCount: len(loaded),
		ErrorCount:   len(failures),
		MatchCount:   len(loaded),
		Errors:       lines,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	})

	s.logger.Info("deck listing finished",
		zap.Int("decks", len(loaded)),
		zap.Int("failures", len(failures)),
		zap.Duration("duration", time.Since(started)))

	return Result{Message: msg, Decks: loaded, Errors: failures}
}
