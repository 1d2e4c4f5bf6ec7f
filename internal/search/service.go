// Package search answers card-name queries across every configured
// collection.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"cardbot/internal/fetch"
	"cardbot/internal/history"
	"cardbot/internal/mtg"
	"cardbot/internal/render"

	"go.uber.org/zap"
)

var ErrInvalidTerm = errors.New("invalid card name")

type Orchestrator interface {
	RunSearchPass(ctx context.Context, sources []mtg.CollectionSource, term string) fetch.PassResult[[]mtg.CardRecord]
}

// Result is the outcome of one search. Message is ready for delivery.
type Result struct {
	Message render.OutputMessage   `json:"message"`
	Cards   []mtg.ConsolidatedCard `json:"cards"`
	Errors  []fetch.Failure        `json:"errors"`
}

type Service struct {
	orchestrator Orchestrator
	sources      []mtg.CollectionSource
	recorder     *history.Recorder
	logger       *zap.Logger
}

// NewService returns a search service over sources. recorder may be nil.
func NewService(orchestrator Orchestrator, sources []mtg.CollectionSource, recorder *history.Recorder, logger *zap.Logger) *Service {
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

// NormalizeTerm trims term and checks it against CardNameMaxLen.
func NormalizeTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidTerm)
	}
	if utf8.RuneCountInString(term) > mtg.CardNameMaxLen {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrInvalidTerm, mtg.CardNameMaxLen)
	}
	return term, nil
}

// Search queries every collection for term, merges the matches and renders
// them. Failed collections show up as error lines, never as a failed search.
func (s *Service) Search(ctx context.Context, term string) Result {
	started := time.Now()
	s.logger.Info("searching collections",
		zap.String("term", term),
		zap.Int("sources", len(s.sources)))

	pass := s.orchestrator.RunSearchPass(ctx, s.sources, term)

	var records []mtg.CardRecord
	for _, batch := range pass.Successes() {
		for _, r := range batch {
			if r.Quantity < 0 {
				s.logger.Warn("ignoring record with negative quantity",
					zap.String("owner", r.OwnerLabel),
					zap.String("card", r.Key().String()),
					zap.Int64("quantity", r.Quantity))
			}
		}
		records = append(records, batch...)
	}
	cards := Aggregate(records)

	failures := []fetch.Failure{}
	var lines []string
	for _, out := range pass.Failures() {
		failures = append(failures, out.Failure())
		lines = append(lines, render.SearchErrorLine(out.Owner, out.Err))
	}

	msg := render.Search(cards, lines, len(s.sources), term)

	s.recorder.Record(ctx, &history.Run{
		Kind:         history.KindSearch,
		Term:         term,
		SourceCount:  len(s.sources),
		SuccessCount: len(pass.Outcomes) - len(failures),
		ErrorCount:   len(failures),
		MatchCount:   len(cards),
		Errors:       lines,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	})

	s.logger.Info("search finished",
		zap.String("term", term),
		zap.Int("matches", len(cards)),
		zap.Int("failures", len(failures)),
		zap.Bool("compact", msg.Compact),
		zap.Duration("duration", time.Since(started)))

	return Result{Message: msg, Cards: cards, Errors: failures}
}

// SourceCount reports how many collections a search covers.
func (s *Service) SourceCount() int {
	return len(s.sources)
}
