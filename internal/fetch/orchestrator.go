// Package fetch drives one pass over every configured source and collects
// per-source outcomes without letting one failure affect the others.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardbot/internal/mtg"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Policy selects how a source's call is scheduled.
type Policy int

const (
	// FanOut issues the call concurrently with every other fan-out call.
	FanOut Policy = iota
	// Paced runs the call in its provider's sequential lane, with the pace
	// delay between the end of one call and the start of the next.
	Paced
)

func (p Policy) String() string {
	if p == Paced {
		return "paced"
	}
	return "fan-out"
}

// Outcome is the result of one source. Err, when set, is a *mtg.SourceError.
type Outcome[T any] struct {
	Index int
	Owner string
	Value T
	Err   error
}

// Failure is the reportable form of a failed outcome.
type Failure struct {
	Index    int    `json:"index"`
	Owner    string `json:"owner"`
	Provider string `json:"provider"`
	RemoteID string `json:"remote_id"`
	Class    string `json:"class"`
	Message  string `json:"message"`
}

// Failure describes the outcome's error. It returns the zero Failure for a
// successful outcome.
func (o Outcome[T]) Failure() Failure {
	if o.Err == nil {
		return Failure{}
	}
	f := Failure{Index: o.Index, Owner: o.Owner, Class: mtg.Classify(o.Err), Message: o.Err.Error()}
	var srcErr *mtg.SourceError
	if errors.As(o.Err, &srcErr) {
		f.Provider = srcErr.Provider.String()
		f.RemoteID = srcErr.RemoteID
		f.Message = srcErr.Err.Error()
	}
	return f
}

// PassResult holds one outcome per source, index-aligned with the input.
type PassResult[T any] struct {
	Outcomes []Outcome[T]
}

// Successes returns the payloads of the successful sources in source order.
func (p PassResult[T]) Successes() []T {
	out := make([]T, 0, len(p.Outcomes))
	for _, o := range p.Outcomes {
		if o.Err == nil {
			out = append(out, o.Value)
		}
	}
	return out
}

// Failures returns the failed outcomes in source order.
func (p PassResult[T]) Failures() []Outcome[T] {
	var out []Outcome[T]
	for _, o := range p.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

type Orchestrator struct {
	registry  *mtg.Registry
	paceDelay time.Duration
	logger    *zap.Logger
}

func New(registry *mtg.Registry, paceDelay time.Duration, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{registry: registry, paceDelay: paceDelay, logger: logger}
}

type task[T any] struct {
	provider mtg.ProviderKind
	owner    string
	remoteID string
	policy   Policy
	call     func(ctx context.Context, p mtg.Provider) (T, error)
}

// RunSearchPass searches every collection for term. Sources whose provider
// is rate limited are paced; the rest fan out.
func (o *Orchestrator) RunSearchPass(ctx context.Context, sources []mtg.CollectionSource, term string) PassResult[[]mtg.CardRecord] {
	tasks := make([]task[[]mtg.CardRecord], len(sources))
	for i, src := range sources {
		src := src
		policy := FanOut
		if o.registry.RateLimited(src.Provider) {
			policy = Paced
		}
		tasks[i] = task[[]mtg.CardRecord]{
			provider: src.Provider,
			owner:    src.OwnerLabel,
			remoteID: src.RemoteCollectionID,
			policy:   policy,
			call: func(ctx context.Context, p mtg.Provider) ([]mtg.CardRecord, error) {
				return p.Search(ctx, src.OwnerLabel, src.RemoteCollectionID, term)
			},
		}
	}
	return run(ctx, o, "search", tasks)
}

// RunDeckPass loads every deck concurrently. Deck lookups are one request
// per source; provider clients still apply their own request-rate cap.
func (o *Orchestrator) RunDeckPass(ctx context.Context, sources []mtg.DeckSource) PassResult[mtg.DeckMetadata] {
	tasks := make([]task[mtg.DeckMetadata], len(sources))
	for i, src := range sources {
		src := src
		tasks[i] = task[mtg.DeckMetadata]{
			provider: src.Provider,
			owner:    src.OwnerLabel,
			remoteID: src.RemoteDeckID,
			policy:   FanOut,
			call: func(ctx context.Context, p mtg.Provider) (mtg.DeckMetadata, error) {
				return p.GetDeck(ctx, src.OwnerLabel, src.RemoteDeckID)
			},
		}
	}
	return run(ctx, o, "decks", tasks)
}

func run[T any](ctx context.Context, o *Orchestrator, pass string, tasks []task[T]) PassResult[T] {
	start := time.Now()
	outcomes := make([]Outcome[T], len(tasks))

	// Every goroutine writes only the slots of the indices it was handed.
	var g errgroup.Group
	lanes := make(map[mtg.ProviderKind][]int)
	var laneOrder []mtg.ProviderKind
	for i, t := range tasks {
		if t.policy == Paced {
			if _, ok := lanes[t.provider]; !ok {
				laneOrder = append(laneOrder, t.provider)
			}
			lanes[t.provider] = append(lanes[t.provider], i)
			continue
		}
		i, t := i, t
		g.Go(func() error {
			outcomes[i] = invoke(ctx, o, i, t)
			return nil
		})
	}
	for _, kind := range laneOrder {
		indices := lanes[kind]
		g.Go(func() error {
			for n, i := range indices {
				if n > 0 {
					o.pause(ctx)
				}
				outcomes[i] = invoke(ctx, o, i, tasks[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	result := PassResult[T]{Outcomes: outcomes}
	o.logger.Info("pass finished",
		zap.String("pass", pass),
		zap.Int("sources", len(tasks)),
		zap.Int("failures", len(result.Failures())),
		zap.Duration("duration", time.Since(start)))
	return result
}

func invoke[T any](ctx context.Context, o *Orchestrator, index int, t task[T]) (out Outcome[T]) {
	out = Outcome[T]{Index: index, Owner: t.owner}
	fail := func(err error) {
		out.Err = &mtg.SourceError{Provider: t.provider, Owner: t.owner, RemoteID: t.remoteID, Err: err}
		o.logger.Warn("source failed",
			zap.Int("index", index),
			zap.String("provider", t.provider.String()),
			zap.String("owner", t.owner),
			zap.String("remote_id", t.remoteID),
			zap.String("class", mtg.Classify(err)),
			zap.Error(err))
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out.Value = zero
			fail(fmt.Errorf("provider panicked: %v", r))
		}
	}()

	provider, err := o.registry.Lookup(t.provider)
	if err != nil {
		fail(err)
		return out
	}
	value, err := t.call(ctx, provider)
	if err != nil {
		fail(err)
		return out
	}
	out.Value = value
	return out
}

func (o *Orchestrator) pause(ctx context.Context) {
	if o.paceDelay <= 0 {
		return
	}
	timer := time.NewTimer(o.paceDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
