// Package history keeps a record of every fetch pass for operators.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDisabled is returned when no history store is configured.
var ErrDisabled = errors.New("pass history is disabled")

type Kind string

const (
	KindSearch Kind = "search"
	KindDecks  Kind = "decks"
)

// Run summarizes one completed pass.
type Run struct {
	ID           uuid.UUID `json:"id"`
	Kind         Kind      `json:"kind"`
	Term         string    `json:"term,omitempty"`
	SourceCount  int       `json:"source_count"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	MatchCount   int       `json:"match_count"`
	Errors       []string  `json:"errors"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

//go:generate mockgen -source=history.go -destination=mock_repository.go -package=history

type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	ListRecent(ctx context.Context, limit int) ([]Run, error)
	Ping(ctx context.Context) error
}
