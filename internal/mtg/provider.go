package mtg

import (
	"context"
	"fmt"
)

// Provider is the capability every collection-hosting service implements.
type Provider interface {
	Kind() ProviderKind
	// RateLimited reports whether calls to the service must be paced.
	RateLimited() bool
	Search(ctx context.Context, ownerLabel, collectionID, term string) ([]CardRecord, error)
	GetDeck(ctx context.Context, ownerLabel, deckID string) (DeckMetadata, error)
}

// Registry resolves a provider kind to its implementation.
type Registry struct {
	providers map[ProviderKind]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[ProviderKind]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Kind()] = p
	}
	return r
}

// Lookup returns ErrUnknownProvider when no implementation is registered.
func (r *Registry) Lookup(kind ProviderKind) (Provider, error) {
	if p, ok := r.providers[kind]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, kind)
}

// RateLimited is false for unknown kinds; their calls fail fast anyway.
func (r *Registry) RateLimited(kind ProviderKind) bool {
	p, ok := r.providers[kind]
	return ok && p.RateLimited()
}
