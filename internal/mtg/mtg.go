package mtg

import (
	"fmt"
	"strings"
)

// CardNameMaxLen bounds the search term accepted by the calling surfaces.
const CardNameMaxLen = 128

// ProviderKind names one external collection-hosting service.
type ProviderKind string

const (
	Archidekt ProviderKind = "archidekt"
	Moxfield  ProviderKind = "moxfield"
)

func (k ProviderKind) String() string { return string(k) }

// CollectionSource binds one provider collection to the user who owns it.
type CollectionSource struct {
	Provider           ProviderKind
	OwnerLabel         string
	RemoteCollectionID string
}

// DeckSource binds one provider deck to the user who contributed it.
type DeckSource struct {
	Provider     ProviderKind
	OwnerLabel   string
	RemoteDeckID string
}

// CardRecord is a single collection entry as returned by a provider search.
type CardRecord struct {
	Name            string `json:"name"`
	SetCode         string `json:"set_code"`
	CollectorNumber string `json:"collector_number"`
	Quantity        int64  `json:"quantity"`
	OwnerLabel      string `json:"owner"`
	ReferencePrice  string `json:"reference_price,omitempty"`
}

// IdentityKey identifies one physical printing of a card.
type IdentityKey struct {
	Name            string
	SetCode         string
	CollectorNumber string
}

// Key derives the identity of the printing the record refers to.
// Set codes are compared case-insensitively.
func (r CardRecord) Key() IdentityKey {
	return IdentityKey{
		Name:            r.Name,
		SetCode:         strings.ToUpper(r.SetCode),
		CollectorNumber: r.CollectorNumber,
	}
}

func (k IdentityKey) String() string {
	return fmt.Sprintf("%s [%s:%s]", k.Name, k.SetCode, k.CollectorNumber)
}

// OwnerQuantity is one owner's total for a consolidated card.
type OwnerQuantity struct {
	OwnerLabel string `json:"owner"`
	Quantity   int64  `json:"quantity"`
}

// ConsolidatedCard merges every record for one printing across all sources.
type ConsolidatedCard struct {
	Key             IdentityKey     `json:"-"`
	DisplayName     string          `json:"name"`
	SetCode         string          `json:"set_code"`
	CollectorNumber string          `json:"collector_number"`
	ReferencePrice  string          `json:"reference_price,omitempty"`
	Owners          []OwnerQuantity `json:"owners"`
}

// TotalQuantity sums the quantities of every owner.
func (c ConsolidatedCard) TotalQuantity() int64 {
	var total int64
	for _, o := range c.Owners {
		total += o.Quantity
	}
	return total
}

// DeckMetadata describes one community deck.
type DeckMetadata struct {
	Title              string `json:"title"`
	CanonicalURL       string `json:"url"`
	ThumbnailURL       string `json:"thumbnail,omitempty"`
	OriginalOwnerLabel string `json:"original_owner"`
	LastUpdatedAt      string `json:"last_updated_at"`
}

// ScryfallImageURL returns the card image for a printing.
func ScryfallImageURL(setCode, collectorNumber string) string {
	return fmt.Sprintf("https://api.scryfall.com/cards/%s/%s?format=image",
		strings.ToLower(setCode), collectorNumber)
}

// ScryfallCardURL returns the card detail page for a printing.
func ScryfallCardURL(setCode, collectorNumber string) string {
	return fmt.Sprintf("https://scryfall.com/card/%s/%s",
		strings.ToLower(setCode), collectorNumber)
}

// FormatPrice renders a price with two fractional digits.
func FormatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
