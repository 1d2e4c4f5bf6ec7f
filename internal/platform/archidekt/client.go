package archidekt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"

	"cardbot/internal/mtg"
	"cardbot/internal/platform/apiclient"

	"go.uber.org/zap"
)

const (
	defaultAPIBase = "https://archidekt.com/api"
	deckPageBase   = "https://archidekt.com/decks"
)

// Client implements mtg.Provider for Archidekt. Archidekt tolerates
// concurrent requests, so its sources are fanned out.
type Client struct {
	api     *apiclient.Client
	baseURL string
	logger  *zap.Logger
}

func NewClient(cfg apiclient.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:     apiclient.New(mtg.Archidekt, cfg, logger),
		baseURL: defaultAPIBase,
		logger:  logger,
	}
}

// WithBaseURL points the client at another API root (tests, mirrors).
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

func (c *Client) Kind() mtg.ProviderKind { return mtg.Archidekt }

func (c *Client) RateLimited() bool { return false }

type prices struct {
	CK       *float64 `json:"ck"`
	CKFoil   *float64 `json:"ck_foil"`
	CKEtched *float64 `json:"ck_etched"`
}

// referencePrice prefers the regular Card Kingdom price, then foil, then etched.
func (p prices) referencePrice() string {
	for _, v := range []*float64{p.CK, p.CKFoil, p.CKEtched} {
		if v != nil {
			return mtg.FormatPrice(*v)
		}
	}
	return mtg.FormatPrice(0)
}

type edition struct {
	EditionCode string `json:"editioncode"`
}

// printing accepts both card shapes Archidekt returns: {set, cn} and
// {edition: {editioncode}, collectorNumber}.
type printing struct {
	Set             string   `json:"set"`
	CN              string   `json:"cn"`
	Edition         *edition `json:"edition"`
	CollectorNumber string   `json:"collectorNumber"`
}

func (p printing) setAndNumber() (string, string) {
	set, cn := p.Set, p.CN
	if set == "" && p.Edition != nil {
		set = p.Edition.EditionCode
	}
	if cn == "" {
		cn = p.CollectorNumber
	}
	return set, cn
}

type searchCard struct {
	printing
	Name   string `json:"name"`
	Prices prices `json:"prices"`
}

type searchResult struct {
	Card     searchCard `json:"card"`
	Quantity int64      `json:"quantity"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// UnmarshalJSON rejects a payload without the results array, which is what
// Archidekt sends for private or missing collections.
func (r *searchResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Results *[]searchResult `json:"results"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Results == nil {
		return fmt.Errorf("missing results")
	}
	r.Results = *raw.Results
	return nil
}

// Search queries one collection for cards whose name matches term.
func (c *Client) Search(ctx context.Context, ownerLabel, collectionID, term string) ([]mtg.CardRecord, error) {
	c.logger.Info("searching archidekt collection",
		zap.String("owner", ownerLabel),
		zap.String("collection_id", collectionID),
		zap.String("term", term))

	u := fmt.Sprintf("%s/collection/%s/?cardName=%s",
		c.baseURL, url.PathEscape(collectionID), url.QueryEscape(term))

	var res searchResponse
	if err := c.api.GetJSON(ctx, "collection search", u, &res); err != nil {
		return nil, err
	}

	records := make([]mtg.CardRecord, 0, len(res.Results))
	for _, r := range res.Results {
		set, cn := r.Card.setAndNumber()
		if r.Quantity < 0 {
			c.logger.Warn("dropping collection entry with negative quantity",
				zap.String("owner", ownerLabel),
				zap.String("card", mtg.CardRecord{Name: r.Card.Name, SetCode: set, CollectorNumber: cn}.Key().String()),
				zap.Int64("quantity", r.Quantity))
			continue
		}
		records = append(records, mtg.CardRecord{
			Name:            r.Card.Name,
			SetCode:         set,
			CollectorNumber: cn,
			Quantity:        r.Quantity,
			OwnerLabel:      ownerLabel,
			ReferencePrice:  r.Card.Prices.referencePrice(),
		})
	}
	return records, nil
}

type deckCard struct {
	Card       printing `json:"card"`
	Categories []string `json:"categories"`
}

type deckResponse struct {
	Name  string `json:"name"`
	Owner struct {
		Username string `json:"username"`
	} `json:"owner"`
	UpdatedAt string     `json:"updatedAt"`
	Cards     []deckCard `json:"cards"`
}

// GetDeck loads deck metadata. The thumbnail is the first commander's
// image; decks without a commander have none.
func (c *Client) GetDeck(ctx context.Context, ownerLabel, deckID string) (mtg.DeckMetadata, error) {
	c.logger.Info("fetching archidekt deck",
		zap.String("owner", ownerLabel),
		zap.String("deck_id", deckID))

	u := fmt.Sprintf("%s/decks/%s/", c.baseURL, url.PathEscape(deckID))

	var res deckResponse
	if err := c.api.GetJSON(ctx, "deck lookup", u, &res); err != nil {
		return mtg.DeckMetadata{}, err
	}

	var thumbnail string
	for _, card := range res.Cards {
		if slices.Contains(card.Categories, "Commander") {
			set, cn := card.Card.setAndNumber()
			thumbnail = mtg.ScryfallImageURL(set, cn)
			break
		}
	}

	return mtg.DeckMetadata{
		Title:              res.Name,
		CanonicalURL:       fmt.Sprintf("%s/%s", deckPageBase, deckID),
		ThumbnailURL:       thumbnail,
		OriginalOwnerLabel: res.Owner.Username,
		LastUpdatedAt:      res.UpdatedAt,
	}, nil
}
