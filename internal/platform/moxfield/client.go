package moxfield

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"cardbot/internal/mtg"
	"cardbot/internal/platform/apiclient"

	"go.uber.org/zap"
)

const (
	defaultAPIBase = "https://api2.moxfield.com"
	deckPageBase   = "https://moxfield.com/decks"
)

// Client implements mtg.Provider for Moxfield. Moxfield blocks clients that
// exceed roughly one request per second, so it reports itself rate limited.
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
		api:     apiclient.New(mtg.Moxfield, cfg, logger),
		baseURL: defaultAPIBase,
		logger:  logger,
	}
}

func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

func (c *Client) Kind() mtg.ProviderKind { return mtg.Moxfield }

func (c *Client) RateLimited() bool { return true }

type prices struct {
	CK       *float64 `json:"ck"`
	CKFoil   *float64 `json:"ck_foil"`
	CKEtched *float64 `json:"ck_etched"`
}

func (p prices) referencePrice() string {
	for _, v := range []*float64{p.CK, p.CKFoil, p.CKEtched} {
		if v != nil {
			return mtg.FormatPrice(*v)
		}
	}
	return ""
}

type card struct {
	Name   string `json:"name"`
	Set    string `json:"set"`
	CN     string `json:"cn"`
	Prices prices `json:"prices"`
}

type searchResponse struct {
	Data []struct {
		Quantity int64 `json:"quantity"`
		Card     card  `json:"card"`
	} `json:"data"`
}

// Search queries one trade binder. The term is quoted so Moxfield treats it
// as a phrase.
func (c *Client) Search(ctx context.Context, ownerLabel, binderID, term string) ([]mtg.CardRecord, error) {
	c.logger.Info("searching moxfield binder",
		zap.String("owner", ownerLabel),
		zap.String("binder_id", binderID),
		zap.String("term", term))

	u := fmt.Sprintf("%s/v1/trade-binders/%s/search?q=%s",
		c.baseURL, url.PathEscape(binderID), url.QueryEscape(`"`+term+`"`))

	var res searchResponse
	if err := c.api.GetJSON(ctx, "collection search", u, &res); err != nil {
		return nil, err
	}

	records := make([]mtg.CardRecord, 0, len(res.Data))
	for _, d := range res.Data {
		if d.Quantity < 0 {
			c.logger.Warn("dropping collection entry with negative quantity",
				zap.String("owner", ownerLabel),
				zap.String("card", mtg.CardRecord{Name: d.Card.Name, SetCode: d.Card.Set, CollectorNumber: d.Card.CN}.Key().String()),
				zap.Int64("quantity", d.Quantity))
			continue
		}
		records = append(records, mtg.CardRecord{
			Name:            d.Card.Name,
			SetCode:         d.Card.Set,
			CollectorNumber: d.Card.CN,
			Quantity:        d.Quantity,
			OwnerLabel:      ownerLabel,
			ReferencePrice:  d.Card.Prices.referencePrice(),
		})
	}
	return records, nil
}

type deckResponse struct {
	Name             string `json:"name"`
	PublicURL        string `json:"publicUrl"`
	LastUpdatedAtUTC string `json:"lastUpdatedAtUtc"`
	CreatedByUser    struct {
		UserName string `json:"userName"`
	} `json:"createdByUser"`
	Boards struct {
		Commanders struct {
			Cards map[string]struct {
				Card card `json:"card"`
			} `json:"cards"`
		} `json:"commanders"`
	} `json:"boards"`
}

// GetDeck loads deck metadata. With several commanders the one with the
// smallest board key provides the thumbnail so the choice is stable.
func (c *Client) GetDeck(ctx context.Context, ownerLabel, deckID string) (mtg.DeckMetadata, error) {
	c.logger.Info("fetching moxfield deck",
		zap.String("owner", ownerLabel),
		zap.String("deck_id", deckID))

	u := fmt.Sprintf("%s/v3/decks/all/%s", c.baseURL, url.PathEscape(deckID))

	var res deckResponse
	if err := c.api.GetJSON(ctx, "deck lookup", u, &res); err != nil {
		return mtg.DeckMetadata{}, err
	}

	var thumbnail string
	commanders := res.Boards.Commanders.Cards
	if len(commanders) > 0 {
		keys := make([]string, 0, len(commanders))
		for k := range commanders {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		first := commanders[keys[0]].Card
		thumbnail = mtg.ScryfallImageURL(first.Set, first.CN)
	}

	deckURL := res.PublicURL
	if deckURL == "" {
		deckURL = fmt.Sprintf("%s/%s", deckPageBase, deckID)
	}

	return mtg.DeckMetadata{
		Title:              res.Name,
		CanonicalURL:       deckURL,
		ThumbnailURL:       thumbnail,
		OriginalOwnerLabel: res.CreatedByUser.UserName,
		LastUpdatedAt:      res.LastUpdatedAtUTC,
	}, nil
}
