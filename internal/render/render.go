// Package render turns consolidated search results and deck metadata into a
// platform-neutral message that respects the chat platform's size limits.
package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"cardbot/internal/mtg"
)

const (
	// MaxRichUnits is the most rich units a single message may carry.
	MaxRichUnits = 10
	// MaxSummaryLen bounds the compact summary body.
	MaxSummaryLen = 4096
	// MaxFieldLen bounds a single field value.
	MaxFieldLen = 1024
	// MaxContentLen bounds the plain message content (header and error lines).
	MaxContentLen = 2000
	// MaxTitleLen bounds a unit title.
	MaxTitleLen = 256
	// MaxErrorLineLen bounds a single error line inside the content.
	MaxErrorLineLen = 300
)

const (
	searchResultsTitle = "Search Results"
	ellipsis           = "..."
)

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DisplayUnit is one structured block: a card, a deck or the compact summary.
type DisplayUnit struct {
	Title        string  `json:"title"`
	URL          string  `json:"url,omitempty"`
	ThumbnailURL string  `json:"thumbnail,omitempty"`
	Description  string  `json:"description,omitempty"`
	Fields       []Field `json:"fields,omitempty"`
}

// OutputMessage is what the interaction layer delivers. Content holds the
// header followed by one line per failed source.
type OutputMessage struct {
	Content string        `json:"content"`
	Units   []DisplayUnit `json:"units"`
	// Compact is set when the cards did not fit into rich units.
	Compact bool `json:"compact"`
	// Omitted counts the entries that were cut from the output.
	Omitted int `json:"omitted"`
	// OmittedErrors counts the error lines cut from Content. A marker line
	// naming the count closes Content when it is non-zero.
	OmittedErrors int `json:"omitted_errors"`
}

// Search renders a search pass. Up to MaxRichUnits cards get one rich unit
// each; more cards collapse into a single compact summary.
func Search(cards []mtg.ConsolidatedCard, errorLines []string, sourceCount int, term string) OutputMessage {
	var header string
	if len(cards) == 0 {
		header = fmt.Sprintf("No matches found in `%d` searched collection(s) for card name `%s`", sourceCount, term)
	} else {
		header = fmt.Sprintf("Found `%d` matches in `%d` searched collection(s) for card name `%s`:", len(cards), sourceCount, term)
	}

	body, omittedErrors := content(header, errorLines)
	msg := OutputMessage{
		Content:       body,
		Units:         []DisplayUnit{},
		OmittedErrors: omittedErrors,
	}
	switch {
	case len(cards) == 0:
	case len(cards) <= MaxRichUnits:
		for _, c := range cards {
			msg.Units = append(msg.Units, cardUnit(c))
		}
	default:
		summary, omitted := CompactSummary(cards, MaxSummaryLen)
		msg.Compact = true
		msg.Omitted = omitted
		msg.Units = append(msg.Units, DisplayUnit{Title: searchResultsTitle, Description: summary})
	}
	return msg
}

// Decks renders a deck pass with one rich unit per loaded deck.
func Decks(decks []mtg.DeckMetadata, errorLines []string, sourceCount int) OutputMessage {
	shown := decks
	if len(shown) > MaxRichUnits {
		shown = shown[:MaxRichUnits]
	}
	header := fmt.Sprintf("Displaying `%d` of `%d` configured community decks:", len(shown), sourceCount)
	if omitted := len(decks) - len(shown); omitted > 0 {
		header += fmt.Sprintf("\n%d additional decks not shown", omitted)
	}

	body, omittedErrors := content(header, errorLines)
	msg := OutputMessage{
		Content:       body,
		Units:         make([]DisplayUnit, 0, len(shown)),
		Omitted:       len(decks) - len(shown),
		OmittedErrors: omittedErrors,
	}
	for _, d := range shown {
		msg.Units = append(msg.Units, DisplayUnit{
			Title:        clamp(d.Title, MaxTitleLen),
			URL:          d.CanonicalURL,
			ThumbnailURL: d.ThumbnailURL,
			Fields: []Field{
				{Name: "Original Creator", Value: clamp(orDash(d.OriginalOwnerLabel), MaxFieldLen)},
				{Name: "Last Updated At", Value: clamp(orDash(d.LastUpdatedAt), MaxFieldLen)},
			},
		})
	}
	return msg
}

// SearchErrorLine describes a collection that could not be searched.
func SearchErrorLine(owner string, err error) string {
	return fmt.Sprintf("Could not search collection for user %s: %v", owner, cause(err))
}

// DeckErrorLine describes a deck that could not be loaded.
func DeckErrorLine(owner, deckID string, err error) string {
	return fmt.Sprintf("*Could not load deck `%s` from %s: %v*", deckID, owner, cause(err))
}

// CompactSummary writes one block per card in order and stops before the
// body would exceed limit. When cards are cut, a marker naming how many were
// left out closes the body; room for it is reserved while appending.
func CompactSummary(cards []mtg.ConsolidatedCard, limit int) (string, int) {
	var b strings.Builder
	for i, c := range cards {
		block := cardBlock(c)
		reserve := 0
		if rest := len(cards) - i - 1; rest > 0 {
			reserve = len(truncationMarker(rest))
		}
		if b.Len()+len(block)+reserve > limit {
			omitted := len(cards) - i
			b.WriteString(truncationMarker(omitted))
			return b.String(), omitted
		}
		b.WriteString(block)
	}
	return b.String(), 0
}

func truncationMarker(n int) string {
	return fmt.Sprintf("%d additional results truncated", n)
}

func errorMarker(n int) string {
	return fmt.Sprintf("%d additional errors truncated", n)
}

var linkTextEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`, `(`, `\(`, `)`, `\)`)

// escapeLinkText keeps a card name from closing the markdown link early.
func escapeLinkText(s string) string {
	return linkTextEscaper.Replace(s)
}

func cardBlock(c mtg.ConsolidatedCard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s](%s) `%s:%s`\n", escapeLinkText(c.DisplayName), mtg.ScryfallCardURL(c.SetCode, c.CollectorNumber),
		strings.ToUpper(c.SetCode), c.CollectorNumber)
	b.WriteString(priceLine(c.ReferencePrice))
	b.WriteByte('\n')
	for _, o := range c.Owners {
		fmt.Fprintf(&b, "%dx %s\n", o.Quantity, o.OwnerLabel)
	}
	b.WriteByte('\n')
	return b.String()
}

func cardUnit(c mtg.ConsolidatedCard) DisplayUnit {
	owners, quantities := ownerColumns(c.Owners)
	return DisplayUnit{
		Title:        clamp(c.Key.String(), MaxTitleLen),
		URL:          mtg.ScryfallCardURL(c.SetCode, c.CollectorNumber),
		ThumbnailURL: mtg.ScryfallImageURL(c.SetCode, c.CollectorNumber),
		Description:  priceLine(c.ReferencePrice),
		Fields: []Field{
			{Name: "Owner", Value: owners, Inline: true},
			{Name: "Quantity", Value: quantities, Inline: true},
		},
	}
}

// ownerColumns renders the owner and quantity columns row for row. When
// both do not fit MaxFieldLen, they keep the same leading rows and end in
// one row "+N more" holding the remaining owners' summed quantity.
func ownerColumns(owners []mtg.OwnerQuantity) (string, string) {
	names := make([]string, 0, len(owners)+1)
	quantities := make([]string, 0, len(owners)+1)
	for k := len(owners); k >= 0; k-- {
		names, quantities = names[:0], quantities[:0]
		for _, o := range owners[:k] {
			names = append(names, clamp(o.OwnerLabel, MaxFieldLen/2))
			quantities = append(quantities, strconv.FormatInt(o.Quantity, 10))
		}
		if rest := owners[k:]; len(rest) > 0 {
			var sum int64
			for _, o := range rest {
				sum += o.Quantity
			}
			names = append(names, fmt.Sprintf("+%d more", len(rest)))
			quantities = append(quantities, strconv.FormatInt(sum, 10))
		}
		ownerCol, quantityCol := strings.Join(names, "\n"), strings.Join(quantities, "\n")
		if len(ownerCol) <= MaxFieldLen && len(quantityCol) <= MaxFieldLen {
			return ownerCol, quantityCol
		}
	}
	return "", ""
}

func priceLine(price string) string {
	if price == "" {
		return "Price: unavailable"
	}
	return "Price: $" + price
}

// content joins the header and the error lines. Lines are kept whole; when
// they do not all fit MaxContentLen, a marker naming how many were left out
// closes the content. Room for it is reserved while appending.
func content(header string, lines []string) (string, int) {
	headerLimit := MaxContentLen
	if len(lines) > 0 {
		headerLimit -= 1 + len(errorMarker(len(lines)))
	}
	var b strings.Builder
	b.WriteString(clamp(header, headerLimit))
	for i, line := range lines {
		line = clamp(line, MaxErrorLineLen)
		reserve := 0
		if rest := len(lines) - i - 1; rest > 0 {
			reserve = 1 + len(errorMarker(rest))
		}
		if b.Len()+1+len(line)+reserve > MaxContentLen {
			omitted := len(lines) - i
			b.WriteString("\n" + errorMarker(omitted))
			return b.String(), omitted
		}
		b.WriteString("\n" + line)
	}
	return b.String(), 0
}

// clamp cuts s to at most limit bytes on a rune boundary.
func clamp(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func cause(err error) error {
	var srcErr *mtg.SourceError
	if errors.As(err, &srcErr) {
		return srcErr.Err
	}
	return err
}
