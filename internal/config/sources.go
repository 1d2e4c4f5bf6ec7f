package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cardbot/internal/mtg"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// BotConfig is the sources file. Entry order is preserved and is the
// source index used for error attribution.
type BotConfig struct {
	Common   CommonConfig   `yaml:"common"`
	MTG      MTGConfig      `yaml:"mtg"`
	Announce AnnounceConfig `yaml:"announce"`
}

type CommonConfig struct {
	GeneralChannelID string `yaml:"general_channel_id"`
}

type MTGConfig struct {
	Collections    []CollectionEntry `yaml:"collections" validate:"dive"`
	CommunityDecks []DeckEntry       `yaml:"community_decks" validate:"dive"`
}

type CollectionEntry struct {
	Provider           string `yaml:"provider" validate:"required,oneof=archidekt moxfield"`
	DiscordUser        string `yaml:"discord_user" validate:"required"`
	ProviderCollection string `yaml:"provider_collection" validate:"required"`
}

type DeckEntry struct {
	Provider     string `yaml:"provider" validate:"required,oneof=archidekt moxfield"`
	DiscordUser  string `yaml:"discord_user" validate:"required"`
	ProviderDeck string `yaml:"provider_deck" validate:"required"`
}

// AnnounceConfig drives the voice-join announcement. An empty UserID
// disables it.
type AnnounceConfig struct {
	UserID     string   `yaml:"user_id"`
	ResetHours int      `yaml:"reset_hours" validate:"gte=0"`
	Message    string   `yaml:"message" validate:"required_with=UserID"`
	Reactions  []string `yaml:"reactions"`
}

var validate = validator.New()

// LoadSources reads and validates the sources file at path.
func LoadSources(path string) (*BotConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes and validates a sources document.
func ParseSources(data []byte) (*BotConfig, error) {
	var cfg BotConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", describe(err))
	}
	return &cfg, nil
}

// CollectionSources converts the configured collections, in order.
func (c *BotConfig) CollectionSources() []mtg.CollectionSource {
	out := make([]mtg.CollectionSource, len(c.MTG.Collections))
	for i, e := range c.MTG.Collections {
		out[i] = mtg.CollectionSource{
			Provider:           mtg.ProviderKind(e.Provider),
			OwnerLabel:         e.DiscordUser,
			RemoteCollectionID: e.ProviderCollection,
		}
	}
	return out
}

// DeckSources converts the configured community decks, in order.
func (c *BotConfig) DeckSources() []mtg.DeckSource {
	out := make([]mtg.DeckSource, len(c.MTG.CommunityDecks))
	for i, e := range c.MTG.CommunityDecks {
		out[i] = mtg.DeckSource{
			Provider:     mtg.ProviderKind(e.Provider),
			OwnerLabel:   e.DiscordUser,
			RemoteDeckID: e.ProviderDeck,
		}
	}
	return out
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_with":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Namespace()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
