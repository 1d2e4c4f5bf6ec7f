// Package discord wires the search and deck pipelines into Discord slash
// commands and runs the voice-join announcer.
package discord

import (
	"cardbot/internal/mtg"

	"github.com/bwmarrin/discordgo"
)

const (
	cmdPing           = "ping"
	cmdMTG            = "mtg"
	groupCollections  = "collections"
	groupDecks        = "community_decks"
	subSearch         = "search"
	subList           = "list"
	optName           = "name"
	pingReply         = "cardbot reporting in, ready to search"
	notImplemented    = "Command not implemented :("
	passFailedMessage = "Something went wrong while talking to the collection sites."
)

// Commands returns the slash commands the bot registers.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdPing,
			Description: "Check to see if the server is alive",
		},
		{
			Name:        cmdMTG,
			Description: "Commands related to Magic: The Gathering",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Name:        groupCollections,
					Description: "Commands related to member card collections",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        subSearch,
							Description: "Search the collections of all members for a given card",
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        optName,
									Description: "Name (or partial name) of card to search for",
									Required:    true,
									MaxLength:   mtg.CardNameMaxLen,
								},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Name:        groupDecks,
					Description: "Commands related to community decks",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        subList,
							Description: "List all known community decks",
						},
					},
				},
			},
		},
	}
}

// route is the resolved command path, e.g. "mtg collections search".
type route struct {
	command    string
	group      string
	subcommand string
	options    map[string]*discordgo.ApplicationCommandInteractionDataOption
}

func resolve(data discordgo.ApplicationCommandInteractionData) route {
	r := route{command: data.Name}
	opts := data.Options
	if len(opts) > 0 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup {
		r.group = opts[0].Name
		opts = opts[0].Options
	}
	if len(opts) > 0 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		r.subcommand = opts[0].Name
		opts = opts[0].Options
	}
	r.options = make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		r.options[o.Name] = o
	}
	return r
}
