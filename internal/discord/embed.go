package discord

import (
	"cardbot/internal/render"

	"github.com/bwmarrin/discordgo"
)

const embedColor = 0x2b6cb0

// Embeds converts rendered units into Discord embeds.
func Embeds(msg render.OutputMessage) []*discordgo.MessageEmbed {
	embeds := make([]*discordgo.MessageEmbed, 0, len(msg.Units))
	for _, u := range msg.Units {
		e := &discordgo.MessageEmbed{
			Title:       u.Title,
			URL:         u.URL,
			Description: u.Description,
			Color:       embedColor,
		}
		if u.ThumbnailURL != "" {
			e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: u.ThumbnailURL}
		}
		for _, f := range u.Fields {
			e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		embeds = append(embeds, e)
	}
	return embeds
}
