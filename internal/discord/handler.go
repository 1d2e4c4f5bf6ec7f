package discord

import (
	"context"
	"fmt"
	"time"

	"cardbot/internal/decks"
	"cardbot/internal/search"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Searcher interface {
	Search(ctx context.Context, term string) search.Result
}

type DeckLister interface {
	List(ctx context.Context) decks.Result
}

// Responder is the part of *discordgo.Session used to answer interactions.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Handler struct {
	searcher    Searcher
	decks       DeckLister
	passTimeout time.Duration
	logger      *zap.Logger
}

func NewHandler(searcher Searcher, decks DeckLister, passTimeout time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{searcher: searcher, decks: decks, passTimeout: passTimeout, logger: logger}
}

// OnInteraction is registered with the session.
func (h *Handler) OnInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.Handle(context.Background(), s, i.Interaction)
}

// Handle answers one interaction. Passes are acknowledged with a deferred
// response first and completed by editing it.
func (h *Handler) Handle(ctx context.Context, r Responder, i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	rt := resolve(i.ApplicationCommandData())
	logger := h.logger.With(
		zap.String("interaction_id", i.ID),
		zap.String("command", rt.command),
		zap.String("group", rt.group),
		zap.String("subcommand", rt.subcommand))
	logger.Info("received command")

	switch {
	case rt.command == cmdPing:
		h.reply(r, i, pingReply, logger)
	case rt.command == cmdMTG && rt.group == groupCollections && rt.subcommand == subSearch:
		opt, ok := rt.options[optName]
		if !ok {
			h.reply(r, i, notImplemented, logger)
			return
		}
		term, err := search.NormalizeTerm(opt.StringValue())
		if err != nil {
			h.reply(r, i, fmt.Sprintf("Invalid card name: %v", err), logger)
			return
		}
		h.deferred(ctx, r, i, logger, func(ctx context.Context) (string, []*discordgo.MessageEmbed) {
			res := h.searcher.Search(ctx, term)
			return res.Message.Content, Embeds(res.Message)
		})
	case rt.command == cmdMTG && rt.group == groupDecks && rt.subcommand == subList:
		h.deferred(ctx, r, i, logger, func(ctx context.Context) (string, []*discordgo.MessageEmbed) {
			res := h.decks.List(ctx)
			return res.Message.Content, Embeds(res.Message)
		})
	default:
		h.reply(r, i, notImplemented, logger)
	}
}

func (h *Handler) reply(r Responder, i *discordgo.Interaction, content string, logger *zap.Logger) {
	err := r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		logger.Error("cannot respond to command", zap.Error(err))
	}
}

func (h *Handler) deferred(ctx context.Context, r Responder, i *discordgo.Interaction, logger *zap.Logger,
	run func(ctx context.Context) (string, []*discordgo.MessageEmbed)) {
	if err := r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		logger.Error("cannot acknowledge command", zap.Error(err))
		return
	}

	if h.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.passTimeout)
		defer cancel()
	}

	content, embeds := h.safeRun(ctx, run, logger)
	if _, err := r.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: &content,
		Embeds:  &embeds,
	}); err != nil {
		logger.Error("cannot deliver command result", zap.Error(err))
	}
}

// safeRun turns a panic in the pipeline into a user-facing message so the
// deferred response is always completed.
func (h *Handler) safeRun(ctx context.Context, run func(ctx context.Context) (string, []*discordgo.MessageEmbed),
	logger *zap.Logger) (content string, embeds []*discordgo.MessageEmbed) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic recovered", zap.Any("error", rec), zap.Stack("stack"))
			content, embeds = passFailedMessage, []*discordgo.MessageEmbed{}
		}
	}()
	return run(ctx)
}
