package discord

import (
	"time"

	"cardbot/internal/announce"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// MessageSender is the part of *discordgo.Session the announcer uses.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

type AnnouncerConfig struct {
	UserID    string
	ChannelID string
	Message   string
	Reactions []string
	Window    time.Duration
}

// Announcer posts a message when a watched user shows up in voice, at most
// once per window.
type Announcer struct {
	cfg    AnnouncerConfig
	gate   *announce.Gate
	now    func() time.Time
	logger *zap.Logger
}

func NewAnnouncer(cfg AnnouncerConfig, logger *zap.Logger) *Announcer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Announcer{
		cfg:    cfg,
		gate:   announce.NewGate(cfg.Window),
		now:    time.Now,
		logger: logger,
	}
}

func (a *Announcer) OnVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	a.Handle(s, v)
}

// Handle announces when v puts the watched user in a voice channel.
func (a *Announcer) Handle(sender MessageSender, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil || v.UserID != a.cfg.UserID || v.ChannelID == "" {
		return
	}
	if !a.gate.TryAcquire(a.now()) {
		a.logger.Info("watched user joined voice, already announced",
			zap.Time("last_announced", a.gate.Last()))
		return
	}

	a.logger.Info("announcing voice join", zap.String("user_id", v.UserID))
	msg, err := sender.ChannelMessageSend(a.cfg.ChannelID, a.cfg.Message)
	if err != nil {
		a.logger.Error("could not send announcement", zap.Error(err))
		return
	}
	for _, emoji := range a.cfg.Reactions {
		if err := sender.MessageReactionAdd(a.cfg.ChannelID, msg.ID, emoji); err != nil {
			a.logger.Warn("could not add reaction", zap.String("emoji", emoji), zap.Error(err))
		}
	}
}
