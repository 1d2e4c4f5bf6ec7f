package discord

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func (m *mockSender) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	return m.Called(channelID, messageID, emojiID).Error(0)
}

func voiceUpdate(userID, channelID string) *discordgo.VoiceStateUpdate {
	return &discordgo.VoiceStateUpdate{VoiceState: &discordgo.VoiceState{UserID: userID, ChannelID: channelID}}
}

func newTestAnnouncer(now *time.Time) *Announcer {
	a := NewAnnouncer(AnnouncerConfig{
		UserID:    "42",
		ChannelID: "general",
		Message:   "look who's here",
		Reactions: []string{"🇳", "🇺"},
		Window:    12 * time.Hour,
	}, nil)
	a.now = func() time.Time { return *now }
	return a
}

func TestAnnouncer_AnnouncesOncePerWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	a := newTestAnnouncer(&now)

	sender := new(mockSender)
	sender.On("ChannelMessageSend", "general", "look who's here").Return(&discordgo.Message{ID: "m1"}, nil).Twice()
	sender.On("MessageReactionAdd", "general", "m1", mock.Anything).Return(nil)

	a.Handle(sender, voiceUpdate("42", "voice-1"))
	now = now.Add(time.Hour)
	a.Handle(sender, voiceUpdate("42", "voice-2"))
	now = now.Add(12 * time.Hour)
	a.Handle(sender, voiceUpdate("42", "voice-1"))

	sender.AssertNumberOfCalls(t, "ChannelMessageSend", 2)
	sender.AssertNumberOfCalls(t, "MessageReactionAdd", 4)
	sender.AssertCalled(t, "MessageReactionAdd", "general", "m1", "🇳")
}

func TestAnnouncer_IgnoresOtherEvents(t *testing.T) {
	now := time.Now()
	a := newTestAnnouncer(&now)
	sender := new(mockSender)

	a.Handle(sender, voiceUpdate("7", "voice-1"))
	a.Handle(sender, voiceUpdate("42", ""))
	a.Handle(sender, &discordgo.VoiceStateUpdate{})

	sender.AssertNotCalled(t, "ChannelMessageSend", mock.Anything, mock.Anything)
}

func TestAnnouncer_SendFailure(t *testing.T) {
	now := time.Now()
	a := newTestAnnouncer(&now)
	sender := new(mockSender)
	sender.On("ChannelMessageSend", "general", mock.Anything).Return(nil, errors.New("missing access"))

	a.Handle(sender, voiceUpdate("42", "voice-1"))

	sender.AssertNotCalled(t, "MessageReactionAdd", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, now, a.gate.Last())
}
