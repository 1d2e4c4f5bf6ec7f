package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"cardbot/internal/app"
	"cardbot/internal/config"
	"cardbot/internal/discord"
	"cardbot/internal/platform/logging"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnvFiles()
	env, err := config.ParseEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if env.DiscordToken == "" {
		log.Fatalf("missing required environment variable: DISCORD_TOKEN")
	}

	logger, err := logging.New(env.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.Build(ctx, env, logger)
	if err != nil {
		logger.Fatal("cannot start", zap.Error(err))
	}
	defer application.Close()

	session, err := discordgo.New("Bot " + env.DiscordToken)
	if err != nil {
		logger.Fatal("cannot create discord session", zap.Error(err))
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	handler := discord.NewHandler(application.Search, application.Decks, env.PassTimeout, logger.Named("discord"))
	session.AddHandler(handler.OnInteraction)

	if ann := announcerConfig(application.Sources); ann.UserID != "" {
		announcer := discord.NewAnnouncer(ann, logger.Named("announce"))
		session.AddHandler(announcer.OnVoiceStateUpdate)
		logger.Info("voice announcer enabled", zap.String("user_id", ann.UserID), zap.Duration("window", ann.Window))
	}

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("connected to discord", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
		if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, env.GuildID, discord.Commands()); err != nil {
			logger.Error("cannot register commands", zap.Error(err))
		}
	})

	if err := session.Open(); err != nil {
		logger.Fatal("cannot open discord session", zap.Error(err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("error closing discord session", zap.Error(err))
		}
	}()

	logger.Info("bot running, press Ctrl+C to exit")
	<-ctx.Done()
	logger.Info("shutting down")
}

func announcerConfig(cfg *config.BotConfig) discord.AnnouncerConfig {
	return discord.AnnouncerConfig{
		UserID:    cfg.Announce.UserID,
		ChannelID: cfg.Common.GeneralChannelID,
		Message:   cfg.Announce.Message,
		Reactions: cfg.Announce.Reactions,
		Window:    time.Duration(cfg.Announce.ResetHours) * time.Hour,
	}
}
