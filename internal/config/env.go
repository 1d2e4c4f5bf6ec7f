// Package config loads process settings from the environment and the
// source list from a YAML file.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds every setting read from the environment.
type Env struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"`
	BotConfig    string `env:"BOT_CONFIG" envDefault:"config.yaml"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	AppAddr      string `env:"APP_ADDR" envDefault:":8080"`
	HistoryDSN   string `env:"HISTORY_DSN"`

	PaceDelay         time.Duration `env:"PACE_DELAY" envDefault:"1s"`
	ProviderTimeout   time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"15s"`
	ProviderUserAgent string        `env:"PROVIDER_USER_AGENT" envDefault:"cardbot/1.0"`
	MoxfieldRPS       float64       `env:"MOXFIELD_RPS" envDefault:"1"`
	ArchidektRPS      float64       `env:"ARCHIDEKT_RPS" envDefault:"5"`
	PassTimeout       time.Duration `env:"PASS_TIMEOUT" envDefault:"60s"`

	APIRPS         float64  `env:"API_RPS" envDefault:"5"`
	APIBurst       int      `env:"API_BURST" envDefault:"10"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// LoadEnvFiles reads .env and .env.local without overriding variables that
// are already set.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// ParseEnv parses the environment into an Env.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if e.PaceDelay < 0 {
		return Env{}, fmt.Errorf("parse env: PACE_DELAY must not be negative")
	}
	return e, nil
}
