package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cardbot/internal/mtg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
common:
  general_channel_id: "111"
mtg:
  collections:
    - provider: archidekt
      discord_user: alice
      provider_collection: "4242"
    - provider: moxfield
      discord_user: bob
      provider_collection: binder-1
  community_decks:
    - provider: moxfield
      discord_user: carol
      provider_deck: abc
announce:
  user_id: "222"
  reset_hours: 12
  message: "He's here"
  reactions: ["🇳", "🇺"]
`

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := LoadSources(path)
	require.NoError(t, err)

	assert.Equal(t, "111", cfg.Common.GeneralChannelID)
	assert.Equal(t, []mtg.CollectionSource{
		{Provider: mtg.Archidekt, OwnerLabel: "alice", RemoteCollectionID: "4242"},
		{Provider: mtg.Moxfield, OwnerLabel: "bob", RemoteCollectionID: "binder-1"},
	}, cfg.CollectionSources())
	assert.Equal(t, []mtg.DeckSource{
		{Provider: mtg.Moxfield, OwnerLabel: "carol", RemoteDeckID: "abc"},
	}, cfg.DeckSources())
	assert.Equal(t, 12, cfg.Announce.ResetHours)
	assert.Equal(t, []string{"🇳", "🇺"}, cfg.Announce.Reactions)
}

func TestLoadSources_Missing(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseSources_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown provider",
			doc:  "mtg:\n  collections:\n    - {provider: deckstats, discord_user: a, provider_collection: '1'}\n",
			want: `BotConfig.MTG.Collections[0].Provider must be one of [archidekt moxfield], got "deckstats"`,
		},
		{
			name: "missing deck id",
			doc:  "mtg:\n  community_decks:\n    - {provider: moxfield, discord_user: a}\n",
			want: "BotConfig.MTG.CommunityDecks[0].ProviderDeck is required",
		},
		{
			name: "announce without message",
			doc:  "announce: {user_id: '1'}\n",
			want: "BotConfig.Announce.Message is required",
		},
		{
			name: "malformed yaml",
			doc:  "mtg: [",
			want: "failed to parse config",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSources([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseSources_Empty(t *testing.T) {
	cfg, err := ParseSources([]byte("{}"))
	require.NoError(t, err)
	assert.Empty(t, cfg.CollectionSources())
	assert.Empty(t, cfg.DeckSources())
}

func TestParseEnv_Defaults(t *testing.T) {
	for _, k := range []string{"BOT_CONFIG", "APP_ADDR", "PACE_DELAY", "MOXFIELD_RPS", "HISTORY_DSN", "ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	e, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", e.BotConfig)
	assert.Equal(t, ":8080", e.AppAddr)
	assert.Equal(t, time.Second, e.PaceDelay)
	assert.Equal(t, 15*time.Second, e.ProviderTimeout)
	assert.Equal(t, 60*time.Second, e.PassTimeout)
	assert.InDelta(t, 1.0, e.MoxfieldRPS, 0)
	assert.Empty(t, e.HistoryDSN)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("PACE_DELAY", "250ms")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("HISTORY_DSN", "sqlite://history.db")

	e, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, e.PaceDelay)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, e.AllowedOrigins)
	assert.Equal(t, "sqlite://history.db", e.HistoryDSN)
}

func TestParseEnv_Invalid(t *testing.T) {
	t.Setenv("PACE_DELAY", "soon")
	_, err := ParseEnv()
	assert.Error(t, err)

	t.Setenv("PACE_DELAY", "-1s")
	_, err = ParseEnv()
	assert.Error(t, err)
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("LOG_LEVEL=debug\nGUILD_ID=from_file\n"), 0o644))

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("GUILD_ID", "")
	require.NoError(t, os.Unsetenv("GUILD_ID"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	LoadEnvFiles()

	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "from_file", os.Getenv("GUILD_ID"))
}
