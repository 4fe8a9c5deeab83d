package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rssbot/config"
)

const validConfig = `
[redis]
addr = "localhost:6379"
db = 1
key_prefix = "rssbot"

[feed]
title = "Planet Python"
url = "https://planetpython.org/rss20.xml"
max_per_update = 3
blacklist_words = ["pycon", "sponsored"]
blacklist_urls = ["https://spam.example"]

[bot]
token = "123:abc"
chat_id = -1001234
update_interval = "8h"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, "rssbot", cfg.Redis.KeyPrefix)
	assert.Equal(t, "Planet Python", cfg.Feed.Title)
	assert.Equal(t, 3, cfg.Feed.MaxPerUpdate)
	assert.Equal(t, []string{"pycon", "sponsored"}, cfg.Feed.BlacklistWords)
	assert.Equal(t, []string{"https://spam.example"}, cfg.Feed.BlacklistURLs)
	assert.Equal(t, int64(-1001234), cfg.Bot.ChatID)
	assert.Equal(t, 8*time.Hour, cfg.UpdateInterval())
	assert.True(t, cfg.Bot.Reactions, "reactions default to enabled")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.TomlConfig)
		errMsg string
	}{
		{
			name:   "missing token",
			mutate: func(c *config.TomlConfig) { c.Bot.Token = "" },
			errMsg: "bot.token is required",
		},
		{
			name:   "missing chat id",
			mutate: func(c *config.TomlConfig) { c.Bot.ChatID = 0 },
			errMsg: "bot.chat_id is required",
		},
		{
			name:   "missing feed url",
			mutate: func(c *config.TomlConfig) { c.Feed.URL = "" },
			errMsg: "feed.url is required",
		},
		{
			name:   "missing feed title",
			mutate: func(c *config.TomlConfig) { c.Feed.Title = "" },
			errMsg: "feed.title is required",
		},
		{
			name:   "zero batch size",
			mutate: func(c *config.TomlConfig) { c.Feed.MaxPerUpdate = 0 },
			errMsg: "feed.max_per_update must be at least 1",
		},
		{
			name:   "zero interval",
			mutate: func(c *config.TomlConfig) { c.SetUpdateInterval(0) },
			errMsg: "bot.update_interval must be positive",
		},
		{
			name:   "missing key prefix",
			mutate: func(c *config.TomlConfig) { c.Redis.KeyPrefix = "" },
			errMsg: "redis.key_prefix is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadConfig(writeConfig(t, validConfig))
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "generated.toml")
	require.NoError(t, config.WriteConfig(path, cfg))

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
