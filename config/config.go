package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// TomlRedis holds the connection settings for the Redis instance that backs
// the entry registry, reaction sets and publication cursor.
type TomlRedis struct {
	Addr      string `toml:"addr"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

// TomlFeed describes the feed to poll and the entry selection rules.
type TomlFeed struct {
	Title          string   `toml:"title"`
	URL            string   `toml:"url"`
	MaxPerUpdate   int      `toml:"max_per_update"`
	BlacklistWords []string `toml:"blacklist_words"`
	BlacklistURLs  []string `toml:"blacklist_urls"`
}

// TomlBot holds the Telegram credentials and publishing pace.
type TomlBot struct {
	Token          string   `toml:"token"`
	Proxy          string   `toml:"proxy,omitempty"`
	ChatID         int64    `toml:"chat_id"`
	UpdateInterval duration `toml:"update_interval"`
	Reactions      bool     `toml:"reactions"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Redis TomlRedis `toml:"redis"`
	Feed  TomlFeed  `toml:"feed"`
	Bot   TomlBot   `toml:"bot"`
}

// duration lets TOML carry time.Duration values as strings like "8h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a config with everything optional filled in. Required
// values are left empty so Validate rejects an untouched config.
func Default() *TomlConfig {
	return &TomlConfig{
		Redis: TomlRedis{
			Addr:      "localhost:6379",
			DB:        0,
			KeyPrefix: "rssbot",
		},
		Feed: TomlFeed{
			MaxPerUpdate: 1,
		},
		Bot: TomlBot{
			UpdateInterval: duration{8 * time.Hour},
			Reactions:      true,
		},
	}
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Validate checks that every required value is present. A config that fails
// validation is a fatal startup error, never recovered at runtime.
func (c *TomlConfig) Validate() error {
	var errs []error

	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	if c.Redis.KeyPrefix == "" {
		errs = append(errs, errors.New("redis.key_prefix is required"))
	}
	if c.Feed.URL == "" {
		errs = append(errs, errors.New("feed.url is required"))
	}
	if c.Feed.Title == "" {
		errs = append(errs, errors.New("feed.title is required"))
	}
	if c.Feed.MaxPerUpdate < 1 {
		errs = append(errs, errors.New("feed.max_per_update must be at least 1"))
	}
	if c.Bot.Token == "" {
		errs = append(errs, errors.New("bot.token is required"))
	}
	if c.Bot.ChatID == 0 {
		errs = append(errs, errors.New("bot.chat_id is required"))
	}
	if c.Bot.UpdateInterval.Duration <= 0 {
		errs = append(errs, errors.New("bot.update_interval must be positive"))
	}

	return errors.Join(errs...)
}

// UpdateInterval returns the minimum time between two publish cycles.
func (c *TomlConfig) UpdateInterval() time.Duration {
	return c.Bot.UpdateInterval.Duration
}

// SetUpdateInterval overrides the publish pace. Used by the setup wizard.
func (c *TomlConfig) SetUpdateInterval(d time.Duration) {
	c.Bot.UpdateInterval = duration{d}
}

// WriteConfig marshals the config to a TOML file. Used by the setup wizard.
func WriteConfig(path string, config *TomlConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}
