package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cqroot/prompt"
	"github.com/cqroot/prompt/input"
	"github.com/urfave/cli/v2"

	"rssbot/config"
)

func setupCmd() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Interactively create a configuration file",
		Description: `Asks for the required settings and writes a starter configuration
		file. Optional settings like blacklists keep their defaults and can
		be edited in the generated file afterwards.`,
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: func(ctx *cli.Context) error {
			cfg := config.Default()

			redisAddr, err := prompt.New().Ask("Redis address:").Input(cfg.Redis.Addr)
			if err != nil {
				return err
			}
			cfg.Redis.Addr = redisAddr

			cfg.Feed.Title, err = prompt.New().Ask("Feed title:").Input("Planet Python")
			if err != nil {
				return err
			}

			cfg.Feed.URL, err = prompt.New().Ask("Feed URL:").Input("https://planetpython.org/rss20.xml")
			if err != nil {
				return err
			}

			cfg.Bot.Token, err = prompt.New().Ask("Bot token:").Input("", input.WithEchoMode(input.EchoNone))
			if err != nil {
				return err
			}

			chatID, err := prompt.New().Ask("Chat id:").Input("")
			if err != nil {
				return err
			}
			cfg.Bot.ChatID, err = strconv.ParseInt(chatID, 10, 64)
			if err != nil {
				return fmt.Errorf("chat id must be an integer: %w", err)
			}

			interval, err := prompt.New().Ask("Update interval:").Input("8h")
			if err != nil {
				return err
			}
			parsed, err := time.ParseDuration(interval)
			if err != nil {
				return fmt.Errorf("invalid update interval: %w", err)
			}
			cfg.SetUpdateInterval(parsed)

			if err := cfg.Validate(); err != nil {
				return err
			}

			path := ctx.String("config")
			if err := config.WriteConfig(path, cfg); err != nil {
				return err
			}
			fmt.Println("Config written to", path)
			return nil
		},
	}
}
