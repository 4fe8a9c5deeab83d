package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "rssbot",
		Usage: "Post new RSS feed entries to a Telegram chat",
		Description: `A Telegram bot that periodically polls an RSS feed and posts new,
		unseen entries to a chat, one message per entry with like/dislike
		buttons.

		Posted entries are tracked in Redis so an entry is never posted
		twice, even across restarts. Reactions toggle per-user votes and
		the message's buttons always show the current counts.

		Flags can generally be set via environment variables, e.g.:

		--config => RSSBOT_CONFIG=config.toml
		`,
		Commands: []*cli.Command{
			runCmd(),
			clearCmd(),
			setupCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.toml",
		Usage:   "Path to the TOML configuration file",
		EnvVars: []string{"RSSBOT_CONFIG"},
	}
}
