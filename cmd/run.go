package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"rssbot/bot"
	"rssbot/config"
	"rssbot/feeds"
	"rssbot/reactions"
	"rssbot/registry"
	"rssbot/store"
	"rssbot/telegram"
)

// tickInterval is how often the loop checks whether the publication cursor
// allows another update. The actual pace comes from bot.update_interval.
const tickInterval = time.Minute

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the bot",
		Description: `Starts the continuous poll loop and the reaction listener.

		Each minute the bot checks whether the configured update interval
		has passed since the last published entry, and if so fetches the
		feed and posts the next unseen entries. Reaction button presses
		are handled as they arrive.`,
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rssBot, channel, st, err := buildBot(runCtx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			go channel.Listen(runCtx, func(ctx context.Context, event telegram.ReactionEvent) {
				if err := rssBot.HandleReaction(ctx, event); err != nil {
					log.Error("Failed to handle reaction: ", err)
				}
			})

			log.Info("Starting RSS bot")
			ticker := time.NewTicker(tickInterval)
			defer ticker.Stop()

			cursor := registry.NewCursor(st)
			for {
				select {
				case <-runCtx.Done():
					log.Info("Gracefully shutting down...")
					return nil
				case <-ticker.C:
					due, err := cursor.ShouldRunNow(runCtx, cfg.UpdateInterval(), time.Now().UTC())
					if err != nil {
						log.Error("Failed to read publication cursor: ", err)
						continue
					}
					if !due {
						continue
					}
					if err := rssBot.Update(runCtx); err != nil {
						log.Error("Feed update failed: ", err)
					}
				}
			}
		},
	}
}

// buildBot constructs the store, core components and Telegram channel from
// the validated config.
func buildBot(ctx context.Context, cfg *config.TomlConfig) (*bot.Bot, *telegram.Channel, *store.Store, error) {
	st := store.New(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.KeyPrefix)
	if err := st.Ping(ctx); err != nil {
		return nil, nil, nil, err
	}

	channel, err := telegram.New(cfg.Bot.Token, cfg.Bot.Proxy, cfg.Bot.ChatID)
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}

	entryRegistry := registry.New(st)

	var reactionStore *reactions.Store
	if cfg.Bot.Reactions {
		reactionStore = reactions.New(st)
	}

	rssBot := bot.New(bot.Options{
		FeedTitle: cfg.Feed.Title,
		MaxCount:  cfg.Feed.MaxPerUpdate,
		Source:    feeds.NewFetcher(cfg.Feed.URL),
		Selector:  feeds.NewSelector(entryRegistry, cfg.Feed.BlacklistWords, cfg.Feed.BlacklistURLs),
		Registry:  entryRegistry,
		Cursor:    registry.NewCursor(st),
		Reactions: reactionStore,
		Channel:   channel,
	})

	return rssBot, channel, st, nil
}
