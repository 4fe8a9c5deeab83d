package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"rssbot/config"
	"rssbot/registry"
	"rssbot/store"
)

func clearCmd() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Forget all posted entries",
		Description: `Removes every delivery record from the registry and resets the
		publication cursor.

		After clearing, entries already present in the feed will be posted
		again on the next update. Do not run while the bot is publishing.`,
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return err
			}

			st := store.New(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.KeyPrefix)
			defer st.Close()
			if err := st.Ping(ctx.Context); err != nil {
				return err
			}

			removed, err := registry.New(st).ClearAll(ctx.Context)
			if err != nil {
				return err
			}
			if err := registry.NewCursor(st).Clear(ctx.Context); err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"removed": removed,
			}).Info("Removed entries")
			return nil
		},
	}
}
