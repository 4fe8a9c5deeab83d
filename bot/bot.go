// Package bot wires the selection engine, entry registry, reaction store and
// chat channel into the publish and reaction cycles.
package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"rssbot/feeds"
	"rssbot/models"
	"rssbot/reactions"
	"rssbot/registry"
	"rssbot/telegram"
)

// Channel is the outbound chat surface the bot publishes to. Implemented by
// the telegram package; faked in tests.
type Channel interface {
	SendEntry(text string, entryURL string, tally models.Tally) (int, error)
	UpdateControls(messageID int, entryURL string, tally models.Tally) error
}

// Source supplies candidates for one publish cycle.
type Source interface {
	Fetch(ctx context.Context) ([]models.Candidate, error)
}

type Bot struct {
	feedTitle string
	maxCount  int

	source    Source
	selector  *feeds.Selector
	registry  *registry.Registry
	cursor    *registry.Cursor
	reactions *reactions.Store // nil disables reaction tracking
	channel   Channel
}

type Options struct {
	FeedTitle string
	MaxCount  int

	Source    Source
	Selector  *feeds.Selector
	Registry  *registry.Registry
	Cursor    *registry.Cursor
	Reactions *reactions.Store
	Channel   Channel
}

func New(opts Options) *Bot {
	return &Bot{
		feedTitle: opts.FeedTitle,
		maxCount:  opts.MaxCount,
		source:    opts.Source,
		selector:  opts.Selector,
		registry:  opts.Registry,
		cursor:    opts.Cursor,
		reactions: opts.Reactions,
		channel:   opts.Channel,
	}
}

// Update runs one publish cycle: poll the feed, select unseen entries,
// publish them and record the deliveries. An empty selection is a normal
// no-op cycle.
func (b *Bot) Update(ctx context.Context) error {
	log.Info("Started feed update")

	candidates, err := b.source.Fetch(ctx)
	if err != nil {
		return err
	}

	selected, err := b.selector.SelectBatch(ctx, candidates, b.maxCount)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"candidates": len(candidates),
		"selected":   len(selected),
	}).Info("Collected entries to post")

	if len(selected) == 0 {
		return nil
	}

	for _, candidate := range selected {
		if err := b.publish(ctx, candidate); err != nil {
			return err
		}
	}

	if err := b.cursor.MarkPostedNow(ctx); err != nil {
		return err
	}
	return nil
}

func (b *Bot) publish(ctx context.Context, candidate models.Candidate) error {
	log.WithFields(log.Fields{
		"url": candidate.URL,
	}).Info("Posting entry")

	text := telegram.RenderEntry(b.feedTitle, candidate)
	messageID, err := b.channel.SendEntry(text, candidate.URL, models.Tally{})
	if err != nil {
		return fmt.Errorf("failed to publish entry %s: %w", candidate.URL, err)
	}

	if err := b.registry.RecordPosted(ctx, candidate.URL, messageID, text); err != nil {
		return err
	}
	return nil
}

// HandleReaction resolves a button press back to its entry, toggles the vote
// and refreshes the displayed tallies. Presses on messages the registry does
// not know are logged and dropped.
func (b *Bot) HandleReaction(ctx context.Context, event telegram.ReactionEvent) error {
	if b.reactions == nil {
		return nil
	}

	record, err := b.registry.LookupByMessageID(ctx, event.MessageID)
	if err != nil {
		return err
	}
	if record == nil {
		log.WithFields(log.Fields{
			"user":      event.UserName,
			"userId":    event.UserID,
			"messageId": event.MessageID,
			"kind":      event.Kind,
		}).Info("Reaction for unknown post, ignoring")
		return nil
	}

	log.WithFields(log.Fields{
		"user":      event.UserName,
		"userId":    event.UserID,
		"url":       record.URL,
		"messageId": event.MessageID,
		"kind":      event.Kind,
	}).Info("Reaction received")

	if err := b.reactions.Toggle(ctx, record.URL, event.UserID, event.Kind); err != nil {
		return err
	}

	tally, err := b.reactions.Tally(ctx, record.URL)
	if err != nil {
		return err
	}

	return b.channel.UpdateControls(record.MessageID, record.URL, tally)
}

// Clear removes every delivery record and resets the publication cursor.
func (b *Bot) Clear(ctx context.Context) (int, error) {
	removed, err := b.registry.ClearAll(ctx)
	if err != nil {
		return removed, err
	}
	if err := b.cursor.Clear(ctx); err != nil {
		return removed, err
	}
	return removed, nil
}
