// Package registry tracks which feed entries have already been published.
// It keeps a forward index from entry url to delivery record and a reverse
// index from Telegram message id back to the same record, both in Redis.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"rssbot/models"
	"rssbot/store"
)

type Registry struct {
	store *store.Store
}

func New(s *store.Store) *Registry {
	return &Registry{store: s}
}

// WasPosted reports whether a delivery record exists for url.
func (r *Registry) WasPosted(ctx context.Context, url string) (bool, error) {
	key := r.store.EntryKey(store.IndexEntryByURL, url)
	n, err := r.store.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check posted state: %w", err)
	}
	return n > 0, nil
}

// RecordPosted creates the delivery record for url. The forward index is
// written before the reverse one: if the process dies in between, the entry
// still never gets posted twice, at the cost of reaction lookups missing for
// that single message.
func (r *Registry) RecordPosted(ctx context.Context, url string, messageID int, renderedText string) error {
	record := models.DeliveryRecord{
		URL:          url,
		MessageID:    messageID,
		RenderedText: renderedText,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery record: %w", err)
	}

	client := r.store.Client()
	urlKey := r.store.EntryKey(store.IndexEntryByURL, url)
	if err := client.Set(ctx, urlKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write forward index: %w", err)
	}

	messageKey := r.store.MessageKey(messageID)
	if err := client.Set(ctx, messageKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write reverse index: %w", err)
	}

	return nil
}

// LookupByURL returns the delivery record for url, or nil if none exists.
func (r *Registry) LookupByURL(ctx context.Context, url string) (*models.DeliveryRecord, error) {
	return r.lookup(ctx, r.store.EntryKey(store.IndexEntryByURL, url))
}

// LookupByMessageID resolves a message id back to its delivery record.
// A nil record with nil error means the message is unknown to the registry,
// e.g. it predates the bot or was cleared; callers are expected to ignore
// such events.
func (r *Registry) LookupByMessageID(ctx context.Context, messageID int) (*models.DeliveryRecord, error) {
	return r.lookup(ctx, r.store.MessageKey(messageID))
}

func (r *Registry) lookup(ctx context.Context, key string) (*models.DeliveryRecord, error) {
	data, err := r.store.Client().Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read delivery record: %w", err)
	}

	var record models.DeliveryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal delivery record: %w", err)
	}
	return &record, nil
}

// ClearAll deletes every delivery record from both indices and returns how
// many records were removed. Not atomic across the whole set; callers must
// not run it concurrently with a publish cycle.
func (r *Registry) ClearAll(ctx context.Context) (int, error) {
	client := r.store.Client()

	removed, err := r.deleteByPattern(ctx, client, r.store.IndexPattern(store.IndexEntryByURL))
	if err != nil {
		return removed, err
	}

	reverse, err := r.deleteByPattern(ctx, client, r.store.IndexPattern(store.IndexEntryByMessageID))
	if err != nil {
		return removed, err
	}
	log.WithFields(log.Fields{
		"records":     removed,
		"reverseKeys": reverse,
	}).Debug("Cleared entry registry")

	return removed, nil
}

func (r *Registry) deleteByPattern(ctx context.Context, client *redis.Client, pattern string) (int, error) {
	var deleted int
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan keys: %w", err)
	}
	return deleted, nil
}
