package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rssbot/store"
)

// Cursor tracks when the last message was published. It only paces how often
// a publish cycle is allowed to act; dedup correctness never depends on it.
type Cursor struct {
	store *store.Store
}

func NewCursor(s *store.Store) *Cursor {
	return &Cursor{store: s}
}

// LastPostedAt returns the time of the last successful publish, or nil if
// nothing was ever published.
func (c *Cursor) LastPostedAt(ctx context.Context) (*time.Time, error) {
	value, err := c.store.Client().Get(ctx, c.store.ScalarKey(store.KeyLastPostTime)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last post time: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last post time: %w", err)
	}
	return &t, nil
}

// MarkPostedNow records the current time as the last publish time.
func (c *Cursor) MarkPostedNow(ctx context.Context) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := c.store.Client().Set(ctx, c.store.ScalarKey(store.KeyLastPostTime), now, 0).Err(); err != nil {
		return fmt.Errorf("failed to set last post time: %w", err)
	}
	return nil
}

// Clear removes the last publish time.
func (c *Cursor) Clear(ctx context.Context) error {
	if err := c.store.Client().Del(ctx, c.store.ScalarKey(store.KeyLastPostTime)).Err(); err != nil {
		return fmt.Errorf("failed to clear last post time: %w", err)
	}
	return nil
}

// ShouldRunNow reports whether enough time has passed since the last publish
// for another cycle to act. True if nothing was ever published.
func (c *Cursor) ShouldRunNow(ctx context.Context, interval time.Duration, now time.Time) (bool, error) {
	last, err := c.LastPostedAt(ctx)
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	return now.Sub(*last) >= interval, nil
}
