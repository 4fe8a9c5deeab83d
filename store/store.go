// Package store wraps the Redis connection shared by the entry registry,
// reaction sets and publication cursor. Each of those owns a disjoint index
// name under the configured key prefix; this package only derives keys and
// hands out the client.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	IndexEntryByURL       = "entry_by_url"
	IndexEntryByMessageID = "entry_by_message_id"
	IndexUserLikes        = "entry_user_likes"
	IndexUserDislikes     = "entry_user_dislikes"
	KeyLastPostTime       = "lastposttime"
)

type Store struct {
	client *redis.Client
	prefix string
}

func New(addr string, db int, prefix string) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		prefix: prefix,
	}
}

// NewWithClient wires an existing client, e.g. one pointed at a test server.
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Client() *redis.Client {
	return s.client
}

// Ping verifies the connection so a bad address fails at startup instead of
// on the first publish cycle.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// EntryKey derives the storage key for an entry-scoped index. The url is
// hashed so keys stay bounded and free of characters Redis tooling chokes
// on; the digest carries no security property.
func (s *Store) EntryKey(index string, url string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, index, HashURL(url))
}

// MessageKey derives the storage key for the reverse message-id index.
func (s *Store) MessageKey(messageID int) string {
	return fmt.Sprintf("%s:%s:%d", s.prefix, IndexEntryByMessageID, messageID)
}

// ScalarKey derives the storage key for a named scalar like the cursor.
func (s *Store) ScalarKey(name string) string {
	return fmt.Sprintf("%s:%s", s.prefix, name)
}

// IndexPattern returns the SCAN match pattern covering every key of an index.
func (s *Store) IndexPattern(index string) string {
	return fmt.Sprintf("%s:%s:*", s.prefix, index)
}

func HashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
