package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rssbot/store"
)

func TestHashURL(t *testing.T) {
	// sha256 of the url, hex encoded, like the stored key layout expects
	assert.Equal(t,
		"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		store.HashURL("test"),
	)
	assert.Equal(t, store.HashURL("a"), store.HashURL("a"))
	assert.NotEqual(t, store.HashURL("a"), store.HashURL("b"))
}

func TestKeyDerivation(t *testing.T) {
	s := store.NewWithClient(nil, "rssbot")

	url := "https://example.com/entry"
	hashed := store.HashURL(url)

	assert.Equal(t, "rssbot:entry_by_url:"+hashed, s.EntryKey(store.IndexEntryByURL, url))
	assert.Equal(t, "rssbot:entry_user_likes:"+hashed, s.EntryKey(store.IndexUserLikes, url))
	assert.Equal(t, "rssbot:entry_by_message_id:42", s.MessageKey(42))
	assert.Equal(t, "rssbot:lastposttime", s.ScalarKey(store.KeyLastPostTime))
	assert.Equal(t, "rssbot:entry_by_url:*", s.IndexPattern(store.IndexEntryByURL))
}

func TestPing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := store.NewWithClient(client, "rssbot")
	defer s.Close()

	require.NoError(t, s.Ping(context.Background()))
}

func TestPingFailsOnBadAddress(t *testing.T) {
	s := store.New("127.0.0.1:1", 0, "rssbot")
	defer s.Close()

	assert.Error(t, s.Ping(context.Background()))
}
