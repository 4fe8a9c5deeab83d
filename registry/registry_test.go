package registry_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rssbot/registry"
	"rssbot/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return store.NewWithClient(client, "rssbot")
}

func TestRecordPostedAndWasPosted(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(newTestStore(t))

	url := "https://example.com/entry"
	posted, err := reg.WasPosted(ctx, url)
	require.NoError(t, err)
	assert.False(t, posted)

	require.NoError(t, reg.RecordPosted(ctx, url, 42, "<b>[Feed]</b>"))

	// Dedup check stays true however often it is asked
	for i := 0; i < 3; i++ {
		posted, err = reg.WasPosted(ctx, url)
		require.NoError(t, err)
		assert.True(t, posted)
	}

	posted, err = reg.WasPosted(ctx, "https://example.com/other")
	require.NoError(t, err)
	assert.False(t, posted)
}

func TestLookups(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(newTestStore(t))

	url := "https://example.com/entry"
	text := "<b>[Feed]</b>\n<a href=\"https://example.com/entry\">Title</a>"
	require.NoError(t, reg.RecordPosted(ctx, url, 42, text))

	byURL, err := reg.LookupByURL(ctx, url)
	require.NoError(t, err)
	require.NotNil(t, byURL)
	assert.Equal(t, url, byURL.URL)
	assert.Equal(t, 42, byURL.MessageID)
	assert.Equal(t, text, byURL.RenderedText)

	byMessage, err := reg.LookupByMessageID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, byMessage)
	assert.Equal(t, byURL, byMessage)
}

func TestLookupMissReturnsNil(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(newTestStore(t))

	record, err := reg.LookupByURL(ctx, "https://example.com/never-posted")
	require.NoError(t, err)
	assert.Nil(t, record)

	record, err = reg.LookupByMessageID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	reg := registry.New(st)

	urls := []string{
		"https://example.com/u1",
		"https://example.com/u2",
		"https://example.com/u3",
	}
	for i, url := range urls {
		require.NoError(t, reg.RecordPosted(ctx, url, 100+i, "text"))
	}

	removed, err := reg.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(urls), removed)

	for _, url := range urls {
		posted, err := reg.WasPosted(ctx, url)
		require.NoError(t, err)
		assert.False(t, posted)
	}

	record, err := reg.LookupByMessageID(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, record)

	// Clearing an empty registry removes nothing
	removed, err = reg.ClearAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestClearAllLeavesOtherNamespacesAlone(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	reg := registry.New(st)
	cursor := registry.NewCursor(st)

	require.NoError(t, reg.RecordPosted(ctx, "https://example.com/u1", 1, "text"))
	require.NoError(t, cursor.MarkPostedNow(ctx))

	_, err := reg.ClearAll(ctx)
	require.NoError(t, err)

	last, err := cursor.LastPostedAt(ctx)
	require.NoError(t, err)
	assert.NotNil(t, last)
}
