package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rssbot/registry"
)

func TestCursorLifecycle(t *testing.T) {
	ctx := context.Background()
	cursor := registry.NewCursor(newTestStore(t))

	last, err := cursor.LastPostedAt(ctx)
	require.NoError(t, err)
	assert.Nil(t, last, "cursor should be absent before any publish")

	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, cursor.MarkPostedNow(ctx))
	after := time.Now().UTC().Add(time.Second)

	last, err = cursor.LastPostedAt(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.After(before) && last.Before(after))

	require.NoError(t, cursor.Clear(ctx))

	last, err = cursor.LastPostedAt(ctx)
	require.NoError(t, err)
	assert.Nil(t, last, "cursor should be absent after clear")
}

func TestShouldRunNow(t *testing.T) {
	ctx := context.Background()
	cursor := registry.NewCursor(newTestStore(t))
	interval := 8 * time.Hour

	// Never published: always due
	due, err := cursor.ShouldRunNow(ctx, interval, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, due)

	require.NoError(t, cursor.MarkPostedNow(ctx))

	due, err = cursor.ShouldRunNow(ctx, interval, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, due, "interval has not passed yet")

	due, err = cursor.ShouldRunNow(ctx, interval, time.Now().UTC().Add(interval+time.Minute))
	require.NoError(t, err)
	assert.True(t, due, "interval has passed")
}
