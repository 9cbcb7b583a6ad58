package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryMarkerStoreSeenOrMark(t *testing.T) {
	store := NewMemoryMarkerStore()
	ctx := context.Background()

	seen, err := store.SeenOrMark(ctx, 42, "RFND1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = store.SeenOrMark(ctx, 42, "RFND1")
	require.NoError(t, err)
	assert.True(t, seen)

	// Different refund on the same order is a fresh marker.
	seen, err = store.SeenOrMark(ctx, 42, "RFND2")
	require.NoError(t, err)
	assert.False(t, seen)

	// Same refund id on a different order is also fresh.
	seen, err = store.SeenOrMark(ctx, 43, "RFND1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMemoryMarkerStoreExpiry(t *testing.T) {
	store := NewMemoryMarkerStore()
	ctx := context.Background()

	current := time.Now()
	store.now = func() time.Time { return current }

	seen, err := store.SeenOrMark(ctx, 7, "RFND1")
	require.NoError(t, err)
	assert.False(t, seen)

	current = current.Add(299 * time.Second)
	seen, err = store.SeenOrMark(ctx, 7, "RFND1")
	require.NoError(t, err)
	assert.True(t, seen)

	current = current.Add(2 * time.Second)
	seen, err = store.SeenOrMark(ctx, 7, "RFND1")
	require.NoError(t, err)
	assert.False(t, seen)
}
