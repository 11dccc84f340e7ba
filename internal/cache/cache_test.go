package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_SetGet(t *testing.T) {
	c := NewMemoryClient(10)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, TrustKey("A1"), []byte(`{"score":0.5}`), time.Minute))

	got, err := c.Get(ctx, TrustKey("A1"))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"score":0.5}`), got)
}

func TestMemoryClient_MissAndDelete(t *testing.T) {
	c := NewMemoryClient(10)
	defer c.Close()
	ctx := context.Background()

	_, err := c.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_ExpiredEntriesMiss(t *testing.T) {
	c := NewMemoryClient(10)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_EvictsAtCapacity(t *testing.T) {
	c := NewMemoryClient(3)
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Minute))
	}

	// Capacity stays bounded; the most recent write always lands.
	got, err := c.Get(ctx, "k4")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryClient_CloseStopsCleanupAndIsIdempotent(t *testing.T) {
	c := NewMemoryClient(10)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	select {
	case <-c.done:
	default:
		t.Fatal("done channel must be closed after Close")
	}

	// Closed client still serves reads of existing entries.
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestTrustKey(t *testing.T) {
	assert.Equal(t, "trust:B012345", TrustKey("B012345"))
}
