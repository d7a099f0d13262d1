// Package kvtest provides conformance tests for kv.Store implementations
package kvtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdblog/vdblog-backend/pkg/kv"
)

// StoreFactory creates a fresh Store instance for testing
type StoreFactory func(t *testing.T) kv.Store

// RunConformanceTests runs all conformance tests against a Store implementation
func RunConformanceTests(t *testing.T, factory StoreFactory) {
	tests := []struct {
		name string
		test func(t *testing.T, store kv.Store, prefix string)
	}{
		{"SetGet", testSetGet},
		{"GetNonExistent", testGetNonExistent},
		{"Overwrite", testOverwrite},
		{"Del", testDel},
		{"SetWithTTL", testSetWithTTL},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			// Unique prefix keeps runs against a shared Redis isolated.
			tt.test(t, store, "test:"+uuid.NewString()+":")
		})
	}
}

func testSetGet(t *testing.T, store kv.Store, prefix string) {
	ctx := context.Background()
	key := prefix + "string"

	require.NoError(t, store.Set(ctx, key, []byte("hello world")))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), got)
}

func testGetNonExistent(t *testing.T, store kv.Store, prefix string) {
	_, err := store.Get(context.Background(), prefix+"missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func testOverwrite(t *testing.T, store kv.Store, prefix string) {
	ctx := context.Background()
	key := prefix + "overwrite"

	require.NoError(t, store.Set(ctx, key, []byte("one"), 50*time.Millisecond))
	require.NoError(t, store.Set(ctx, key, []byte("two")))

	// A plain Set clears any previous expiry.
	time.Sleep(150 * time.Millisecond)
	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func testDel(t *testing.T, store kv.Store, prefix string) {
	ctx := context.Background()
	a, b := prefix+"a", prefix+"b"

	require.NoError(t, store.Set(ctx, a, []byte("1")))
	require.NoError(t, store.Set(ctx, b, []byte("2")))

	n, err := store.Del(ctx, a, b, prefix+"missing")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = store.Get(ctx, a)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func testSetWithTTL(t *testing.T, store kv.Store, prefix string) {
	ctx := context.Background()
	key := prefix + "ttl"

	require.NoError(t, store.Set(ctx, key, []byte("short"), 100*time.Millisecond))

	_, err := store.Get(ctx, key)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := store.Get(ctx, key)
		return err == kv.ErrNotFound
	}, 2*time.Second, 20*time.Millisecond)
}

func testPing(t *testing.T, store kv.Store, prefix string) {
	assert.NoError(t, store.Ping(context.Background()))
}
