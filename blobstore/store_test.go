package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// runStoreContract exercises the Store semantics every implementation
// must satisfy.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "a/one", []byte("first")))
	require.NoError(t, store.Put(ctx, "a/two", []byte("second")))
	require.NoError(t, store.Put(ctx, "b/three", []byte("third")))

	data, err := store.Get(ctx, "a/one")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data)

	// Put replaces.
	require.NoError(t, store.Put(ctx, "a/one", []byte("replaced")))
	data, err = store.Get(ctx, "a/one")
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), data)

	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one", "a/two"}, names)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one", "a/two", "b/three"}, names)

	require.NoError(t, store.Delete(ctx, "a/one"))
	_, err = store.Get(ctx, "a/one")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing blob is not an error.
	require.NoError(t, store.Delete(ctx, "a/one"))
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestLocalStoreContract(t *testing.T) {
	runStoreContract(t, NewLocalStore(t.TempDir()))
}

func TestThrottledStoreContract(t *testing.T) {
	limiter := rate.NewLimiter(rate.Inf, 1<<20)
	runStoreContract(t, NewThrottledStore(NewMemoryStore(), limiter))
}

func TestCachingStoreContract(t *testing.T) {
	runStoreContract(t, NewCachingStore(NewMemoryStore(), 1<<20))
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	in := []byte("payload")
	require.NoError(t, store.Put(ctx, "k", in))
	in[0] = 'X'

	out, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), out)

	// Mutating the returned slice must not poison later reads.
	out[0] = 'Y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), again)
}

func TestCachingStoreStats(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	store := NewCachingStore(inner, 1<<20)

	require.NoError(t, store.Put(ctx, "k", []byte("v")))

	_, err := store.Get(ctx, "k") // miss, fills cache
	require.NoError(t, err)
	_, err = store.Get(ctx, "k") // hit
	require.NoError(t, err)
	_, err = store.Get(ctx, "k") // hit
	require.NoError(t, err)

	hits, misses, evictions := store.Stats()
	assert.EqualValues(t, 2, hits)
	assert.EqualValues(t, 1, misses)
	assert.Zero(t, evictions)
}

func TestCachingStoreEviction(t *testing.T) {
	ctx := context.Background()
	store := NewCachingStore(NewMemoryStore(), 10)

	require.NoError(t, store.Put(ctx, "a", make([]byte, 6)))
	require.NoError(t, store.Put(ctx, "b", make([]byte, 6)))

	_, err := store.Get(ctx, "a")
	require.NoError(t, err)
	_, err = store.Get(ctx, "b") // evicts a: 12 > 10
	require.NoError(t, err)

	_, _, evictions := store.Stats()
	assert.EqualValues(t, 1, evictions)

	// Oversized blobs bypass the cache entirely.
	require.NoError(t, store.Put(ctx, "big", make([]byte, 100)))
	_, err = store.Get(ctx, "big")
	require.NoError(t, err)
	_, err = store.Get(ctx, "big")
	require.NoError(t, err)
	hits, _, _ := store.Stats()
	assert.EqualValues(t, 0, hits)
}

func TestLocalStoreNestedNames(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	require.NoError(t, store.Put(ctx, "models/gmm/speech.bin", []byte("x")))
	names, err := store.List(ctx, "models/")
	require.NoError(t, err)
	assert.Equal(t, []string{"models/gmm/speech.bin"}, names)
}
