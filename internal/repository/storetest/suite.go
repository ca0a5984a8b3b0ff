// Package storetest holds the behaviour every repository.LinkStore backend
// must share. Backend tests call Run with a constructor for a fresh store.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharipovr/aws-url-shortener/internal/repository"
)

// Factory returns an empty store. Cleanup is registered on t by the factory.
type Factory func(t *testing.T) repository.LinkStore

// Run executes the shared store behaviour against stores built by newStore
func Run(t *testing.T, newStore Factory) {
	t.Run("PutThenGet", func(t *testing.T) { testPutThenGet(t, newStore(t)) })
	t.Run("PutDuplicate", func(t *testing.T) { testPutDuplicate(t, newStore(t)) })
	t.Run("GetUnknown", func(t *testing.T) { testGetUnknown(t, newStore(t)) })
	t.Run("IncrementUnknown", func(t *testing.T) { testIncrementUnknown(t, newStore(t)) })
	t.Run("IncrementSequential", func(t *testing.T) { testIncrementSequential(t, newStore(t)) })
	t.Run("IncrementConcurrent", func(t *testing.T) { testIncrementConcurrent(t, newStore(t)) })
	t.Run("IncrementDelta", func(t *testing.T) { testIncrementDelta(t, newStore(t)) })
	t.Run("IncrementInvalidDelta", func(t *testing.T) { testIncrementInvalidDelta(t, newStore(t)) })
	t.Run("IndependentCodes", func(t *testing.T) { testIndependentCodes(t, newStore(t)) })
}

// createdAt is truncated to microseconds, the coarsest precision of any backend
func createdAt() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func testPutThenGet(t *testing.T, store repository.LinkStore) {
	ctx := context.Background()
	at := createdAt()

	created, err := store.Put(ctx, "abc1234", "https://example.com/x", at)
	require.NoError(t, err)
	assert.Equal(t, "abc1234", created.ShortCode)
	assert.Equal(t, "https://example.com/x", created.OriginalURL)
	assert.True(t, at.Equal(created.CreatedAt), "created_at %v != %v", created.CreatedAt, at)
	assert.Equal(t, int64(0), created.ClickCount)

	got, err := store.Get(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "abc1234", got.ShortCode)
	assert.Equal(t, "https://example.com/x", got.OriginalURL)
	assert.True(t, at.Equal(got.CreatedAt), "created_at %v != %v", got.CreatedAt, at)
	assert.Equal(t, int64(0), got.ClickCount)
}

func testPutDuplicate(t *testing.T, store repository.LinkStore) {
	ctx := context.Background()

	_, err := store.Put(ctx, "dup0001", "https://example.com/first", createdAt())
	require.NoError(t, err)
	require.NoError(t, store.IncrementClicks(ctx, "dup0001", 1))

	_, err = store.Put(ctx, "dup0001", "https://example.com/second", createdAt())
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	// The existing mapping and its counter are untouched
	got, err := store.Get(ctx, "dup0001")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/first", got.OriginalURL)
	assert.Equal(t, int64(1), got.ClickCount)
}

func testGetUnknown(t *testing.T, store repository.LinkStore) {
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testIncrementUnknown(t *testing.T, store repository.LinkStore) {
	ctx := context.Background()

	err := store.IncrementClicks(ctx, "missing", 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Incrementing must not create a record as a side effect
	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testIncrementSequential(t *testing.T, store repository.LinkStore) {
	ctx := context.Background()

	_, err := store.Put(ctx, "seq0001", "https://example.com", createdAt())
	require.NoError(t, err)

	const n = 10
	for i := 0; i < n; i++ {
		require.NoError(t, store.IncrementClicks(ctx, "seq0001", 1))
	}

	got, err := store.Get(ctx, "seq0001")
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.ClickCount)
}

func testIncrementConcurrent(t *testing.T, store repository.LinkStore) {
	ctx := context.Background()

	_, err := store.Put(ctx, "con0001", "https://example.com", createdAt())
	require.NoError(t, err)
	require.NoError(t, store.IncrementClicks(ctx, "con0001", 3))

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.IncrementClicks(ctx, "con0001", 1)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := store.Get(ctx, "con0001")
	require.NoError(t, err)
	assert.Equal(t, int64(n+3), got.ClickCount)
}

func testIncrementDelta(t *testing.T, store repository.LinkStore) {
	ctx := context.Background()

	_, err := store.Put(ctx, "dlt0001", "https://example.com", createdAt())
	require.NoError(t, err)

	require.NoError(t, store.IncrementClicks(ctx, "dlt0001", 5))
	require.NoError(t, store.IncrementClicks(ctx, "dlt0001", 2))

	got, err := store.Get(ctx, "dlt0001")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ClickCount)
}

func testIncrementInvalidDelta(t *testing.T, store repository.LinkStore) {
	ctx := context.Background()

	_, err := store.Put(ctx, "inv0001", "https://example.com", createdAt())
	require.NoError(t, err)

	for _, delta := range []int64{0, -1} {
		err := store.IncrementClicks(ctx, "inv0001", delta)
		assert.ErrorIs(t, err, repository.ErrInvalidDelta, "delta %d", delta)
	}

	got, err := store.Get(ctx, "inv0001")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.ClickCount)
}

func testIndependentCodes(t *testing.T, store repository.LinkStore) {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		code := fmt.Sprintf("ind000%d", i)
		_, err := store.Put(ctx, code, fmt.Sprintf("https://example.com/%d", i), createdAt())
		require.NoError(t, err)
		for j := 0; j < i; j++ {
			require.NoError(t, store.IncrementClicks(ctx, code, 1))
		}
	}

	for i := 0; i < 3; i++ {
		got, err := store.Get(ctx, fmt.Sprintf("ind000%d", i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("https://example.com/%d", i), got.OriginalURL)
		assert.Equal(t, int64(i), got.ClickCount)
	}
}
