package shortener_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the original url", func(t *testing.T) {
		f := newFixture(t, nil)
		entry, err := f.service.Create(ctx, "https://example.com/a")
		require.NoError(t, err)

		got, err := f.service.Resolve(ctx, entry.Code)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a", got)
	})

	t.Run("repeated resolves return the same url", func(t *testing.T) {
		f := newFixture(t, nil)
		entry, err := f.service.Create(ctx, "https://example.com/b")
		require.NoError(t, err)

		for range 10 {
			got, err := f.service.Resolve(ctx, entry.Code)
			require.NoError(t, err)
			assert.Equal(t, "https://example.com/b", got)
		}

		assert.Len(t, f.visited.all(), 10)
	})

	t.Run("unknown code", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.service.Resolve(ctx, "doesnotexist")

		require.ErrorIs(t, err, shortener.ErrNotFound)
		assert.Empty(t, f.visited.all())
		assert.Equal(t, 1, f.store.gets)
	})

	t.Run("publishes visit with caller", func(t *testing.T) {
		f := newFixture(t, nil)
		entry, err := f.service.Create(ctx, "https://example.com/c")
		require.NoError(t, err)

		caller := shortener.Caller{ClientIP: "198.51.100.7", UserAgent: "browser", Referrer: "https://ref.example"}
		_, err = f.service.Resolve(shortener.WithCaller(ctx, caller), entry.Code)
		require.NoError(t, err)

		events := f.visited.all()
		require.Len(t, events, 1)
		assert.Equal(t, string(entry.Code), events[0].Code)
		assert.Equal(t, caller.ClientIP, events[0].ClientIP)
		assert.Equal(t, caller.UserAgent, events[0].UserAgent)
		assert.Equal(t, caller.Referrer, events[0].Referrer)
		assert.False(t, events[0].VisitedAt.IsZero())
	})

	t.Run("does not count the visit itself", func(t *testing.T) {
		f := newFixture(t, nil)
		entry, err := f.service.Create(ctx, "https://example.com/d")
		require.NoError(t, err)

		_, err = f.service.Resolve(ctx, entry.Code)
		require.NoError(t, err)

		stored, err := f.service.Get(ctx, entry.Code)
		require.NoError(t, err)
		assert.Zero(t, stored.Visits)
	})

	t.Run("publish failure still redirects", func(t *testing.T) {
		f := newFixture(t, nil)
		entry, err := f.service.Create(ctx, "https://example.com/e")
		require.NoError(t, err)

		f.visited.err = errors.New("broker down")

		got, err := f.service.Resolve(ctx, entry.Code)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/e", got)
	})

	t.Run("retries transient storage failures", func(t *testing.T) {
		f := newFixture(t, nil)
		entry, err := f.service.Create(ctx, "https://example.com/f")
		require.NoError(t, err)

		outage := fmt.Errorf("get: %w", shortener.ErrStorageUnavailable)
		f.store.getErrs = []error{outage, outage}

		got, err := f.service.Resolve(ctx, entry.Code)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/f", got)
		assert.Equal(t, 3, f.store.gets)
	})

	t.Run("gives up after retry budget", func(t *testing.T) {
		f := newFixture(t, nil)
		entry, err := f.service.Create(ctx, "https://example.com/g")
		require.NoError(t, err)

		outage := fmt.Errorf("get: %w", shortener.ErrStorageUnavailable)
		f.store.getErrs = []error{outage, outage, outage, outage, outage}

		_, err = f.service.Resolve(ctx, entry.Code)

		require.ErrorIs(t, err, shortener.ErrStorageUnavailable)
		assert.Equal(t, int(fastRetry.MaxRetries)+1, f.store.gets)
		assert.Empty(t, f.visited.all())
	})
}

func TestResolver_SlowBrokerDoesNotDelayRedirect(t *testing.T) {
	ctx := context.Background()
	repo := newMockStore()
	require.NoError(t, repo.InsertIfAbsent(ctx, &shortener.Entry{Code: "slow001", OriginalURL: "https://example.com/slow"}))

	release := make(chan struct{})
	delivered := make(chan string, 1)
	async := messaging.NewAsyncPublisher(func(event *shortener.VisitedEvent) error {
		<-release
		delivered <- event.Code

		return nil
	}, 16, zap.NewNop())

	resolver := shortener.NewResolver(repo, async.Publish, zap.NewNop(), shortener.WithRetryPolicy(fastRetry))

	begin := time.Now()
	got, err := resolver.Resolve(ctx, "slow001")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/slow", got)
	assert.Less(t, time.Since(begin), 100*time.Millisecond)

	close(release)
	require.NoError(t, async.Shutdown())
	assert.Equal(t, "slow001", <-delivered)
}
