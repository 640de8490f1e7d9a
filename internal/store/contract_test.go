package store_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniqueCode(prefix string) shortener.Code {
	return shortener.Code(prefix + uuid.NewString()[:8])
}

func newEntry(code shortener.Code, url string) *shortener.Entry {
	return &shortener.Entry{
		Code:        code,
		OriginalURL: url,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

// runRepositoryContract exercises behavior every shortener.Repository must share.
// newRepo must return an empty store.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) shortener.Repository) {
	t.Helper()

	ctx := context.Background()

	t.Run("insert and get", func(t *testing.T) {
		repo := newRepo(t)
		entry := newEntry(uniqueCode("get"), "https://example.com/a?b=c#d")

		require.NoError(t, repo.InsertIfAbsent(ctx, entry))

		got, err := repo.Get(ctx, entry.Code)
		require.NoError(t, err)
		assert.Equal(t, entry.Code, got.Code)
		assert.Equal(t, entry.OriginalURL, got.OriginalURL)
		assert.Equal(t, int64(0), got.Visits)
		assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("returned entries are copies", func(t *testing.T) {
		repo := newRepo(t)
		entry := newEntry(uniqueCode("copy"), "https://example.com")
		require.NoError(t, repo.InsertIfAbsent(ctx, entry))

		entry.OriginalURL = "https://mutated.example.com"

		got, err := repo.Get(ctx, entry.Code)
		require.NoError(t, err)
		got.OriginalURL = "https://also-mutated.example.com"
		got.Visits = 99

		again, err := repo.Get(ctx, entry.Code)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", again.OriginalURL)
		assert.Equal(t, int64(0), again.Visits)
	})

	t.Run("insert never overwrites", func(t *testing.T) {
		repo := newRepo(t)
		code := uniqueCode("dup")

		require.NoError(t, repo.InsertIfAbsent(ctx, newEntry(code, "https://old.example.com")))

		err := repo.InsertIfAbsent(ctx, newEntry(code, "https://new.example.com"))
		require.ErrorIs(t, err, shortener.ErrCodeExists)

		got, err := repo.Get(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, "https://old.example.com", got.OriginalURL)
	})

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.Get(ctx, uniqueCode("missing"))

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("increment returns new count", func(t *testing.T) {
		repo := newRepo(t)
		entry := newEntry(uniqueCode("inc"), "https://example.com")
		require.NoError(t, repo.InsertIfAbsent(ctx, entry))

		first, err := repo.IncrementVisits(ctx, entry.Code)
		require.NoError(t, err)
		second, err := repo.IncrementVisits(ctx, entry.Code)
		require.NoError(t, err)

		assert.Equal(t, int64(1), first)
		assert.Equal(t, int64(2), second)

		got, err := repo.Get(ctx, entry.Code)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Visits)
	})

	t.Run("increment missing returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.IncrementVisits(ctx, uniqueCode("missing"))

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("list is in creation order and paginates", func(t *testing.T) {
		repo := newRepo(t)

		var codes []shortener.Code

		for i := range 5 {
			code := uniqueCode("list")
			codes = append(codes, code)
			require.NoError(t, repo.InsertIfAbsent(ctx, newEntry(code, "https://example.com/"+string(rune('a'+i)))))
		}

		all, err := repo.List(ctx, shortener.Page{})
		require.NoError(t, err)
		assert.Equal(t, codes, entryCodes(all))

		page, err := repo.List(ctx, shortener.Page{Offset: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, codes[1:3], entryCodes(page))

		tail, err := repo.List(ctx, shortener.Page{Offset: 3, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, codes[3:], entryCodes(tail))

		past, err := repo.List(ctx, shortener.Page{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, past)
	})

	t.Run("list with maximal limit returns the rest", func(t *testing.T) {
		repo := newRepo(t)

		var codes []shortener.Code

		for range 3 {
			code := uniqueCode("max")
			codes = append(codes, code)
			require.NoError(t, repo.InsertIfAbsent(ctx, newEntry(code, "https://example.com/max")))
		}

		all, err := repo.List(ctx, shortener.Page{Limit: math.MaxInt})
		require.NoError(t, err)
		assert.Equal(t, codes, entryCodes(all))

		rest, err := repo.List(ctx, shortener.Page{Offset: 1, Limit: math.MaxInt})
		require.NoError(t, err)
		assert.Equal(t, codes[1:], entryCodes(rest))
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		repo := newRepo(t)
		entry := newEntry(uniqueCode("race"), "https://example.com")
		require.NoError(t, repo.InsertIfAbsent(ctx, entry))

		const workers, perWorker = 8, 25

		var wg sync.WaitGroup

		errs := make(chan error, workers*perWorker)

		for range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				for range perWorker {
					if _, err := repo.IncrementVisits(ctx, entry.Code); err != nil {
						errs <- err
					}
				}
			}()
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		got, err := repo.Get(ctx, entry.Code)
		require.NoError(t, err)
		assert.Equal(t, int64(workers*perWorker), got.Visits)
	})

	t.Run("concurrent inserts of one code admit exactly one", func(t *testing.T) {
		repo := newRepo(t)
		code := uniqueCode("claim")

		const workers = 10

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
			exists  int
		)

		for range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				err := repo.InsertIfAbsent(ctx, newEntry(code, "https://example.com"))

				mu.Lock()
				defer mu.Unlock()

				switch {
				case err == nil:
					created++
				case errors.Is(err, shortener.ErrCodeExists):
					exists++
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Equal(t, workers-1, exists)
	})
}

func entryCodes(entries []shortener.Entry) []shortener.Code {
	codes := make([]shortener.Code, 0, len(entries))
	for _, e := range entries {
		codes = append(codes, e.Code)
	}

	return codes
}
