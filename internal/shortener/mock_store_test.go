package shortener_test

import (
	"context"
	"sync"

	"github.com/serroba/shortlinks/internal/shortener"
)

type mockStore struct {
	mu      sync.Mutex
	entries map[shortener.Code]shortener.Entry
	order   []shortener.Code
	inserts int
	gets    int
	// getErrs are returned by successive Get calls before falling through to the map.
	getErrs []error
	listErr error
}

func newMockStore() *mockStore {
	return &mockStore{entries: make(map[shortener.Code]shortener.Entry)}
}

func (m *mockStore) InsertIfAbsent(_ context.Context, entry *shortener.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inserts++

	if _, ok := m.entries[entry.Code]; ok {
		return shortener.ErrCodeExists
	}

	m.entries[entry.Code] = *entry
	m.order = append(m.order, entry.Code)

	return nil
}

func (m *mockStore) Get(_ context.Context, code shortener.Code) (*shortener.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	if m.gets <= len(m.getErrs) && m.getErrs[m.gets-1] != nil {
		return nil, m.getErrs[m.gets-1]
	}

	e, ok := m.entries[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &e, nil
}

func (m *mockStore) IncrementVisits(_ context.Context, code shortener.Code) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[code]
	if !ok {
		return 0, shortener.ErrNotFound
	}

	e.Visits++
	m.entries[code] = e

	return e.Visits, nil
}

func (m *mockStore) List(_ context.Context, page shortener.Page) ([]shortener.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	out := make([]shortener.Entry, 0, len(m.order))
	for i, code := range m.order {
		if i < page.Offset {
			continue
		}

		if page.Limit > 0 && len(out) == page.Limit {
			break
		}

		out = append(out, m.entries[code])
	}

	return out, nil
}

func (m *mockStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

// recorder collects published events.
type recorder[T any] struct {
	mu     sync.Mutex
	events []T
	err    error
}

func (r *recorder[T]) publish(event *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}

	r.events = append(r.events, *event)

	return nil
}

func (r *recorder[T]) all() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]T(nil), r.events...)
}
