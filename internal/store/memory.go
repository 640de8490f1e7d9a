package store

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/serroba/shortlinks/internal/shortener"
)

const memoryShards = 32

type memoryRecord struct {
	entry  shortener.Entry
	seq    uint64
	visits atomic.Int64
}

func (r *memoryRecord) snapshot() shortener.Entry {
	e := r.entry
	e.Visits = r.visits.Load()

	return e
}

type memoryShard struct {
	mu      sync.RWMutex
	records map[shortener.Code]*memoryRecord
}

// MemoryStore is a non-durable, sharded in-memory shortener.Repository.
//
// Inserts take the shard write lock. Increments take only the shard read lock and
// update the counter atomically, so redirects to hot codes do not serialize.
type MemoryStore struct {
	shards [memoryShards]memoryShard
	seq    atomic.Uint64
}

// NewMemoryStore creates a new in-memory entry store.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{}
	for i := range m.shards {
		m.shards[i].records = make(map[shortener.Code]*memoryRecord)
	}

	return m
}

func (m *MemoryStore) shard(code shortener.Code) *memoryShard {
	return &m.shards[xxhash.Sum64String(string(code))%memoryShards]
}

func (m *MemoryStore) InsertIfAbsent(_ context.Context, entry *shortener.Entry) error {
	s := m.shard(entry.Code)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[entry.Code]; ok {
		return shortener.ErrCodeExists
	}

	rec := &memoryRecord{entry: *entry, seq: m.seq.Add(1)}
	rec.entry.Visits = 0
	rec.visits.Store(entry.Visits)
	s.records[entry.Code] = rec

	return nil
}

func (m *MemoryStore) Get(_ context.Context, code shortener.Code) (*shortener.Entry, error) {
	s := m.shard(code)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	e := rec.snapshot()

	return &e, nil
}

func (m *MemoryStore) IncrementVisits(_ context.Context, code shortener.Code) (int64, error) {
	s := m.shard(code)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[code]
	if !ok {
		return 0, shortener.ErrNotFound
	}

	return rec.visits.Add(1), nil
}

func (m *MemoryStore) List(_ context.Context, page shortener.Page) ([]shortener.Entry, error) {
	type ordered struct {
		seq   uint64
		entry shortener.Entry
	}

	var all []ordered

	for i := range m.shards {
		s := &m.shards[i]

		s.mu.RLock()
		for _, rec := range s.records {
			all = append(all, ordered{seq: rec.seq, entry: rec.snapshot()})
		}
		s.mu.RUnlock()
	}

	slices.SortFunc(all, func(a, b ordered) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		default:
			return 0
		}
	})

	lo, hi := pageBounds(len(all), page)
	out := make([]shortener.Entry, 0, hi-lo)

	for _, o := range all[lo:hi] {
		out = append(out, o.entry)
	}

	return out, nil
}

// pageBounds clamps page to a slice of length n.
func pageBounds(n int, page shortener.Page) (int, int) {
	lo := min(max(page.Offset, 0), n)
	hi := n

	if page.Limit > 0 && page.Limit < n-lo {
		hi = lo + page.Limit
	}

	return lo, hi
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
