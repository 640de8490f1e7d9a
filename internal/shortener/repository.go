package shortener

import "context"

// Repository is the storage contract for entries.
//
// InsertIfAbsent must never overwrite an existing entry and reports ErrCodeExists instead.
// IncrementVisits must be atomic per code. Reads return copies owned by the caller.
type Repository interface {
	InsertIfAbsent(ctx context.Context, entry *Entry) error
	Get(ctx context.Context, code Code) (*Entry, error)
	IncrementVisits(ctx context.Context, code Code) (int64, error)
	List(ctx context.Context, page Page) ([]Entry, error)
}
