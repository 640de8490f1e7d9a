package shortener

import "time"

// Code represents a short URL code.
type Code string

// Entry is a stored mapping from a short code to its destination URL.
type Entry struct {
	Code        Code
	OriginalURL string
	Visits      int64
	CreatedAt   time.Time
}

// Page selects a window of entries in creation order. A zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}
