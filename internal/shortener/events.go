package shortener

import "time"

const (
	// TopicEntryCreated carries a CreatedEvent for every stored entry.
	TopicEntryCreated = "entry.created"
	// TopicEntryVisited carries a VisitedEvent for every successful resolve.
	TopicEntryVisited = "entry.visited"
)

// CreatedEvent is published after a new entry is stored.
type CreatedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
}

// VisitedEvent is published for every successful resolve and drives visit accounting.
type VisitedEvent struct {
	Code      string    `json:"code"`
	VisitedAt time.Time `json:"visitedAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer"`
}
