package handlers

import "time"

// CreateEntryRequest is the request body for creating a short URL.
type CreateEntryRequest struct {
	Body struct {
		URL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"url" maxLength:"2048"`
	}
}

// EntryBody describes a stored entry.
type EntryBody struct {
	Code        string    `doc:"The short code"              example:"aZ3kP9q"                            json:"code"`
	ShortURL    string    `doc:"The full short URL"          example:"http://localhost:8888/s/aZ3kP9q"    json:"shortUrl"`
	OriginalURL string    `doc:"The original URL"            example:"https://example.com/very/long/path" json:"originalUrl"`
	Visits      int64     `doc:"Number of recorded redirects" example:"0"                                 json:"visits"`
	CreatedAt   time.Time `doc:"Creation time"                                                            json:"createdAt"`
}

// CreateEntryResponse is the response for a successfully created short URL.
type CreateEntryResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     EntryBody
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"aZ3kP9q" path:"code"`
}

// RedirectResponse sends the client to the original URL.
type RedirectResponse struct {
	Status       int
	Location     string `header:"Location"`
	CacheControl string `header:"Cache-Control"`
}

// GetEntryRequest selects one entry by code.
type GetEntryRequest struct {
	Code string `doc:"The short code" example:"aZ3kP9q" path:"code"`
}

// GetEntryResponse returns one entry.
type GetEntryResponse struct {
	Body EntryBody
}

// ListEntriesRequest pages through entries in creation order.
type ListEntriesRequest struct {
	Offset int `default:"0"   doc:"Number of entries to skip"   minimum:"0"                 query:"offset"`
	Limit  int `default:"100" doc:"Maximum entries to return"   maximum:"1000" minimum:"1"  query:"limit"`
}

// ListEntriesResponse returns a page of entries.
type ListEntriesResponse struct {
	Body struct {
		Entries []EntryBody `json:"entries"`
	}
}
