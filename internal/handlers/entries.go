package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

// EntryService is the shortening core as seen by the HTTP layer.
type EntryService interface {
	Create(ctx context.Context, originalURL string) (*shortener.Entry, error)
	Get(ctx context.Context, code shortener.Code) (*shortener.Entry, error)
	List(ctx context.Context, page shortener.Page) ([]shortener.Entry, error)
	Resolve(ctx context.Context, code shortener.Code) (string, error)
}

// EntryHandler handles URL shortening operations.
type EntryHandler struct {
	service EntryService
	baseURL string
	logger  *zap.Logger
}

// NewEntryHandler creates a new entry handler. Short URLs are built as baseURL/s/code.
func NewEntryHandler(service EntryService, baseURL string, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (h *EntryHandler) shortURL(code shortener.Code) string {
	return fmt.Sprintf("%s/s/%s", h.baseURL, code)
}

func (h *EntryHandler) toBody(entry *shortener.Entry) EntryBody {
	return EntryBody{
		Code:        string(entry.Code),
		ShortURL:    h.shortURL(entry.Code),
		OriginalURL: entry.OriginalURL,
		Visits:      entry.Visits,
		CreatedAt:   entry.CreatedAt,
	}
}

func (h *EntryHandler) CreateEntry(ctx context.Context, req *CreateEntryRequest) (*CreateEntryResponse, error) {
	entry, err := h.service.Create(ctx, req.Body.URL)
	if err != nil {
		return nil, h.httpError(err, "failed to create short url")
	}

	resp := &CreateEntryResponse{Body: h.toBody(entry)}
	resp.Location = resp.Body.ShortURL

	return resp, nil
}

func (h *EntryHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	target, err := h.service.Resolve(ctx, shortener.Code(req.Code))
	if err != nil {
		return nil, h.httpError(err, "failed to resolve short url")
	}

	return &RedirectResponse{
		Status:       http.StatusFound,
		Location:     target,
		CacheControl: "no-store",
	}, nil
}

func (h *EntryHandler) GetEntry(ctx context.Context, req *GetEntryRequest) (*GetEntryResponse, error) {
	entry, err := h.service.Get(ctx, shortener.Code(req.Code))
	if err != nil {
		return nil, h.httpError(err, "failed to get entry")
	}

	return &GetEntryResponse{Body: h.toBody(entry)}, nil
}

func (h *EntryHandler) ListEntries(ctx context.Context, req *ListEntriesRequest) (*ListEntriesResponse, error) {
	entries, err := h.service.List(ctx, shortener.Page{Offset: req.Offset, Limit: req.Limit})
	if err != nil {
		return nil, h.httpError(err, "failed to list entries")
	}

	resp := &ListEntriesResponse{}
	resp.Body.Entries = make([]EntryBody, 0, len(entries))

	for i := range entries {
		resp.Body.Entries = append(resp.Body.Entries, h.toBody(&entries[i]))
	}

	return resp, nil
}

func (h *EntryHandler) httpError(err error, msg string) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		return huma.Error422UnprocessableEntity("url must be an absolute http or https URL")
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("short url not found")
	case errors.Is(err, shortener.ErrCapacityExhausted):
		h.logger.Error(msg, zap.Error(err))

		return huma.Error503ServiceUnavailable("no short code available, try again")
	case errors.Is(err, shortener.ErrStorageUnavailable):
		h.logger.Error(msg, zap.Error(err))

		return huma.Error503ServiceUnavailable("storage unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout("request timed out")
	default:
		h.logger.Error(msg, zap.Error(err))

		return huma.Error500InternalServerError(msg)
	}
}
