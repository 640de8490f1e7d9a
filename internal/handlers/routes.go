package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, h *EntryHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-entry",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Stores the URL under a newly generated short code.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, h.CreateEntry)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/s/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL and counts the visit.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, h.Redirect)

	huma.Register(api, huma.Operation{
		OperationID: "list-entries",
		Method:      http.MethodGet,
		Path:        "/entries",
		Summary:     "List short URLs",
		Description: "Lists entries in creation order.",
		Tags:        []string{"Entries"},
	}, h.ListEntries)

	huma.Register(api, huma.Operation{
		OperationID: "get-entry",
		Method:      http.MethodGet,
		Path:        "/entries/{code}",
		Summary:     "Get short URL",
		Description: "Returns an entry with its current visit count.",
		Tags:        []string{"Entries"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetEntry)
}
