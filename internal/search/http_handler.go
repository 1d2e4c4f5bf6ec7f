package search

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cardbot/internal/httpx"
)

type searchQuery struct {
	Name string `query:"name" validate:"required,max=128"`
}

type HTTPHandler struct {
	service     *Service
	passTimeout time.Duration
}

// NewHTTPHandler returns the search handler. A positive passTimeout bounds
// each search.
func NewHTTPHandler(service *Service, passTimeout time.Duration) *HTTPHandler {
	return &HTTPHandler{service: service, passTimeout: passTimeout}
}

// Search handles GET /v1/collections/search
// @Summary Search every configured collection for a card name
// @Tags collections
// @Produce json
// @Param name query string true "Card name (max 128 characters)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/collections/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := searchQuery{Name: strings.TrimSpace(r.URL.Query().Get("name"))}
	if details := httpx.ValidateStruct(q); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid search query", details)
		return
	}

	ctx := r.Context()
	if h.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.passTimeout)
		defer cancel()
	}

	httpx.JSONSuccess(w, r, h.service.Search(ctx, q.Name))
}
