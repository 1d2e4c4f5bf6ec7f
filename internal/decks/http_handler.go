package decks

import (
	"context"
	"net/http"
	"time"

	"cardbot/internal/httpx"
)

type HTTPHandler struct {
	service     *Service
	passTimeout time.Duration
}

func NewHTTPHandler(service *Service, passTimeout time.Duration) *HTTPHandler {
	return &HTTPHandler{service: service, passTimeout: passTimeout}
}

// List handles GET /v1/decks
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.passTimeout)
		defer cancel()
	}

	httpx.JSONSuccess(w, r, h.service.List(ctx))
}
