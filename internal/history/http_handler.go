package history

import (
	"errors"
	"net/http"
	"strconv"

	"cardbot/internal/httpx"
)

const defaultRunsLimit = 20

type runsQuery struct {
	Limit int `query:"limit" validate:"gte=1,lte=100"`
}

type HTTPHandler struct {
	recorder *Recorder
}

func NewHTTPHandler(recorder *Recorder) *HTTPHandler {
	return &HTTPHandler{recorder: recorder}
}

// List handles GET /v1/runs
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q := runsQuery{Limit: defaultRunsLimit}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query",
				[]httpx.ErrorDetail{{Field: "limit", Message: "limit must be a number"}})
			return
		}
		q.Limit = limit
	}
	if details := httpx.ValidateStruct(q); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query", details)
		return
	}

	runs, err := h.recorder.Recent(r.Context(), q.Limit)
	if errors.Is(err, ErrDisabled) {
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "HISTORY_DISABLED", "Pass history is not configured", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, runs)
}
