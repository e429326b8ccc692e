package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/docqa/internal/document"
	"github.com/nikhilbhutani/docqa/internal/llm"
	"github.com/nikhilbhutani/docqa/internal/models"
	"github.com/nikhilbhutani/docqa/internal/qa"
	"github.com/nikhilbhutani/docqa/pkg/textextract"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// writeServiceError maps store, generation and parsing errors onto the wire
// protocol. Upstream failures get fixed messages; provider text can echo
// credential fragments and is only logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: verr.Error(), Code: "validation_error", Field: verr.Field})
	case errors.Is(err, document.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "document not found")
	case errors.Is(err, document.ErrStoreFull):
		writeError(w, http.StatusBadRequest, "store_full", "maximum number of documents reached; delete some documents first")
	case errors.Is(err, textextract.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_type", "unsupported file type")
	case errors.Is(err, textextract.ErrUnreadable):
		slog.Info("upload rejected", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "file could not be read as the declared type", Code: "unreadable_file", Field: "file"})
	case errors.Is(err, llm.ErrNotConfigured):
		slog.Error("generation not configured", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "generation_not_configured", "the answer service is not configured; set the provider API key")
	case errors.Is(err, llm.ErrUpstreamRateLimited):
		slog.Warn("generation rate limited", "error", err)
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusTooManyRequests, "upstream_rate_limited", "the answer service is busy; retry later")
	case errors.Is(err, llm.ErrUpstreamAuth):
		slog.Error("generation credentials rejected", "error", err)
		writeError(w, http.StatusInternalServerError, "upstream_auth", "the answer service rejected the configured credentials")
	case errors.Is(err, llm.ErrUpstreamRejected):
		slog.Error("generation request rejected", "error", err)
		writeError(w, http.StatusBadGateway, "upstream_rejected", "the answer service rejected the request")
	case errors.Is(err, llm.ErrUpstreamUnavailable):
		slog.Warn("generation unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", "the answer service is unavailable; retry later")
	case errors.Is(err, qa.ErrGenerationFormat):
		writeError(w, http.StatusInternalServerError, "generation_format", "the answer service returned an unreadable response")
	default:
		slog.Error("unhandled error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// decodeJSON reads a bounded JSON body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body: "+err.Error())
		return false
	}
	return true
}
