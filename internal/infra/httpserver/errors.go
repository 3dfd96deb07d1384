package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bryanwahyu/artfeedback/internal/application/analysis"
	"github.com/bryanwahyu/artfeedback/internal/domain/artwork"
	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
	"github.com/bryanwahyu/artfeedback/internal/platform/logger"
)

type handlerFunc func(http.ResponseWriter, *http.Request) error

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// wrap maps handler errors to status codes and a JSON error body.
func wrap(log *logger.Logger, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status, code, msg := classify(err)
		if status >= 500 {
			log.Error("request failed", "path", req.URL.Path, "status", status, "err", err)
		}
		writeError(w, status, code, msg)
	}
}

func classify(err error) (int, string, string) {
	var ve *critique.ValidationError
	var mbe *http.MaxBytesError
	var pe *critique.ProviderError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "invalid_request", ve.Error()
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge, "too_large", "upload exceeds the size limit"
	case errors.Is(err, critique.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "quota_exceeded", "ai quota exceeded, try again later"
	case errors.As(err, &pe):
		return http.StatusBadGateway, "provider_error", "the vision provider (" + pe.Provider + ") failed"
	case errors.Is(err, artwork.ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, analysis.ErrPersistenceDisabled):
		return http.StatusServiceUnavailable, "persistence_disabled", err.Error()
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	var body errorBody
	body.Error.Message = msg
	body.Error.Code = code
	_ = writeJSON(w, status, body)
}
