package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/middleware"
)

type errorResponse struct {
	Error         string            `json:"error"`
	Kind          apperr.Kind       `json:"kind,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindEmptyCart:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto a status and the JSON error body. Errors without a
// kind are logged and reported as a bare internal error.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	resp := errorResponse{
		Kind:          kind,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	}

	if status == http.StatusInternalServerError {
		h.logger.Error().
			Err(err).
			Str("correlation_id", resp.CorrelationID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		resp.Error = "internal server error"
		writeJSON(w, status, resp)
		return
	}

	resp.Error = apperr.Message(err)
	if kind == apperr.KindValidation {
		resp.Fields = apperr.FieldsOf(err)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Token realm="api"`)
	}
	writeJSON(w, status, resp)
}
