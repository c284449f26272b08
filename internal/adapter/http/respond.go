package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/simaogato/fundbalance-backend/internal/adapter/http/dto"
	"github.com/simaogato/fundbalance-backend/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData[T any](w http.ResponseWriter, data T, message string) {
	writeJSON(w, http.StatusOK, dto.OK(data, message))
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.Fail(message))
}

// writeError maps domain errors to status codes; the error text becomes the envelope message
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeMessage(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads the request body into v; an empty body is allowed when optional is true
func decodeJSON(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return domain.NewValidationError("body", "invalid request body: %v", err)
	}
	return nil
}
