package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stok/internal/middleware"
	"stok/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to tell the client.
		return
	}
}

func writeData[T any](w http.ResponseWriter, status int, data T) {
	writeJSON(w, status, model.DataResponse[T]{Data: data})
}

func writeList[T any](w http.ResponseWriter, meta model.PageMeta, data []T) {
	if data == nil {
		data = []T{}
	}
	writeJSON(w, http.StatusOK, model.ListResponse[T]{Meta: meta, Data: data})
}

// writeError maps err to a status code and writes the error envelope.
// Anything that is not a domain error is logged and answered with a
// generic 500 so internals never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	correlationID := middleware.RequestIDFromContext(r.Context())

	de, ok := model.AsDomainError(err)
	if !ok || de.Kind == model.KindInternal {
		logger.Error().
			Err(err).
			Str("request_id", correlationID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:         "internal server error",
			Code:          model.ErrCodeInternal,
			CorrelationID: correlationID,
		})
		return
	}

	status := statusFor(de.Kind)
	logger.Debug().
		Str("request_id", correlationID).
		Str("code", de.Code).
		Int("status", status).
		Strs("details", de.Details).
		Msg(de.Message)

	writeJSON(w, status, model.ErrorResponse{
		Error:         de.Message,
		Code:          de.Code,
		Details:       de.Details,
		CorrelationID: correlationID,
	})
}

func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindConflict:
		return http.StatusConflict
	case model.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON,
				"invalid request body", "request body must not be empty")
		}
		return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON,
			"invalid request body", err.Error())
	}
	return nil
}

// parseBool reads an optional boolean query parameter.
func parseBool(raw, name string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, model.NewValidationError(name + " must be true or false")
	}
	return &v, nil
}

// parseTime reads an optional timestamp query parameter. Both RFC 3339
// timestamps and plain dates are accepted.
func parseTime(raw, name string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, model.NewValidationError(name + " must be an RFC 3339 timestamp or a date")
}
