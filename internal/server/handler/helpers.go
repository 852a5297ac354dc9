// Package handler implements the HTTP handlers for the stockbot API.
// Handlers depend on narrow service interfaces and translate the
// domain's typed rejections into HTTP status codes.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quantfall/stockbot/internal/domain"
)

// writeJSON marshals v as JSON and writes it to the response with the
// given HTTP status code. If marshaling fails, it falls back to a
// plain 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusForError maps the domain's typed rejections to HTTP statuses:
// missing data is 404, refused operations are 400.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoData),
		errors.Is(err, domain.ErrInsufficientHistory):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownStrategy),
		errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientShares),
		errors.Is(err, domain.ErrNoPosition),
		errors.Is(err, domain.ErrUnpricedOrder):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pathParam extracts a named path parameter from the request using
// Go 1.22+ built-in routing.
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}
