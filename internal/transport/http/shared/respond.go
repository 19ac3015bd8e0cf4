// Package shared holds the response helpers used by every feature handler.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "circ/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for all error responses.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteError maps a domain error to its HTTP status and writes the envelope.
// Non-domain errors are masked as internal.
func WriteError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{
		Code:    string(dErrors.CodeInternal),
		Message: "internal error",
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		resp.Code = string(domainErr.Code)
		resp.Message = domainErr.Message
		resp.Details = domainErr.Details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(dErrors.CodeOf(err)))
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// DecodeJSON decodes a request body, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
