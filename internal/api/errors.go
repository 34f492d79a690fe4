package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Error codes that are not catalog errors.
const (
	CodeBadRequest = "bad_request"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON writes data with the given status.
func WriteJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error body with the given status.
func WriteError(w http.ResponseWriter, code, message string, fields map[string]string, status int) {
	WriteJSON(w, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Fields: fields}}, status)
}

// WriteCatalogError maps a catalog error to its code and status.
func WriteCatalogError(w http.ResponseWriter, err error) {
	code := core.ErrorCode(err)

	var fields map[string]string
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		fields = ve.Fields
	}

	WriteError(w, code, err.Error(), fields, StatusForCode(code))
}

// StatusForCode maps an error code to an HTTP status.
func StatusForCode(code string) int {
	switch code {
	case core.CodeInvalidDraft:
		return http.StatusUnprocessableEntity // 422
	case string(core.ConnAuthFailed), string(core.ConnUnreachable):
		return http.StatusBadGateway // 502
	case string(core.ConnTimeout):
		return http.StatusGatewayTimeout // 504
	case core.CodeNotFound:
		return http.StatusNotFound // 404
	case CodeBadRequest:
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}
