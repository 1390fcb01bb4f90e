package envelope

import (
	"encoding/json"
	"net/http"
)

// Stable machine-readable error codes. Messages may change; codes may not.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeUpstream        = "UPSTREAM_ERROR"
)

// Response is the fixed wrapper returned by every API route. Exactly one of
// Data or Error is populated.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo carries the machine-readable code plus a human-readable message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta reports pagination state for list responses.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta derives pagination metadata from the applied page/perPage and the
// unpaginated total.
func NewMeta(page, perPage, total int) *Meta {
	totalPages := 0
	if total > 0 && perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return &Meta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// OK wraps a success payload.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// OKWithMeta wraps a success payload with pagination metadata.
func OKWithMeta(data any, meta *Meta) Response {
	return Response{Success: true, Data: data, Meta: meta}
}

// Err wraps a failure.
func Err(code, message string) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}

// ErrWithDetails wraps a failure carrying structured details (e.g. field errors).
func ErrWithDetails(code, message string, details any) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message, Details: details}}
}

// Write serializes the response with the given HTTP status. Encoding failures
// are swallowed; by that point the status line is already on the wire.
func Write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteOK writes a 200 success envelope.
func WriteOK(w http.ResponseWriter, data any) {
	Write(w, http.StatusOK, OK(data))
}

// WriteCreated writes a 201 success envelope.
func WriteCreated(w http.ResponseWriter, data any) {
	Write(w, http.StatusCreated, OK(data))
}

// WriteList writes a 200 success envelope with pagination metadata.
func WriteList(w http.ResponseWriter, data any, meta *Meta) {
	Write(w, http.StatusOK, OKWithMeta(data, meta))
}

// WriteError writes an error envelope with the status matching the code.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	Write(w, status, Err(code, message))
}
