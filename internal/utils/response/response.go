// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Success responses may take any JSON shape (a student, a list, a health
// report). Error responses always look like:
//
//	{ "status": "error", "error": "Student not found in tbl_students" }
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data as JSON with the given HTTP status code.
// Header() → WriteHeader() → body, in that order.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
// Only use it for errors whose text is safe to show a client.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// Message builds an error Response from a fixed client-facing message.
func Message(format string, args ...any) Response {
	return Response{
		Status: StatusError,
		Error:  fmt.Sprintf(format, args...),
	}
}

// ValidationError converts the validator's per-field errors into a single
// human-readable Response. Field names are reported by their JSON name
// when the validator was set up to do so.
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}

// DecodeError turns a json decoding failure into a client-facing Response
// that names the offending field where possible.
func DecodeError(err error) Response {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return Message("field %s must be of type %s", typeErr.Field, typeErr.Type.String())
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return Message("malformed JSON at offset %d", syntaxErr.Offset)
	}

	return Message("invalid request body")
}
