// Package respond writes JSON responses in the shapes every handler shares:
// {"message": ..., "success": true} for outcomes and {"error": ...} for
// failures.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// MessageBody is the success envelope.
type MessageBody struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
}

// ErrorBody is the failure envelope.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Message writes {"message": msg, "success": true}.
func Message(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, MessageBody{Message: msg, Success: true})
}

// MessageWithData writes the success envelope with a data payload.
func MessageWithData(w http.ResponseWriter, code int, msg string, data any) {
	JSON(w, code, MessageBody{Message: msg, Success: true, Data: data})
}

// Fail writes {"error": msg} verbatim. Use it for messages written for users.
func Fail(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorBody{Error: msg})
}

// FailWithDetail writes {"error": msg, "message": detail}.
func FailWithDetail(w http.ResponseWriter, code int, msg, detail string) {
	JSON(w, code, ErrorBody{Error: msg, Message: detail})
}

// Error writes err's text. Only for errors known to be safe to expose.
func Error(w http.ResponseWriter, code int, err error) {
	Fail(w, code, err.Error())
}

var safeErrorMarkers = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
}

// SafeError exposes err's text only for client errors whose message looks
// like a validation message. Everything else becomes "internal server error"
// and is logged with credentials masked.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	if code < 500 {
		lower := strings.ToLower(msg)
		for _, m := range safeErrorMarkers {
			if strings.Contains(lower, m) {
				Fail(w, code, msg)
				return
			}
		}
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	Fail(w, code, "internal server error")
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
