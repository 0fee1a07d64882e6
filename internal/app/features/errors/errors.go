// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Body is the JSON shape of every error response.
type Body struct {
	Error string `json:"error"`
	// Token is set on 409 responses that ask the client to confirm.
	Token string `json:"token,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write writes {"error": msg} with the given status.
func Write(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Body{Error: msg})
}

// BadRequest writes a 400 validation error.
func BadRequest(w http.ResponseWriter, msg string) { Write(w, http.StatusBadRequest, msg) }

// Forbidden writes a 403 authorization error.
func Forbidden(w http.ResponseWriter, msg string) { Write(w, http.StatusForbidden, msg) }

// NotFound is the router's JSON 404 handler.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Write(w, http.StatusNotFound, "not found")
}

// MethodNotAllowed is the router's JSON 405 handler.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Write(w, http.StatusMethodNotAllowed, "method not allowed")
}

// ErrorLogger logs backend failures and answers with a generic 5xx.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Log records err with request context without writing a response.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	e.log.Error(msg, fields...)
}

// HTTPServerError logs err and writes a 500 with userMsg.
func (e *ErrorLogger) HTTPServerError(w http.ResponseWriter, r *http.Request, err error, userMsg string, fields ...zap.Field) {
	e.Log(r, userMsg, err, fields...)
	Write(w, http.StatusInternalServerError, userMsg)
}

// HTTPBadGateway logs err and writes a 502. Used when storage or the AI
// endpoint fails.
func (e *ErrorLogger) HTTPBadGateway(w http.ResponseWriter, r *http.Request, err error, userMsg string, fields ...zap.Field) {
	e.Log(r, userMsg, err, fields...)
	Write(w, http.StatusBadGateway, userMsg)
}
