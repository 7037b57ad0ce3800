package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// RequestIDKey is the context key for the request ID (uuid.UUID).
const RequestIDKey contextKey = "RequestID"

// ContextWithRequestID returns a new request with a request ID in the context.
func ContextWithRequestID(req *http.Request, requestID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), RequestIDKey, requestID)

	return req.WithContext(ctx)
}

// RequestIDFromContext returns the request ID from the context if it exists.
func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(RequestIDKey).(uuid.UUID)

	return id, ok
}
