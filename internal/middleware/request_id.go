package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Injected key type to avoid context collisions
type contextKey string

const RequestIDContextKey = contextKey("request_id")

const RequestIDHeader = "X-Request-ID"

// RequestID honours a well-formed inbound X-Request-ID and generates one otherwise.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), RequestIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(r *http.Request) string {
	id, ok := r.Context().Value(RequestIDContextKey).(string)
	if !ok {
		return "unknown"
	}
	return id
}
