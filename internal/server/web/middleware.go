package web

import (
	"net/http"

	"github.com/dmitrijs2005/securelinks/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every request with an id, reusing a well-formed inbound
// X-Request-ID. The query string is never logged: it carries the token.
func requestID(logger logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			ctx := logging.ContextWithRequestID(r.Context(), id)
			logger.Debug(ctx, "request", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
