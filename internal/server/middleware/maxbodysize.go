package middleware

import (
	"encoding/json"
	"net/http"
)

// tooLargeBody matches the API error envelope so clients see one shape for
// every 413, whether it comes from here or from a handler's failed read.
var tooLargeBody = func() []byte {
	b, _ := json.Marshal(map[string]any{
		"error": map[string]string{
			"code":    "request_too_large",
			"message": "request body too large",
		},
	})
	return append(b, '\n')
}()

// NewMaxBodySizeHandler returns a middleware that limits request bodies to
// limit bytes. A declared Content-Length over the limit is rejected with 413
// before the next handler runs; otherwise the body is wrapped in
// http.MaxBytesReader so reads fail once the limit is crossed.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write(tooLargeBody)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
