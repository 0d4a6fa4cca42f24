package middleware

import (
	"net/http"

	"github.com/mcoot/tactics-progress/internal/reqcache"
)

// RequestCache gives every request its own reqcache.Cache
func RequestCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := reqcache.WithCache(r.Context(), reqcache.New())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
