package platform

import (
	"crypto/subtle"
	"net/http"
)

// BasicAuthMiddleware enforces a username/password check from AUTH_USER and
// AUTH_PASS. When neither is configured the middleware is a no-op, so local
// development and tests need no credentials.
func BasicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetEnv("AUTH_USER", "")
		pass := GetEnv("AUTH_PASS", "")
		if user == "" && pass == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
