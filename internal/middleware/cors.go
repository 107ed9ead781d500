package middleware

import (
	"net/http"
	"strings"
)

// Headers the coaching clients actually send; X-Locale carries the language
// override, X-Request-ID lets the app correlate retries.
const (
	corsAllowHeaders = "Authorization, Content-Type, X-Locale, X-Request-ID"
	corsAllowMethods = "GET, POST, PUT, OPTIONS"
	corsMaxAge       = "300"
)

// CORS allows browser clients from the configured origins. Origins compare
// case-insensitively and ignore a trailing slash, since both trip up
// hand-edited ALLOWED_ORIGINS values.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allow := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allow[normalizeOrigin(origin)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				w.Header().Add("Vary", "Origin")
				if _, ok := allow[normalizeOrigin(origin)]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
					if r.Method == http.MethodOptions {
						w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
						w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
						w.Header().Set("Access-Control-Max-Age", corsMaxAge)
					}
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
