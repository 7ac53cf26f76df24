package middleware

import (
	"net/http"
	"slices"
	"sync"
)

var (
	originsMu      sync.RWMutex
	allowedOrigins []string
)

// SetAllowedOrigins sets the origins EnableCORS and the WebSocket upgrader
// accept. An empty list accepts any origin.
func SetAllowedOrigins(origins []string) {
	originsMu.Lock()
	defer originsMu.Unlock()
	allowedOrigins = slices.Clone(origins)
}

// OriginAllowed reports whether a browser origin may call the console.
func OriginAllowed(origin string) bool {
	originsMu.RLock()
	defer originsMu.RUnlock()
	return len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
}

func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && OriginAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
