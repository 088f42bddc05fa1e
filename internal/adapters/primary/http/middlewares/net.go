package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// CORS для мини-приложения и сайта; пустой список origins разрешает все
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})
}

// LimitPaths ограничивает частоту запросов с одного IP только для перечисленных путей.
// requests <= 0 отключает ограничение
func LimitPaths(requests int, window time.Duration, paths ...string) func(http.Handler) http.Handler {
	if requests <= 0 || len(paths) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limited := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		limited[p] = struct{}{}
	}
	limiter := httprate.LimitByIP(requests, window)

	return func(next http.Handler) http.Handler {
		withLimit := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := limited[r.URL.Path]; ok {
				withLimit.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
