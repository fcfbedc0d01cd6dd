package middleware

import (
	"slices"

	"github.com/go-chi/cors"
)

// CORS builds the cors.Options for the API from the configured origins.
// Credentials are only allowed when the origin list is explicit; a
// wildcard origin with credentials is rejected by browsers.
func CORS(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	wildcard := slices.Contains(origins, "*")

	return cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: !wildcard,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		MaxAge:           600,
	}
}
