package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// The mobile app talks to the API directly; browser origins only matter for
// the local admin tooling.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8081",
}

// CORS returns middleware that applies the API's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
