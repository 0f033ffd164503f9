package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// RequestID tags each request with an id readable through GetReqID.
func RequestID(next http.Handler) http.Handler {
	return chimid.RequestID(next)
}

// GetReqID returns the id assigned by RequestID.
func GetReqID(r *http.Request) string {
	return chimid.GetReqID(r.Context())
}

// Recover turns handler panics into 500 responses.
func Recover(next http.Handler) http.Handler {
	return chimid.Recoverer(next)
}
