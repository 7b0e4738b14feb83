package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cityhunt/cityhunt/internal/middleware"
)

// Logging creates logging middleware for the web gateway
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
