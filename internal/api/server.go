package api

import (
	"net/http"
	"time"

	"github.com/futig/ba-assistant/internal/api/docs"
	documentapi "github.com/futig/ba-assistant/internal/api/document"
	"github.com/futig/ba-assistant/internal/api/middleware"
	sessionapi "github.com/futig/ba-assistant/internal/api/session"
	"github.com/futig/ba-assistant/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(sessionHandler *sessionapi.Handler, documentHandler *documentapi.Handler, timeout time.Duration, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)        // Recover from panics
	r.Use(chimiddleware.RequestID)        // Add request ID
	r.Use(middleware.Logger(logger))      // Log requests
	r.Use(middleware.CORS)                // Handle CORS
	r.Use(chimiddleware.Timeout(timeout)) // Drafting plus export can take minutes

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	sessionapi.RegisterRoutes(r, sessionHandler)
	documentapi.RegisterRoutes(r, documentHandler)

	return r
}
