package api

import (
	"net/http"

	"github.com/blagoySimandov/teachermail/internal/metrics"
	"github.com/blagoySimandov/teachermail/internal/user"
	"github.com/gorilla/mux"
)

type Handlers struct {
	Generate *GenerateHandler
	User     *UserHandler
	Health   *HealthHandler
	Metrics  http.Handler
}

func SetupRoutes(h Handlers, resolver user.Resolver, m *metrics.Metrics, allowedOrigin string) http.Handler {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = methodNotAllowedHandler()
	r.NotFoundHandler = notFoundHandler()

	r.Use(WideEventMiddleware(m))
	r.Use(RecoveryMiddleware)

	// Registered for every method; the handler itself answers 405 so that the
	// method check precedes session resolution.
	r.HandleFunc("/api/generate", h.Generate.Generate)

	r.Handle("/api/me", user.UserMiddleware(resolver)(http.HandlerFunc(h.User.Me))).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.Health.Check).Methods(http.MethodGet)
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics).Methods(http.MethodGet)
	}

	return NewCORS(allowedOrigin).Handler(r)
}
