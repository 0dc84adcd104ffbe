package api

import (
	"net/http"
	"time"

	"github.com/blagoySimandov/teachermail/internal/logger"
	"github.com/blagoySimandov/teachermail/internal/logging"
	"github.com/blagoySimandov/teachermail/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const (
	internalServerError = "Internal server error"
	notFoundMessage     = "Not found"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// WideEventMiddleware opens a wide event per request and emits it once the
// handler returns. m may be nil.
func WideEventMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			event := logging.NewWideEvent("http.request")
			ctx := logging.WithContext(r.Context(), event)
			logging.EnrichHTTP(ctx, r.Method, r.URL.Path)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			duration := time.Since(start)
			logging.EnrichHTTPStatus(ctx, rec.status)
			logging.EnrichHTTPDuration(ctx, duration)
			logging.Emit(ctx)

			if m != nil {
				m.ObserveHTTP(routeTemplate(r), r.Method, rec.status, duration)
			}
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logging.EnrichPanic(r.Context())
				logger.Log.Error("panic recovered", "panic", err, "trace_id", logging.GetTraceID(r.Context()))
				writeError(w, http.StatusInternalServerError, internalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func NewCORS(allowedOrigin string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	})
}

func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, methodNotAllowedMessage)
	})
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, notFoundMessage)
	})
}
