// Package router mounts this proxy's HTTP surface onto a chi router:
// the cache-backed chat-completions endpoint and the administrative
// health/metrics/clear-cache endpoints, behind a small middleware chain.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/relaycache/llmproxy/handler"
)

// maxBodyBytes bounds the size of an inbound chat-completion request
// body. The proxy has no streaming or multi-part surface, so a flat
// cap is sufficient.
const maxBodyBytes = 2 * 1024 * 1024

// PromExposer serves the Prometheus text-exposition mirror of this
// proxy's counters. Optional: New mounts it only when non-nil.
type PromExposer interface {
	Handler() http.Handler
}

// New builds the HTTP handler for this proxy: CORS, security headers,
// request-ID injection, panic recovery, request logging, and a
// body-size limit, in front of the proxy and admin handlers.
func New(appLogger zerolog.Logger, proxy *handler.ProxyHandler, admin *handler.AdminHandler, prom PromExposer) http.Handler {
	r := chi.NewRouter()

	r.Use(corsMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(appLogger))
	r.Use(chimw.RequestSize(maxBodyBytes))

	r.Get("/health", admin.Health)
	r.Get("/metrics", admin.Metrics)
	r.Get("/admin/stats", admin.Stats)
	r.Post("/admin/clear-cache", admin.ClearCache)
	r.Post("/v1/chat/completions", proxy.ChatCompletions)

	if prom != nil {
		r.Get("/internal/metrics", prom.Handler().ServeHTTP)
	}

	return r
}

// corsMiddleware allows cross-origin clients to call the proxy directly
// from a browser. This proxy has no session or credential concept to
// protect, so origins are not restricted.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Bypass-Cache, X-Cache-TTL")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func requestLogger(appLogger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rw, r)
			appLogger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("req_id", chimw.GetReqID(r.Context())).
				Int("status", rw.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}
