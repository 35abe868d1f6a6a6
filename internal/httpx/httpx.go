// Package httpx contains the HTTP delivery layer (net/http handlers) for the
// waitlist service. It maps JSON and form requests to the application service
// while enforcing body limits, security headers, and error translation.
// Handlers are split across files (waitlist.go, index.go, health.go, errors.go).
package httpx

import (
	"context"
	"net/http"

	"github.com/haukened/waitlist/internal/domain"
)

// ServicePort abstracts the subset of app.Service used by the HTTP layer.
// It is satisfied by *app.Service in production and mocked in tests.
type ServicePort interface {
	Join(ctx context.Context, email string) (domain.Entry, error)
	Lookup(ctx context.Context, idStr string) (domain.Entry, int64, error)
	Leave(ctx context.Context, idStr string) error
	Count(ctx context.Context) (int64, error)
}

// Observer records summary observations such as request latency.
type Observer interface {
	Observe(name string, value int64)
}

// Handler wires HTTP endpoints to the application service.
// It is safe for concurrent use. Zero-value is not valid; construct via New.
type Handler struct {
	Service   ServicePort
	MaxBody   int64                       // request body cap for JSON and form posts
	Readiness func(context.Context) error // optional readiness probe
	IndexTmpl TemplateRenderer            // optional renderer for index page
	Assets    http.FileSystem             // static assets filesystem (optional)
	Metrics   http.Handler                // optional /metrics endpoint
	Observer  Observer                    // optional latency sink
}

// New returns a configured Handler.
// svc: application service port implementation.
// maxBody: maximum allowed request body size (0 disables the limit).
// readiness: optional probe function for /readyz (nil => always ready).
func New(svc ServicePort, maxBody int64, readiness func(context.Context) error) *Handler {
	return &Handler{Service: svc, MaxBody: maxBody, Readiness: readiness}
}

// Router constructs and returns an http.Handler with all routes mounted and
// the middleware chain applied.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/api/waitlist", h.handleWaitlist)
	mux.HandleFunc("/api/waitlist/{id}", h.handleEntry)
	mux.HandleFunc("/api/health", h.handleAPIHealth)
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/readyz", h.handleReady)
	if h.Assets != nil {
		mux.Handle("/static/", http.StripPrefix("/static/", h.staticHandler()))
	}
	if h.Metrics != nil {
		mux.Handle("/metrics", h.Metrics)
	}
	return CorrelationIDMiddleware(h.observe(h.secureHeaders(mux)))
}
