// Package httptransport wires the domain handlers behind one chi router.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	credhandler "certledger/internal/credential/handler"
	partyhandler "certledger/internal/party/handler"
	"certledger/internal/platform/health"
	"certledger/internal/platform/middleware"
)

// Deps carries the domain handlers the router mounts.
type Deps struct {
	Credentials *credhandler.Handler
	Parties     *partyhandler.Handler
	Health      *health.Handler
	Logger      *slog.Logger

	// RequestTimeout bounds every request end to end, chain waits included.
	RequestTimeout time.Duration
}

// NewRouter wires all public endpoints with the shared middleware stack.
func NewRouter(deps Deps) http.Handler {
	if deps.RequestTimeout == 0 {
		deps.RequestTimeout = 90 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.BodyLimit(32 << 20))
	r.Use(middleware.ContentType)

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		deps.Credentials.Register(api)
		deps.Parties.Register(api)
	})

	return r
}
