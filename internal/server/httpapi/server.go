// Package httpapi exposes the relay over HTTP and WebSocket: registration,
// token-authenticated message submission and inbox access, and the realtime
// push channel. Handlers translate transport details into calls on the
// identity service, the inbox store and the delivery registry; all policy
// lives below this package.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sealpost/internal/logging"
	"github.com/dmitrijs2005/sealpost/internal/server/auth"
	"github.com/dmitrijs2005/sealpost/internal/server/delivery"
	"github.com/dmitrijs2005/sealpost/internal/server/identity"
	"github.com/dmitrijs2005/sealpost/internal/server/inbox"
)

const shutdownTimeout = 5 * time.Second

// Server wires the relay's transport endpoints to the underlying services.
type Server struct {
	address        string
	logger         logging.Logger
	identities     *identity.Service
	inbox          *inbox.Store
	registry       *delivery.Registry
	guard          *auth.Guard
	allowedOrigins []string
}

func NewServer(address string, logger logging.Logger, identities *identity.Service,
	inboxStore *inbox.Store, registry *delivery.Registry, guard *auth.Guard,
	allowedOrigins []string) *Server {
	return &Server{
		address:        address,
		logger:         logger,
		identities:     identities,
		inbox:          inboxStore,
		registry:       registry,
		guard:          guard,
		allowedOrigins: allowedOrigins,
	}
}

// Handler returns the full route tree, for embedding into an existing
// listener and for tests.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Run starts the HTTP listener and blocks until ctx is cancelled or the
// listener fails. On cancellation the server drains in-flight requests for
// up to shutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info(ctx, "http endpoint listening", "addr", s.address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "shutting down http endpoint")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
