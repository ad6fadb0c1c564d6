// Package server exposes the REST API over the application core.
package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tranvn/folio/internal/app"
	"github.com/tranvn/folio/internal/common"
)

// Timeouts sized for the analytics endpoints: a profit replay over a large
// transaction history plus chart rendering can take a while to write out.
const (
	readTimeout  = 30 * time.Second
	writeTimeout = 5 * time.Minute
	idleTimeout  = 60 * time.Second
)

// Server serves the portfolio REST API: auth, the category/asset/
// transaction/label resources, price sync, and the profit analytics views.
type Server struct {
	app          *app.App
	server       *http.Server
	logger       *common.Logger
	shutdownChan chan struct{}
}

// NewServer builds the route table and middleware chain for a and binds
// them to the configured listen address.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:    a,
		logger: a.Logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	addr := net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port))
	s.server = &http.Server{
		Addr:         addr,
		Handler:      applyMiddleware(mux, a.Logger, a.Config, a.Storage.UserStore()),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s
}

// SetShutdownChannel sets the channel signaled when shutdown is requested
// over HTTP.
func (s *Server) SetShutdownChannel(ch chan struct{}) {
	s.shutdownChan = ch
}

// Handler exposes the fully wrapped handler chain so tests can drive the
// API without a listener.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown is called or the listener fails. Blocking.
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Str("version", common.GetVersion()).
		Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Stopping REST API server")
	return s.server.Shutdown(ctx)
}
