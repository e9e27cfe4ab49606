// Package web runs the public HTTP server that serves secure links.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/securelinks/internal/logging"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
)

// Handlers are the link routes, implemented by delivery.Router.
type Handlers interface {
	View(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
}

type HTTPServer struct {
	address         string
	handler         http.Handler
	shutdownTimeout time.Duration
	logger          logging.Logger
}

func NewHTTPServer(a string, h Handlers, viewPath, downloadPath string, shutdownTimeout time.Duration, l logging.Logger) *HTTPServer {
	logger := l.With("module", "http_server")
	return &HTTPServer{
		address:         a,
		handler:         newRouter(h, viewPath, downloadPath, logger),
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

func newRouter(h Handlers, viewPath, downloadPath string, logger logging.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(requestID(logger))

	// only the view route is compressed; file downloads stream untouched
	router.Handle(viewPath, gzhttp.GzipHandler(http.HandlerFunc(h.View))).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc(downloadPath, h.Download).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)

	return router
}

// Handler exposes the routed handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is done, then shuts down gracefully, waiting at
// most shutdownTimeout for in-flight transfers.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
