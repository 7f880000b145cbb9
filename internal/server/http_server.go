package server

import (
	"context"
	"net/http"
	"time"
)

// CreateServer builds the HTTP server with production timeout defaults.
// Upgraded WebSocket connections are hijacked from the server and are not
// subject to these timeouts.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ShutdownServer stops accepting new connections and waits for in-flight
// requests, up to the timeout.
func ShutdownServer(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
