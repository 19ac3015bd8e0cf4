// Package httpserver wraps http.Server construction so every listener shares
// the same timeout posture.
package httpserver

import (
	"net/http"
	"time"
)

// Slow or stalled clients are cut off rather than allowed to pin a goroutine.
const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 2 * time.Minute
)

// New returns a server ready for ListenAndServe on addr.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}
