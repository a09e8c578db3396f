// Package httpserver wraps http.Server construction so every binary gets the
// same timeout posture.
package httpserver

import (
	"net/http"
	"time"
)

// New creates an http.Server with hardened timeouts for the given handler.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
