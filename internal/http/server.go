package httpapi

import (
	"net/http"
	"time"
)

const readHeaderTimeout = 5 * time.Second

// NewServer wraps h in a server that drops clients slow to send headers.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: readHeaderTimeout}
}
