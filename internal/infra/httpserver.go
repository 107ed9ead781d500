package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer is the API listener. Timeouts come from configuration; the
// write timeout must stay above the recommendation compute timeout or live
// cache misses get cut off mid-response.
type HTTPServer struct {
	srv *http.Server
}

func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	headerTimeout := cfg.HTTPReadTimeout
	if headerTimeout <= 0 || headerTimeout > 5*time.Second {
		headerTimeout = 5 * time.Second
	}
	return &HTTPServer{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadTimeout:       cfg.HTTPReadTimeout,
			ReadHeaderTimeout: headerTimeout,
			WriteTimeout:      cfg.HTTPWriteTimeout,
			IdleTimeout:       cfg.HTTPIdleTimeout,
		},
	}
}

// Addr returns the listen address, for startup logging.
func (s *HTTPServer) Addr() string {
	if s.srv == nil {
		return ""
	}
	return s.srv.Addr
}

// Start blocks serving requests. It returns http.ErrServerClosed after a
// graceful Shutdown.
func (s *HTTPServer) Start() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
