package httpapi

import (
	"net/http"

	"climate-server/internal/config"
)

// NewServer wraps mux with request logging and, when m is non-nil, request
// metrics.
func NewServer(cfg config.Config, mux *http.ServeMux, m *Metrics) *http.Server {
	var handler http.Handler = mux
	if m != nil {
		handler = m.instrument(handler)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(handler),
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
	}
}
