package httpapi

import (
	"database/sql"
	"net/http"
)

// NewMux returns a mux serving /healthz, plus /metrics when m is non-nil.
// Feature modules register their own routes on it.
func NewMux(db *sql.DB, m *Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	return mux
}
