package middleware

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"social/monitoring"
)

// ServerMiddleware records request count, in-flight connections and
// latency for every route it wraps.
type ServerMiddleware struct {
	next http.Handler
}

func NewServerMiddleware(next http.Handler) *ServerMiddleware {
	return &ServerMiddleware{next: next}
}

func (m *ServerMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	monitoring.HttpRequestsTotal.WithLabelValues(path).Inc()
	monitoring.ActiveConnections.Inc()
	defer monitoring.ActiveConnections.Dec()

	timer := prometheus.NewTimer(monitoring.HttpRequestDuration.WithLabelValues(path))
	defer timer.ObserveDuration()

	m.next.ServeHTTP(w, r)
}
