// Package metrics implements the MetricsRecorder on Prometheus.
package metrics

import (
	"intranet/internal/domain/service"

	"github.com/prometheus/client_golang/prometheus"
)

// recorder implements service.MetricsRecorder with Prometheus collectors.
type recorder struct {
	redemptions    *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// NewRecorder creates the recorder and registers its collectors on the
// default registry.
func NewRecorder() service.MetricsRecorder {
	r := &recorder{
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intranet",
			Subsystem: "access",
			Name:      "redemptions_total",
			Help:      "Invitation redemption attempts by outcome.",
		}, []string{"outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "intranet",
			Subsystem: "access",
			Name:      "active_sessions",
			Help:      "Live session observers.",
		}),
	}

	prometheus.MustRegister(r.redemptions, r.activeSessions)

	return r
}

// RecordRedemption counts one redemption attempt by outcome.
func (r *recorder) RecordRedemption(outcome string) {
	r.redemptions.WithLabelValues(outcome).Inc()
}

// SetActiveSessions reports the number of live session observers.
func (r *recorder) SetActiveSessions(n int) {
	r.activeSessions.Set(float64(n))
}

// NopRecorder is a no-op MetricsRecorder for tests and disabled setups.
type NopRecorder struct{}

// RecordRedemption implements service.MetricsRecorder.
func (NopRecorder) RecordRedemption(string) {}

// SetActiveSessions implements service.MetricsRecorder.
func (NopRecorder) SetActiveSessions(int) {}
