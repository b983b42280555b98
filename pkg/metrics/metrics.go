// Package metrics exposes Prometheus instruments for the register
// exchanges the controller performs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExchangeCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inspire_hand_exchanges_total",
		Help: "Register exchanges performed, by transport, operation and status",
	}, []string{"transport", "operation", "status"})

	ExchangeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inspire_hand_exchange_duration_seconds",
		Help:    "Wall time of one register exchange",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"transport", "operation"})

	ErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inspire_hand_errors_total",
		Help: "Errors raised by the protocol engine, by class",
	}, []string{"transport", "class"})

	Connected = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "inspire_hand_connected",
		Help: "1 while the bus is connected",
	}, []string{"transport"})
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ObserveExchange records one completed exchange.
func ObserveExchange(transport, operation, status string, seconds float64) {
	ExchangeCount.WithLabelValues(transport, operation, status).Inc()
	ExchangeDuration.WithLabelValues(transport, operation).Observe(seconds)
}

// IncError counts one error by taxonomy class.
func IncError(transport, class string) {
	ErrorCount.WithLabelValues(transport, class).Inc()
}

// SetConnected flips the connection gauge for a transport.
func SetConnected(transport string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	Connected.WithLabelValues(transport).Set(v)
}
