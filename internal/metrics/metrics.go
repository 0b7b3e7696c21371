// Package metrics — prometheus-метрики обращений к перевозчикам, кэша и фонового обхода.
package metrics

import (
	"net/http"
	"time"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parcelbox"

type Metrics struct {
	reg *prometheus.Registry

	carrierRequests *prometheus.CounterVec
	carrierLatency  *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	sweepParcels    *prometheus.CounterVec
	statusChanges   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		carrierRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carrier_requests_total",
			Help:      "Carrier lookups by carrier and outcome.",
		}, []string{"carrier", "outcome"}),
		carrierLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "carrier_request_duration_seconds",
			Help:      "Carrier lookup latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"carrier"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		sweepParcels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_parcels_total",
			Help:      "Parcels visited by the background sweep by outcome.",
		}, []string{"outcome"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Detected parcel status changes by carrier.",
		}, []string{"carrier"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.carrierRequests,
		m.carrierLatency,
		m.cacheLookups,
		m.sweepParcels,
		m.statusChanges,
	)
	return m
}

// Outcome is "ok" or the error kind name.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := carrier.KindOf(err); ok {
		return kind.String()
	}
	return "error"
}

// Все методы допускают nil-получатель: метрики в тестах не обязательны.

func (m *Metrics) ObserveCarrierCall(carrierID string, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.carrierRequests.WithLabelValues(carrierID, Outcome(err)).Inc()
	m.carrierLatency.WithLabelValues(carrierID).Observe(took.Seconds())
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) SweepParcel(outcome string) {
	if m == nil {
		return
	}
	m.sweepParcels.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StatusChanged(carrierID string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(carrierID).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}
