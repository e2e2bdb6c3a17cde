/*
Package metrics exposes controller activity as prometheus metrics.

All methods are safe to call on nil *Metrics, which disables collection.
*/
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

const namespace = "carbon_controller"

type Metrics struct {
	calls        *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	settled      *prometheus.CounterVec
	settledCost  *prometheus.CounterVec
	retired      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Number of controller calls by method and result",
		}, []string{"method", "result"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Duration of controller calls",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"method"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settled_units_total",
			Help:      "Asset units sold through listings",
		}, []string{"asset"}),
		settledCost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settled_cost_total",
			Help:      "Settlement currency paid for asset units",
		}, []string{"asset"}),
		retired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retired_units_total",
			Help:      "Asset units retired (burned)",
		}, []string{"asset"}),
	}
	for _, c := range []prometheus.Collector{m.calls, m.callDuration, m.settled, m.settledCost, m.retired} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return m, nil
}

// ObserveCall records outcome of a controller entry point call.
func (m *Metrics) ObserveCall(method string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(method, market.ErrorKind(err)).Inc()
	m.callDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) ObserveSettlement(code types.AssetCode, amount, cost int64) {
	if m == nil {
		return
	}
	m.settled.WithLabelValues(string(code)).Add(units(amount))
	m.settledCost.WithLabelValues(string(code)).Add(units(cost))
}

func (m *Metrics) ObserveRetirement(code types.AssetCode, amount int64) {
	if m == nil {
		return
	}
	m.retired.WithLabelValues(string(code)).Add(units(amount))
}

func units(v int64) float64 {
	return float64(v) / float64(types.ScaleFactor)
}
