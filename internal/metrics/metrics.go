// Package metrics provides Prometheus metrics for transform operations.
package metrics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Operation labels.
const (
	OpExport      = "export"
	OpImport      = "import"
	OpDeserialize = "deserialize"
	OpResponse    = "response"
	OpParams      = "params"
	OpSchema      = "schema"
	OpPreview     = "preview"
)

// Status labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the transform collectors. A nil *Metrics records nothing.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	RecordsTotal      *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered. Every series carries the client id.
func New(reg prometheus.Registerer, clientID uuid.UUID) *Metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"client_id": clientID.String()}

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "serializer_operations_total",
				Help:        "Total number of transform operations",
				ConstLabels: labels,
			},
			[]string{"mapping", "operation", "status"},
		),
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "serializer_records_total",
				Help:        "Total number of records exported or imported",
				ConstLabels: labels,
			},
			[]string{"mapping", "operation"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "serializer_operation_duration_seconds",
				Help:        "Duration of transform operations in seconds",
				ConstLabels: labels,
				Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
	}
}

// Observe records one finished operation.
func (m *Metrics) Observe(mapping, operation string, records int, err error, duration time.Duration) {
	if m == nil {
		return
	}

	status := StatusOK
	if err != nil {
		status = StatusError
	}

	m.OperationsTotal.WithLabelValues(mapping, operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())

	if err == nil && records > 0 {
		m.RecordsTotal.WithLabelValues(mapping, operation).Add(float64(records))
	}
}

// Push sends everything gathered by g to a Pushgateway under the job name.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	return push.New(url, job).Gatherer(g).PushContext(ctx)
}
