package gateway

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"provsync/pkg/provisioner"
)

type metrics struct {
	operations     *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provsync",
			Subsystem: "gateway",
			Name:      "operations_total",
			Help:      "Adapter operations by outcome.",
		}, []string{"operation", "outcome"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provsync",
			Subsystem: "gateway",
			Name:      "upstream_errors_total",
			Help:      "Provisioner responses outside the expected status set.",
		}, []string{"operation", "status"}),
	}
	reg.MustRegister(m.operations, m.upstreamErrors)
	return m
}

// observe counts one finished operation and, for transport failures, the
// upstream status it died with.
func (m *metrics) observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var transport *provisioner.TransportError
		if errors.As(err, &transport) {
			m.upstreamErrors.WithLabelValues(operation, strconv.Itoa(transport.StatusCode)).Inc()
		}
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}
