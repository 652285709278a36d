package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ridepool_store_ops_total",
		Help: "KV operations issued against the store, by operation.",
	}, []string{"op"})

	opErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ridepool_store_op_errors_total",
		Help: "KV operations that returned an error, by operation.",
	}, []string{"op"})
)

func recordOp(op string, err error) {
	opsTotal.WithLabelValues(op).Inc()
	if err != nil {
		opErrorsTotal.WithLabelValues(op).Inc()
	}
}
