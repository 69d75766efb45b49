package forward

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	forwardBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_forward_batches_total",
		Help: "The total number of batches accepted by the downstream consumer.",
	}, []string{"category"})
	forwardFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_forward_failures_total",
		Help: "The total number of batch deliveries that failed.",
	}, []string{"category"})
)
