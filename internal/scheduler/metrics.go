package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_runs_started_total",
		Help: "The total number of category runs launched by the scheduler.",
	}, []string{"category"})
	runsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_runs_skipped_total",
		Help: "The total number of ticks skipped because the previous run was still in flight.",
	}, []string{"category"})
)
