// Package metrics exposes prometheus instrumentation for the task dispatcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasksEnqueued counts accepted submissions by workflow operation.
	TasksEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conversion_host_tasks_enqueued_total",
		Help: "Tasks accepted for asynchronous execution.",
	}, []string{"operation"})

	// TasksCompleted counts terminal task states by operation.
	TasksCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conversion_host_tasks_completed_total",
		Help: "Tasks that reached a terminal state.",
	}, []string{"operation", "state"})

	// HostsEnabled tracks currently enabled conversion hosts.
	HostsEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "conversion_hosts_enabled",
		Help: "Number of conversion host records currently present.",
	})
)
