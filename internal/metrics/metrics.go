// Package metrics holds the Prometheus instruments shared by the bot, worker,
// and API processes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RefreshRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "railfactory",
		Name:      "refresh_runs_total",
		Help:      "Completed passive-refresh sweeps across all guilds.",
	})

	RefreshFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "railfactory",
		Name:      "refresh_failures_total",
		Help:      "Per-guild refresh failures during a sweep.",
	})

	TxRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "railfactory",
		Name:      "tx_retries_total",
		Help:      "Serializable transaction attempts retried after a write conflict.",
	})

	CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railfactory",
		Name:      "commands_handled_total",
		Help:      "Discord interactions handled, by command and outcome.",
	}, []string{"command", "outcome"})
)
