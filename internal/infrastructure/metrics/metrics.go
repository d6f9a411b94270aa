package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "browser_mcp"

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Commands dispatched, by tool and outcome.",
	}, []string{"tool", "outcome"})
	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Command execution time, including browser launch on first use.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"tool"})
	selectorRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "selector_retries_total",
		Help:      "Strict-mode violations retried on the first match, by outcome.",
	}, []string{"action", "outcome"})
	artifactOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "artifact_operations_total",
		Help:      "Artifact store operations, by backend, operation and outcome.",
	}, []string{"backend", "op", "outcome"})
	browserLaunches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "browser_launches_total",
		Help:      "Browser launch attempts, by engine and outcome.",
	}, []string{"engine", "outcome"})
	consoleEntries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "console_entries_total",
		Help:      "Console messages captured from the page.",
	})
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Upload requests served by the artifact server, by status code class.",
	}, []string{"status"})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ObserveCommand(tool string, failed bool, elapsed time.Duration) {
	o := "ok"
	if failed {
		o = "error"
	}
	commandsTotal.WithLabelValues(tool, o).Inc()
	commandDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

func ObserveSelectorRetry(action string, err error) {
	selectorRetries.WithLabelValues(action, outcome(err)).Inc()
}

func ObserveArtifact(backend, op string, err error) {
	artifactOps.WithLabelValues(backend, op, outcome(err)).Inc()
}

func ObserveLaunch(engine string, err error) {
	browserLaunches.WithLabelValues(engine, outcome(err)).Inc()
}

func ObserveConsoleEntry() {
	consoleEntries.Inc()
}

func ObserveUpload(statusClass string) {
	uploadsTotal.WithLabelValues(statusClass).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
