package action

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anki_connect",
		Subsystem: "rpc",
		Name:      "actions_total",
		Help:      "Total dispatched RPC actions by action name and status.",
	}, []string{"action", "status"})

	actionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "anki_connect",
		Subsystem: "rpc",
		Name:      "action_duration_seconds",
		Help:      "RPC action handler duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})
)

func observeAction(action, status string, d time.Duration) {
	actionTotal.WithLabelValues(action, status).Inc()
	if d > 0 {
		actionDuration.WithLabelValues(action).Observe(d.Seconds())
	}
}
