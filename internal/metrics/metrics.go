// Package metrics exposes Prometheus counters for order flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersCompleted counts drafts turned into archived orders.
	OrdersCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleanline_orders_completed_total",
		Help: "Orders completed through the wizard, by branch.",
	}, []string{"branch"})

	// StatusTransitions counts archived order status changes.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleanline_order_status_transitions_total",
		Help: "Order status transitions, by target status.",
	}, []string{"status"})

	// ActiveDrafts tracks live wizard sessions.
	ActiveDrafts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cleanline_active_drafts",
		Help: "Wizard drafts currently held in memory.",
	})
)

// Handler serves the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
