package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shopora",
		Name:      "orders_placed_total",
		Help:      "Total number of successfully placed orders.",
	})
	PaymentsSucceeded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shopora",
		Name:      "payments_succeeded_total",
		Help:      "Total number of payment_intent.succeeded webhooks applied.",
	})
	PaymentsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shopora",
		Name:      "payments_failed_total",
		Help:      "Total number of payment_intent.payment_failed webhooks applied.",
	})
	UsersRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shopora",
		Name:      "users_registered_total",
		Help:      "Total number of user registrations.",
	})
)

func init() {
	prometheus.MustRegister(OrdersPlaced, PaymentsSucceeded, PaymentsFailed, UsersRegistered)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
