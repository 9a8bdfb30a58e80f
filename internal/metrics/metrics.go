package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg                  *prometheus.Registry
	CartAdds             prometheus.Counter
	OrdersSubmitted      prometheus.Counter
	OrdersFailed         prometheus.Counter
	SubmissionsRejected  *prometheus.CounterVec
	SubmitLatencySeconds prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	cartAdds := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_cart_adds_total"})
	submitted := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_orders_submitted_total"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_orders_failed_total"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_submissions_rejected_total",
		Help: "Confirm actions refused before reaching the order sink.",
	}, []string{"reason"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_submit_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(cartAdds, submitted, failed, rejected, latency)
	return &Registry{
		reg:                  r,
		CartAdds:             cartAdds,
		OrdersSubmitted:      submitted,
		OrdersFailed:         failed,
		SubmissionsRejected:  rejected,
		SubmitLatencySeconds: latency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
