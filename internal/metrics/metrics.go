// Package metrics holds the prometheus collectors for the HTTP layer and
// the ledger.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	SettledByRepayment = "repayment"
	SettledByMarkPaid  = "mark_paid"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	PaymentRequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_requests_created_total",
		Help: "Payment requests created.",
	})

	RepaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repayments_recorded_total",
		Help: "Partial repayments appended to a payment request.",
	})

	PaymentRequestsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_requests_settled_total",
		Help: "Payment requests moved to PAID, by settlement path.",
	}, []string{"path"})

	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Ledger notifications that could not be delivered.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
