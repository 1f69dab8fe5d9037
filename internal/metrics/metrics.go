// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served.",
		},
		[]string{"route", "method", "status"},
	)
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	invoicesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentals_invoices_created_total",
		Help: "Invoices persisted.",
	})
	invoicesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentals_invoices_deleted_total",
		Help: "Invoices deleted.",
	})
	invoiceSaveFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentals_invoice_save_failures_total",
		Help: "Invoice inserts that failed after a successful computation.",
	})
	negativeUsageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentals_negative_usage_total",
			Help: "Invoices computed with a negative meter delta, by meter.",
		},
		[]string{"meter"},
	)
	invoiceTotalAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rentals_invoice_total_amount",
		Help:    "Distribution of persisted invoice totals.",
		Buckets: prometheus.ExponentialBuckets(100000, 2, 12),
	})
)

// ObserveHTTPRequest records one served request. route is the mux pattern
// that matched, or "other".
func ObserveHTTPRequest(route, method string, status int, dur time.Duration) {
	if route == "" {
		route = "other"
	}
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(route, method).Observe(dur.Seconds())
}

// InvoiceCreated records a persisted invoice and its total.
func InvoiceCreated(total decimal.Decimal) {
	invoicesCreatedTotal.Inc()
	invoiceTotalAmount.Observe(total.InexactFloat64())
}

// InvoiceDeleted records a deleted invoice.
func InvoiceDeleted() { invoicesDeletedTotal.Inc() }

// InvoiceSaveFailed records an insert failure.
func InvoiceSaveFailed() { invoiceSaveFailuresTotal.Inc() }

// NegativeUsage records a negative delta on the named meter.
func NegativeUsage(meter string) { negativeUsageTotal.WithLabelValues(meter).Inc() }
