package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// SalesMetrics records commit-time observations for POS transactions.
type SalesMetrics struct {
	committed *prometheus.CounterVec
	discount  prometheus.Histogram
	total     prometheus.Histogram
}

// NewSalesMetrics registers the sales metrics on the provided registerer.
func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	committed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sales_committed",
		Help: "Committed POS sales, labeled new or correction.",
	}, []string{"mode"})
	discount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_sale_discount_amount",
		Help:    "Discount granted per committed sale, in currency units.",
		Buckets: prometheus.ExponentialBuckets(0.5, 4, 8),
	})
	total := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_sale_final_total",
		Help:    "Final total per committed sale, in currency units.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
	reg.MustRegister(committed, discount, total)
	return &SalesMetrics{
		committed: committed,
		discount:  discount,
		total:     total,
	}
}

// IncCommitted increments the committed-sale counter for the given mode.
func (s *SalesMetrics) IncCommitted(mode string) {
	if s == nil || s.committed == nil {
		return
	}
	s.committed.WithLabelValues(normalizeLabel(mode)).Inc()
}

// ObserveDiscount records the discount granted on a committed sale.
func (s *SalesMetrics) ObserveDiscount(amount float64) {
	if s == nil || s.discount == nil {
		return
	}
	s.discount.Observe(amount)
}

// ObserveFinalTotal records the final total of a committed sale.
func (s *SalesMetrics) ObserveFinalTotal(amount float64) {
	if s == nil || s.total == nil {
		return
	}
	s.total.Observe(amount)
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
