package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics counts confirmation outcomes by entry path so dashboards
// can compare client callbacks against webhooks.
type PaymentMetrics struct {
	confirmed  *prometheus.CounterVec
	duplicates *prometheus.CounterVec
	rejected   *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment confirmation metrics.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	confirmed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_confirmations_total",
		Help: "Orders moved to confirmed, labeled by entry path.",
	}, []string{"source"})
	duplicates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_confirmation_duplicates_total",
		Help: "Confirmation attempts that found the order already confirmed.",
	}, []string{"source"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_signature_rejections_total",
		Help: "Confirmation attempts rejected for an invalid signature.",
	}, []string{"source"})
	reg.MustRegister(confirmed, duplicates, rejected)
	return &PaymentMetrics{
		confirmed:  confirmed,
		duplicates: duplicates,
		rejected:   rejected,
	}
}

// IncConfirmed increments the confirmation counter for the given source.
func (p *PaymentMetrics) IncConfirmed(source string) {
	if p == nil || p.confirmed == nil {
		return
	}
	p.confirmed.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncDuplicate increments the duplicate-confirmation counter.
func (p *PaymentMetrics) IncDuplicate(source string) {
	if p == nil || p.duplicates == nil {
		return
	}
	p.duplicates.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncSignatureRejected increments the rejected-signature counter.
func (p *PaymentMetrics) IncSignatureRejected(source string) {
	if p == nil || p.rejected == nil {
		return
	}
	p.rejected.WithLabelValues(normalizeLabel(source)).Inc()
}
