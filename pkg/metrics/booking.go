package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics counts booking pipeline outcomes by stage.
type BookingMetrics struct {
	reservations  *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	reconciled    prometheus.Counter
}

// NewBookingMetrics registers booking counters on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_reservations_total",
		Help: "Reservation attempts by outcome.",
	}, []string{"outcome"})
	confirmations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_confirmations_total",
		Help: "Payment confirmations by outcome.",
	}, []string{"outcome"})
	reconciled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_payments_reconciled_total",
		Help: "Pending payments failed and released by the reconciler.",
	})
	reg.MustRegister(reservations, confirmations, reconciled)
	return &BookingMetrics{
		reservations:  reservations,
		confirmations: confirmations,
		reconciled:    reconciled,
	}
}

// IncReservation records a reservation attempt outcome.
func (b *BookingMetrics) IncReservation(outcome string) {
	if b == nil || b.reservations == nil {
		return
	}
	b.reservations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncConfirmation records a confirmation outcome.
func (b *BookingMetrics) IncConfirmation(outcome string) {
	if b == nil || b.confirmations == nil {
		return
	}
	b.confirmations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncReconciled records a timed-out payment resolved by the sweep.
func (b *BookingMetrics) IncReconciled() {
	if b == nil || b.reconciled == nil {
		return
	}
	b.reconciled.Inc()
}
