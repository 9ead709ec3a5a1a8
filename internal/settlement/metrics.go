package settlement

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/myfestival/internal/calculator"
	"github.com/mmynk/myfestival/internal/storage"
)

// Outcome label values.
const (
	outcomeOK             = "ok"
	outcomePrecondition   = "precondition"
	outcomeInvalidInvoice = "invalid_invoice"
	outcomeImbalance      = "imbalance"
	outcomeNotFound       = "not_found"
	outcomeError          = "error"
)

// Metrics holds the settlement collectors.
type Metrics struct {
	closes    *prometheus.CounterVec
	reopens   *prometheus.CounterVec
	transfers prometheus.Counter
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		closes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "myfestival",
			Subsystem: "settlement",
			Name:      "closes_total",
			Help:      "Festival close attempts by outcome.",
		}, []string{"outcome"}),
		reopens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "myfestival",
			Subsystem: "settlement",
			Name:      "reopens_total",
			Help:      "Festival reopen attempts by outcome.",
		}, []string{"outcome"}),
		transfers: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "myfestival",
			Subsystem: "settlement",
			Name:      "transfers_generated_total",
			Help:      "Transfers persisted by successful closes.",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "myfestival",
			Subsystem: "settlement",
			Name:      "operation_duration_seconds",
			Help:      "Duration of close and reopen, lock wait included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) observeClose(err error, transfers int, elapsed time.Duration) {
	m.closes.WithLabelValues(outcome(err)).Inc()
	m.duration.WithLabelValues("close").Observe(elapsed.Seconds())
	if err == nil {
		m.transfers.Add(float64(transfers))
	}
}

func (m *Metrics) observeReopen(err error, elapsed time.Duration) {
	m.reopens.WithLabelValues(outcome(err)).Inc()
	m.duration.WithLabelValues("reopen").Observe(elapsed.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrPrecondition):
		return outcomePrecondition
	case errors.Is(err, calculator.ErrInvalidInvoiceState):
		return outcomeInvalidInvoice
	case errors.Is(err, calculator.ErrSettlementImbalance):
		return outcomeImbalance
	case errors.Is(err, storage.ErrNotFound):
		return outcomeNotFound
	default:
		return outcomeError
	}
}
