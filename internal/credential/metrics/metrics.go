package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CredentialsIssued    prometheus.Counter
	CredentialsRevoked   prometheus.Counter
	ChainDivergences     prometheus.Counter
	VerificationOutcomes *prometheus.CounterVec
	ChainCallDuration    prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certledger_credentials_issued_total",
			Help: "Total number of credentials issued",
		}),
		CredentialsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certledger_credentials_revoked_total",
			Help: "Total number of credentials revoked",
		}),
		ChainDivergences: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certledger_credentials_chain_divergences_total",
			Help: "On-chain writes whose local mirror failed and awaits reconciliation",
		}),
		VerificationOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_verification_outcomes_total",
			Help: "Verification verdicts by evidence source and validity",
		}, []string{"source", "valid"}),
		ChainCallDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certledger_chain_call_duration_seconds",
			Help:    "Duration of ledger gateway calls made by the credential service",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) IncrementIssued() {
	m.CredentialsIssued.Inc()
}

func (m *Metrics) IncrementRevoked() {
	m.CredentialsRevoked.Inc()
}

func (m *Metrics) IncrementChainDivergence() {
	m.ChainDivergences.Inc()
}

func (m *Metrics) ObserveVerification(source string, valid bool) {
	v := "false"
	if valid {
		v = "true"
	}
	m.VerificationOutcomes.WithLabelValues(source, v).Inc()
}

func (m *Metrics) ObserveChainCall(start time.Time) {
	m.ChainCallDuration.Observe(time.Since(start).Seconds())
}
