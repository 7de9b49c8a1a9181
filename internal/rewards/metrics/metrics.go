// Package metrics exposes Prometheus counters for the reward ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registrations   prometheus.Counter
	ClaimsGranted   *prometheus.CounterVec
	ClaimsRejected  *prometheus.CounterVec
	TokensMinted    prometheus.Counter
	SettlementFails prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_rewards_registrations_total",
			Help: "Number of reward participants registered.",
		}),
		ClaimsGranted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_rewards_claims_granted_total",
			Help: "Number of granted claims by kind.",
		}, []string{"kind"}),
		ClaimsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_rewards_claims_rejected_total",
			Help: "Number of rejected claims by reason.",
		}, []string{"reason"}),
		TokensMinted: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_rewards_tokens_minted_total",
			Help: "Total token amount settled through the sink.",
		}),
		SettlementFails: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_rewards_settlement_failures_total",
			Help: "Number of sink deliveries that failed.",
		}),
	}
}
