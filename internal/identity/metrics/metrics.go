package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registry's Prometheus counters.
type Metrics struct {
	Registrations   prometheus.Counter
	SybilRejections prometheus.Counter
	Verifications   prometheus.Counter
	Resets          prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_identity_registrations_total",
			Help: "Identities successfully registered.",
		}),
		SybilRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_identity_sybil_rejections_total",
			Help: "Registrations and updates rejected by fingerprint collision.",
		}),
		Verifications: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_identity_verifications_total",
			Help: "Identities verified via email-ownership proof.",
		}),
		Resets: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_identity_resets_total",
			Help: "Identities removed by the authority.",
		}),
	}
}
